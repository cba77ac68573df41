package helpers

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrHexPrefix is returned when a hex field carries a 0x prefix.
var ErrHexPrefix = errors.New("hex string must not carry a 0x prefix")

// DecodeHex decodes a bare hex string. An empty string decodes to nil.
func DecodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return nil, ErrHexPrefix
	}
	return hex.DecodeString(s)
}

// EncodeHex encodes bytes as lowercase hex without a prefix.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}
