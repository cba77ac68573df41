package dlc

import (
	"math/bits"

	"github.com/btcsuite/btcd/btcutil"
)

// addAmounts sums satoshi values, failing on uint64 overflow.
func addAmounts(vals ...uint64) (uint64, error) {
	var sum uint64
	for _, v := range vals {
		s, carry := bits.Add64(sum, v, 0)
		if carry != 0 {
			return 0, ErrInvalidAmount
		}
		sum = s
	}
	return sum, nil
}

// mulAmounts multiplies, failing on uint64 overflow.
func mulAmounts(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrInvalidAmount
	}
	return lo, nil
}

// subAmounts returns a - b, failing if the result would be negative.
func subAmounts(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrInvalidAmount
	}
	return diff, nil
}

// inSatoshiRange reports whether v fits a transaction output value.
func inSatoshiRange(v uint64) bool {
	return v <= uint64(btcutil.MaxSatoshi)
}
