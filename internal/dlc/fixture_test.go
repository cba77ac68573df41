package dlc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const fixtureTxID = "bc92a22f07ef23c53af343397874b59f5f8c0eb37753af1d1a159a2177d4bb98"

// testPubKey returns the compressed pubkey for a small private scalar.
func testPubKey(t *testing.T, scalar byte) []byte {
	t.Helper()
	var key [32]byte
	key[31] = scalar
	_, pub := btcec.PrivKeyFromBytes(key[:])
	return pub.SerializeCompressed()
}

// p2wpkh returns a P2WPKH script with a program made of one repeated byte.
func p2wpkh(fill byte) []byte {
	return append([]byte{0x00, 0x14}, bytes.Repeat([]byte{fill}, 20)...)
}

func testOutpoint(t *testing.T, vout uint32) wire.OutPoint {
	t.Helper()
	hash, err := chainhash.NewHashFromStr(fixtureTxID)
	if err != nil {
		t.Fatalf("bad fixture txid: %v", err)
	}
	return wire.OutPoint{Hash: *hash, Index: vout}
}

// fixtureParams mirrors the reference scenario: each side funds 2 BTC, commits
// 1 BTC, feerate 4 sat/vB, two all-or-nothing payouts.
func fixtureParams(t *testing.T) *ContractParams {
	t.Helper()
	return &ContractParams{
		Offer: PartyParams{
			FundPubKey:         testPubKey(t, 1),
			ChangeScriptPubKey: p2wpkh(0x33),
			ChangeSerialID:     1,
			PayoutScriptPubKey: p2wpkh(0x11),
			PayoutSerialID:     2,
			Inputs: []TxInputInfo{{
				Outpoint:      testOutpoint(t, 0),
				MaxWitnessLen: 108,
				SerialID:      4,
			}},
			InputAmount: 200000000,
			Collateral:  100000000,
		},
		Accept: PartyParams{
			FundPubKey:         testPubKey(t, 2),
			ChangeScriptPubKey: p2wpkh(0x44),
			ChangeSerialID:     3,
			PayoutScriptPubKey: p2wpkh(0x22),
			PayoutSerialID:     3,
			Inputs: []TxInputInfo{{
				Outpoint:      testOutpoint(t, 1),
				MaxWitnessLen: 108,
				SerialID:      5,
			}},
			InputAmount: 200000000,
			Collateral:  100000000,
		},
		Payouts: []Payout{
			{Offer: 200000000, Accept: 0},
			{Offer: 0, Accept: 200000000},
		},
		RefundLockTime:     100,
		FeeRatePerVb:       4,
		FundLockTime:       10,
		CetLockTime:        10,
		FundOutputSerialID: 0,
	}
}

func mustSerialize(t *testing.T, tx *wire.MsgTx) string {
	t.Helper()
	s, err := SerializeTx(tx)
	if err != nil {
		t.Fatalf("SerializeTx: %v", err)
	}
	return s
}

func sumOutputs(tx *wire.MsgTx) int64 {
	var sum int64
	for _, out := range tx.TxOut {
		sum += out.Value
	}
	return sum
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
