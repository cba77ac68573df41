package dlc

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcd/wire"
)

// Protocol defaults. The weights are the DLC funding/CET templates, expressed
// in weight units; the dust limit is the DLC protocol's, which is stricter
// than Bitcoin Core's relay policy.
const (
	DefaultTxVersion         = 2
	DefaultDustLimit         = 1000
	DefaultFundTxBaseWeight  = 214
	DefaultCetBaseWeight     = 500
	DefaultTxInputBaseWeight = 164

	// P2WPKHWitnessSize is the max witness length of a P2WPKH spend.
	P2WPKHWitnessSize = 107
)

// Sequence values for contract inputs. Both disable BIP68 relative locktimes
// and opt out of BIP125 replacement; the first additionally enables nLockTime.
const (
	SequenceEnableLockTime  = wire.MaxTxInSequenceNum - 1
	SequenceDisableLockTime = wire.MaxTxInSequenceNum
)

// Policy carries the protocol constants the builder depends on. It is passed
// in explicitly so the constants can track protocol changes.
type Policy struct {
	TxVersion int32

	// DustLimit is the minimum output value kept in a transaction.
	// Zero selects Bitcoin Core's relay dust rule for the output's script type.
	DustLimit uint64

	// WitnessScaleFactor converts weight units to virtual bytes.
	WitnessScaleFactor uint64

	FundTxBaseWeight  uint64
	CetBaseWeight     uint64
	TxInputBaseWeight uint64
}

// DefaultPolicy returns the DLC protocol defaults.
func DefaultPolicy() Policy {
	return Policy{
		TxVersion:          DefaultTxVersion,
		DustLimit:          DefaultDustLimit,
		WitnessScaleFactor: blockchain.WitnessScaleFactor,
		FundTxBaseWeight:   DefaultFundTxBaseWeight,
		CetBaseWeight:      DefaultCetBaseWeight,
		TxInputBaseWeight:  DefaultTxInputBaseWeight,
	}
}

// Validate checks that the policy can be used to build transactions.
func (p Policy) Validate() error {
	if p.WitnessScaleFactor == 0 {
		return fmt.Errorf("witness scale factor must be > 0")
	}
	if p.TxVersion < 1 {
		return fmt.Errorf("transaction version must be >= 1, got %d", p.TxVersion)
	}
	return nil
}

// IsDust reports whether out would be dropped from a contract transaction.
func (p Policy) IsDust(out *wire.TxOut) bool {
	if p.DustLimit == 0 {
		return mempool.IsDust(out, mempool.DefaultMinRelayTxFee)
	}
	return out.Value < 0 || uint64(out.Value) < p.DustLimit
}

// discardDust returns outs without the outputs below the dust threshold.
func (p Policy) discardDust(outs []*wire.TxOut) []*wire.TxOut {
	kept := make([]*wire.TxOut, 0, len(outs))
	for _, out := range outs {
		if !p.IsDust(out) {
			kept = append(kept, out)
		}
	}
	return kept
}

// sequenceFor returns the input sequence for a transaction with the given locktime.
func sequenceFor(lockTime uint32) uint32 {
	if lockTime == 0 {
		return SequenceDisableLockTime
	}
	return SequenceEnableLockTime
}
