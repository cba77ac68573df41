package dlc

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// buildRefund builds the refund transaction returning each party's collateral.
// It is only valid once the refund locktime is reached.
func (b *Builder) buildRefund(p *ContractParams, fundOutpoint wire.OutPoint) *wire.MsgTx {
	tx := b.spendFunding(fundOutpoint, p.RefundLockTime, SequenceEnableLockTime)
	for _, out := range b.payoutOutputs(p, p.Offer.Collateral, p.Accept.Collateral) {
		tx.AddTxOut(out)
	}
	return tx
}

// isTimeLock reports whether a locktime is a unix timestamp rather than a block height.
func isTimeLock(lockTime uint32) bool {
	return lockTime >= txscript.LockTimeThreshold
}

// validateLockTimes requires the refund to become valid strictly after the
// CETs, measured in the same unit.
func validateLockTimes(p *ContractParams) error {
	if isTimeLock(p.RefundLockTime) != isTimeLock(p.CetLockTime) {
		return newError(ErrInvalidTimelockOrdering, "", "refundLockTime", NoRow,
			"refund locktime %d and cet locktime %d mix block height and unix time",
			p.RefundLockTime, p.CetLockTime)
	}
	if p.RefundLockTime <= p.CetLockTime {
		return newError(ErrInvalidTimelockOrdering, "", "refundLockTime", NoRow,
			"refund locktime %d must be greater than cet locktime %d",
			p.RefundLockTime, p.CetLockTime)
	}
	return nil
}
