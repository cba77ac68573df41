package dlc

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/klingon-dlc/pkg/helpers"
)

// payoutOutputs lays out the two payout outputs in serial id order and drops
// any below dust. A dropped output's value is left to the fee; it is never
// moved to the counterparty.
func (b *Builder) payoutOutputs(p *ContractParams, offerValue, acceptValue uint64) []*wire.TxOut {
	outs := orderBySerialIDs(
		[]*wire.TxOut{
			wire.NewTxOut(int64(offerValue), helpers.CloneBytes(p.Offer.PayoutScriptPubKey)),
			wire.NewTxOut(int64(acceptValue), helpers.CloneBytes(p.Accept.PayoutScriptPubKey)),
		},
		[]uint64{p.Offer.PayoutSerialID, p.Accept.PayoutSerialID},
	)
	return b.policy.discardDust(outs)
}

// spendFunding creates an unsigned transaction whose only input is the funding output.
func (b *Builder) spendFunding(fundOutpoint wire.OutPoint, lockTime, sequence uint32) *wire.MsgTx {
	tx := wire.NewMsgTx(b.policy.TxVersion)
	tx.LockTime = lockTime

	txIn := wire.NewTxIn(&fundOutpoint, nil, nil)
	txIn.Sequence = sequence
	tx.AddTxIn(txIn)
	return tx
}

// buildCET builds the contract execution transaction for one payout row.
// Payout amounts are paid verbatim; the fee is covered by the reserve locked
// in the funding output on top of the collateral.
func (b *Builder) buildCET(p *ContractParams, fundOutpoint wire.OutPoint, payout Payout) *wire.MsgTx {
	tx := b.spendFunding(fundOutpoint, p.CetLockTime, sequenceFor(p.CetLockTime))
	for _, out := range b.payoutOutputs(p, payout.Offer, payout.Accept) {
		tx.AddTxOut(out)
	}
	return tx
}

// buildCETs builds one CET per payout row, in payout order.
func (b *Builder) buildCETs(p *ContractParams, fundOutpoint wire.OutPoint) []*wire.MsgTx {
	cets := make([]*wire.MsgTx, len(p.Payouts))
	for i, payout := range p.Payouts {
		cets[i] = b.buildCET(p, fundOutpoint, payout)
	}
	return cets
}
