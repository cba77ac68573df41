package dlc

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/klingon-dlc/pkg/helpers"
)

// fundingResult is the funding transaction plus where its contract output landed.
type fundingResult struct {
	tx          *wire.MsgTx
	outputIndex uint32
	outputValue uint64
}

// fundOutputValue is what the 2-of-2 output locks: both collaterals plus both
// parties' CET/refund fee reserves, so no CET or the refund ever needs another input.
func fundOutputValue(p *ContractParams, offerFees, acceptFees PartyFees) (uint64, error) {
	return addAmounts(p.Offer.Collateral, p.Accept.Collateral, offerFees.CetFee, acceptFees.CetFee)
}

// buildFunding assembles the funding transaction. Parameters are validated
// by the caller; this only lays out inputs and outputs.
func (b *Builder) buildFunding(p *ContractParams, fundingScript []byte, offerFees, acceptFees PartyFees) (*fundingResult, error) {
	value, err := fundOutputValue(p, offerFees, acceptFees)
	if err != nil {
		return nil, newError(ErrInvalidAmount, "", "collateral", NoRow, "funding output value overflow")
	}

	pkScript, err := PayToWitnessScriptHash(fundingScript)
	if err != nil {
		return nil, newError(ErrInvalidScript, "", "fundPubkey", NoRow, "p2wsh: %v", err)
	}

	tx := wire.NewMsgTx(b.policy.TxVersion)
	tx.LockTime = p.FundLockTime

	sequence := sequenceFor(p.FundLockTime)
	var (
		ins []*wire.TxIn
		ids []uint64
	)
	for _, party := range []*PartyParams{&p.Offer, &p.Accept} {
		for _, in := range party.Inputs {
			scriptSig, err := redeemScriptToScriptSig(in.RedeemScript)
			if err != nil {
				return nil, newError(ErrInvalidScript, "", "redeemScript", NoRow, "%v", err)
			}
			txIn := wire.NewTxIn(&in.Outpoint, scriptSig, nil)
			txIn.Sequence = sequence
			ins = append(ins, txIn)
			ids = append(ids, in.SerialID)
		}
	}
	for _, txIn := range orderBySerialIDs(ins, ids) {
		tx.AddTxIn(txIn)
	}

	fundOut := wire.NewTxOut(int64(value), pkScript)
	outs := orderBySerialIDs(
		[]*wire.TxOut{
			fundOut,
			wire.NewTxOut(int64(offerFees.Change), helpers.CloneBytes(p.Offer.ChangeScriptPubKey)),
			wire.NewTxOut(int64(acceptFees.Change), helpers.CloneBytes(p.Accept.ChangeScriptPubKey)),
		},
		[]uint64{p.FundOutputSerialID, p.Offer.ChangeSerialID, p.Accept.ChangeSerialID},
	)

	result := &fundingResult{tx: tx, outputValue: value}
	found := false
	for _, out := range b.policy.discardDust(outs) {
		if out == fundOut {
			result.outputIndex = uint32(len(tx.TxOut))
			found = true
		}
		tx.AddTxOut(out)
	}
	if !found {
		return nil, newError(ErrInvalidAmount, "", "collateral", NoRow,
			"funding output value %d is below dust", value)
	}

	return result, nil
}
