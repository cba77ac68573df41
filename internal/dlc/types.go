// Package dlc - Discreet Log Contract transaction assembly.
// Given both parties' funding inputs, scripts, collateral and a payout grid,
// it deterministically builds the funding transaction, one CET per payout
// and the refund transaction. Identical parameters always produce identical
// bytes, so the offer and accept side can each build and sign the same set.
package dlc

import (
	"github.com/btcsuite/btcd/wire"
)

// Party identifies one side of the contract.
type Party string

const (
	PartyOffer  Party = "offer"
	PartyAccept Party = "accept"
)

// TxInputInfo is a funding input contributed by one party.
type TxInputInfo struct {
	Outpoint wire.OutPoint

	// MaxWitnessLen is the largest witness this input can carry, in bytes.
	// It only feeds fee estimation.
	MaxWitnessLen uint32

	// RedeemScript is empty for native segwit inputs and holds the nested
	// witness program for P2SH-wrapped ones.
	RedeemScript []byte

	// SerialID orders the input within the merged input set.
	SerialID uint64
}

// PartyParams holds everything one party brings to the contract.
type PartyParams struct {
	FundPubKey         []byte // 33-byte compressed
	ChangeScriptPubKey []byte
	ChangeSerialID     uint64
	PayoutScriptPubKey []byte
	PayoutSerialID     uint64
	Inputs             []TxInputInfo
	InputAmount        uint64 // sum of the inputs' values, in satoshis
	Collateral         uint64
}

// Payout is one outcome row: what each side receives if that outcome settles.
type Payout struct {
	Offer  uint64
	Accept uint64
}

// ContractParams is the negotiated contract both parties build from.
type ContractParams struct {
	Offer              PartyParams
	Accept             PartyParams
	Payouts            []Payout
	RefundLockTime     uint32
	FeeRatePerVb       uint64
	FundLockTime       uint32
	CetLockTime        uint32
	FundOutputSerialID uint64
}

// TotalCollateral returns offer + accept collateral.
func (p *ContractParams) TotalCollateral() (uint64, error) {
	return addAmounts(p.Offer.Collateral, p.Accept.Collateral)
}

// PartyFees is the fee breakdown charged to one party.
type PartyFees struct {
	// FundFee covers the party's inputs, change output and half the funding base weight.
	FundFee uint64
	// CetFee is prefunded into the funding output and pays for every CET and the refund.
	CetFee uint64
	// Change is what the party gets back on the funding transaction before dust removal.
	Change uint64
}

// Transactions is the full contract transaction set.
type Transactions struct {
	Fund   *wire.MsgTx
	CETs   []*wire.MsgTx
	Refund *wire.MsgTx

	// FundingScript is the 2-of-2 witness script locked by the funding output.
	FundingScript []byte
	// FundOutputIndex is the funding output's position in Fund.TxOut.
	FundOutputIndex uint32
	// FundOutputValue is the value locked in the funding output.
	FundOutputValue uint64

	OfferFees  PartyFees
	AcceptFees PartyFees
}

// FundOutpoint returns the outpoint every CET and the refund spend.
func (t *Transactions) FundOutpoint() wire.OutPoint {
	return wire.OutPoint{Hash: t.Fund.TxHash(), Index: t.FundOutputIndex}
}
