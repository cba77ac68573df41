// Package api - Wire types for contract construction requests and responses.
//
// Field names are camelCase so that requests written for other DLC tooling
// decode unchanged.
package api

import "github.com/klingon-exchange/klingon-dlc/internal/dlc"

// =============================================================================
// Request Types
// =============================================================================

// OutPoint references a previous transaction output.
type OutPoint struct {
	TxID string `json:"txid"` // Display (reversed) hex, as shown by block explorers
	Vout uint32 `json:"vout"`
}

// TxInput is one funding input contributed by a party.
type TxInput struct {
	Outpoint      OutPoint `json:"outpoint"`
	MaxWitnessLen uint32   `json:"maxWitnessLen"`
	RedeemScript  string   `json:"redeemScript"` // Hex, empty for native segwit
	SerialID      uint64   `json:"serialId"`
}

// PartyParams is one side's contribution to the contract.
type PartyParams struct {
	FundPubKey         string    `json:"fundPubkey"`         // Hex, 33-byte compressed
	ChangeScriptPubKey string    `json:"changeScriptPubkey"` // Address if bech32-prefixed, else hex script, else address
	ChangeSerialID     uint64    `json:"changeSerialId"`
	PayoutScriptPubKey string    `json:"payoutScriptPubkey"` // Address if bech32-prefixed, else hex script, else address
	PayoutSerialID     uint64    `json:"payoutSerialId"`
	Inputs             []TxInput `json:"inputs"`
	InputAmount        uint64    `json:"inputAmount"`
	Collateral         uint64    `json:"collateral"`
}

// Payout is one outcome row in satoshis.
type Payout struct {
	Offer  uint64 `json:"offer"`
	Accept uint64 `json:"accept"`
}

// CreateTransactionsRequest is the input to dlc_createTransactions and dlctx.
type CreateTransactionsRequest struct {
	OfferParams        PartyParams `json:"offerParams"`
	AcceptParams       PartyParams `json:"acceptParams"`
	Payouts            []Payout    `json:"payouts"`
	RefundLockTime     uint32      `json:"refundLockTime"`
	FeeRatePerVb       uint64      `json:"feeRatePerVb"`
	FundLockTime       uint32      `json:"fundLockTime"`
	CetLockTime        uint32      `json:"cetLockTime"`
	FundOutputSerialID uint64      `json:"fundOutputSerialId"`

	// IncludePSBT adds unsigned PSBTs to the response.
	IncludePSBT bool `json:"includePsbt,omitempty"`
}

// DecodeTransactionRequest is the input to dlc_decodeTransaction.
type DecodeTransactionRequest struct {
	Tx string `json:"tx"`
}

// FundingScriptRequest is the input to dlc_fundingScript.
type FundingScriptRequest struct {
	OfferFundPubKey  string `json:"offerFundPubkey"`
	AcceptFundPubKey string `json:"acceptFundPubkey"`
}

// =============================================================================
// Response Types
// =============================================================================

// CreateTransactionsResponse carries the serialized contract transactions.
type CreateTransactionsResponse struct {
	BuildID             string   `json:"buildId,omitempty"`
	Fund                string   `json:"fund"`
	Cets                []string `json:"cets"`
	Refund              string   `json:"refund"`
	FundVout            uint32   `json:"fundVout"`
	FundingScriptPubKey string   `json:"fundingScriptPubkey"` // 2-of-2 witness script, hex
	FundOutputValue     uint64   `json:"fundOutputValue"`

	Fees FeeBreakdown `json:"fees"`

	Summary *SummarySet `json:"summary"`
	PSBTs   *PSBTSet    `json:"psbts,omitempty"`
}

// PartyFees is the per-party fee breakdown in satoshis.
type PartyFees struct {
	FundFee uint64 `json:"fundFee"`
	CetFee  uint64 `json:"cetFee"`
	Change  uint64 `json:"change"`
}

// FeeBreakdown reports what each party pays.
type FeeBreakdown struct {
	Offer  PartyFees `json:"offer"`
	Accept PartyFees `json:"accept"`
}

// PSBTSet holds base64 unsigned PSBTs for every transaction.
type PSBTSet struct {
	Fund   string   `json:"fund"`
	Cets   []string `json:"cets"`
	Refund string   `json:"refund"`
}

// SummarySet holds decoded views of every transaction.
type SummarySet struct {
	Fund   *dlc.TxSummary   `json:"fund"`
	Cets   []*dlc.TxSummary `json:"cets"`
	Refund *dlc.TxSummary   `json:"refund"`
}

// FundingScriptResponse describes the 2-of-2 funding output for two keys.
type FundingScriptResponse struct {
	FundingScript string `json:"fundingScript"` // witness script, hex
	ScriptPubKey  string `json:"scriptPubkey"`  // P2WSH, hex
	Address       string `json:"address"`
}
