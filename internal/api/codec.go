package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
	"github.com/klingon-exchange/klingon-dlc/pkg/helpers"
)

// ErrInvalidTransaction is returned when a transaction cannot be decoded.
var ErrInvalidTransaction = errors.New("invalid transaction")

// ContractParams decodes the request into builder parameters. Script fields
// accept either hex or an address valid for net.
func (r *CreateTransactionsRequest) ContractParams(net *chaincfg.Params) (*dlc.ContractParams, error) {
	offer, err := decodeParty(&r.OfferParams, dlc.PartyOffer, net)
	if err != nil {
		return nil, err
	}
	accept, err := decodeParty(&r.AcceptParams, dlc.PartyAccept, net)
	if err != nil {
		return nil, err
	}

	payouts := make([]dlc.Payout, len(r.Payouts))
	for i, p := range r.Payouts {
		payouts[i] = dlc.Payout{Offer: p.Offer, Accept: p.Accept}
	}

	return &dlc.ContractParams{
		Offer:              offer,
		Accept:             accept,
		Payouts:            payouts,
		RefundLockTime:     r.RefundLockTime,
		FeeRatePerVb:       r.FeeRatePerVb,
		FundLockTime:       r.FundLockTime,
		CetLockTime:        r.CetLockTime,
		FundOutputSerialID: r.FundOutputSerialID,
	}, nil
}

func decodeParty(p *PartyParams, who dlc.Party, net *chaincfg.Params) (dlc.PartyParams, error) {
	pub, err := helpers.DecodeHex(p.FundPubKey)
	if err != nil {
		return dlc.PartyParams{}, fieldError(dlc.ErrInvalidScript, who, "fundPubkey", err)
	}
	change, err := DecodeScript(p.ChangeScriptPubKey, net)
	if err != nil {
		return dlc.PartyParams{}, fieldError(dlc.ErrInvalidScript, who, "changeScriptPubkey", err)
	}
	payout, err := DecodeScript(p.PayoutScriptPubKey, net)
	if err != nil {
		return dlc.PartyParams{}, fieldError(dlc.ErrInvalidScript, who, "payoutScriptPubkey", err)
	}

	inputs := make([]dlc.TxInputInfo, len(p.Inputs))
	for i, in := range p.Inputs {
		op, err := decodeOutPoint(in.Outpoint)
		if err != nil {
			return dlc.PartyParams{}, fieldError(dlc.ErrInvalidOutpoint, who, fmt.Sprintf("inputs[%d].outpoint", i), err)
		}
		redeem, err := helpers.DecodeHex(in.RedeemScript)
		if err != nil {
			return dlc.PartyParams{}, fieldError(dlc.ErrInvalidScript, who, fmt.Sprintf("inputs[%d].redeemScript", i), err)
		}
		inputs[i] = dlc.TxInputInfo{
			Outpoint:      op,
			MaxWitnessLen: in.MaxWitnessLen,
			RedeemScript:  redeem,
			SerialID:      in.SerialID,
		}
	}

	return dlc.PartyParams{
		FundPubKey:         pub,
		ChangeScriptPubKey: change,
		ChangeSerialID:     p.ChangeSerialID,
		PayoutScriptPubKey: payout,
		PayoutSerialID:     p.PayoutSerialID,
		Inputs:             inputs,
		InputAmount:        p.InputAmount,
		Collateral:         p.Collateral,
	}, nil
}

func fieldError(kind error, who dlc.Party, field string, err error) error {
	return &dlc.ContractError{Kind: kind, Party: who, Field: field, Row: dlc.NoRow, Detail: err.Error()}
}

// DecodeScript parses a script pubkey given as hex or as an address for net.
// A string starting with the network's bech32 prefix is always decoded as an
// address; anything else is tried as hex first.
func DecodeScript(s string, net *chaincfg.Params) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if !hasSegwitHRP(s, net) {
		if script, err := helpers.DecodeHex(s); err == nil {
			return script, nil
		}
	}

	addr, err := btcutil.DecodeAddress(s, net)
	if err != nil {
		return nil, fmt.Errorf("neither hex nor a %s address: %w", net.Name, err)
	}
	if !addr.IsForNet(net) {
		return nil, fmt.Errorf("address %s is not for network %s", s, net.Name)
	}
	return txscript.PayToAddrScript(addr)
}

func hasSegwitHRP(s string, net *chaincfg.Params) bool {
	prefix := net.Bech32HRPSegwit + "1"
	return len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func decodeOutPoint(op OutPoint) (wire.OutPoint, error) {
	if len(op.TxID) != chainhash.MaxHashStringSize {
		return wire.OutPoint{}, fmt.Errorf("txid must be %d hex characters, got %d", chainhash.MaxHashStringSize, len(op.TxID))
	}
	hash, err := chainhash.NewHashFromStr(op.TxID)
	if err != nil {
		return wire.OutPoint{}, err
	}
	return wire.OutPoint{Hash: *hash, Index: op.Vout}, nil
}

// NewCreateTransactionsResponse encodes a built transaction set.
func NewCreateTransactionsResponse(txs *dlc.Transactions, req *CreateTransactionsRequest, net *chaincfg.Params) (*CreateTransactionsResponse, error) {
	fund, err := dlc.SerializeTx(txs.Fund)
	if err != nil {
		return nil, err
	}
	refund, err := dlc.SerializeTx(txs.Refund)
	if err != nil {
		return nil, err
	}
	cets := make([]string, len(txs.CETs))
	for i, cet := range txs.CETs {
		if cets[i], err = dlc.SerializeTx(cet); err != nil {
			return nil, err
		}
	}

	resp := &CreateTransactionsResponse{
		Fund:                fund,
		Cets:                cets,
		Refund:              refund,
		FundVout:            txs.FundOutputIndex,
		FundingScriptPubKey: helpers.EncodeHex(txs.FundingScript),
		FundOutputValue:     txs.FundOutputValue,
		Fees: FeeBreakdown{
			Offer:  partyFees(txs.OfferFees),
			Accept: partyFees(txs.AcceptFees),
		},
		Summary: newSummarySet(txs, net),
	}

	if req.IncludePSBT {
		if resp.PSBTs, err = newPSBTSet(txs); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func partyFees(f dlc.PartyFees) PartyFees {
	return PartyFees{FundFee: f.FundFee, CetFee: f.CetFee, Change: f.Change}
}

func newPSBTSet(txs *dlc.Transactions) (*PSBTSet, error) {
	fund, err := dlc.FundingPSBT(txs)
	if err != nil {
		return nil, err
	}
	refund, err := dlc.SpendFundingPSBT(txs, txs.Refund)
	if err != nil {
		return nil, err
	}
	cets := make([]string, len(txs.CETs))
	for i, cet := range txs.CETs {
		if cets[i], err = dlc.SpendFundingPSBT(txs, cet); err != nil {
			return nil, err
		}
	}
	return &PSBTSet{Fund: fund, Cets: cets, Refund: refund}, nil
}

func newSummarySet(txs *dlc.Transactions, net *chaincfg.Params) *SummarySet {
	cets := make([]*dlc.TxSummary, len(txs.CETs))
	for i, cet := range txs.CETs {
		cets[i] = dlc.Summarize(cet, net)
	}
	return &SummarySet{
		Fund:   dlc.Summarize(txs.Fund, net),
		Cets:   cets,
		Refund: dlc.Summarize(txs.Refund, net),
	}
}

// Build decodes req, constructs the transaction set with b and encodes it.
func Build(b *dlc.Builder, req *CreateTransactionsRequest, net *chaincfg.Params) (*CreateTransactionsResponse, error) {
	params, err := req.ContractParams(net)
	if err != nil {
		return nil, err
	}
	txs, err := b.CreateTransactions(params)
	if err != nil {
		return nil, err
	}
	return NewCreateTransactionsResponse(txs, req, net)
}

// DecodeTransaction parses a hex transaction into a summary.
func DecodeTransaction(txHex string, net *chaincfg.Params) (*dlc.TxSummary, error) {
	if txHex == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTransaction)
	}
	tx, err := dlc.DeserializeTx(txHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return dlc.Summarize(tx, net), nil
}

// FundingScript derives the funding output for two fund pubkeys.
func FundingScript(req *FundingScriptRequest, net *chaincfg.Params) (*FundingScriptResponse, error) {
	offer, err := helpers.DecodeHex(req.OfferFundPubKey)
	if err != nil {
		return nil, fieldError(dlc.ErrInvalidScript, dlc.PartyOffer, "offerFundPubkey", err)
	}
	accept, err := helpers.DecodeHex(req.AcceptFundPubKey)
	if err != nil {
		return nil, fieldError(dlc.ErrInvalidScript, dlc.PartyAccept, "acceptFundPubkey", err)
	}

	script, err := dlc.BuildFundingScript(offer, accept)
	if err != nil {
		return nil, err
	}
	pkScript, err := dlc.PayToWitnessScriptHash(script)
	if err != nil {
		return nil, err
	}
	scriptHash := chainhash.HashB(script)
	addr, err := btcutil.NewAddressWitnessScriptHash(scriptHash, net)
	if err != nil {
		return nil, err
	}

	return &FundingScriptResponse{
		FundingScript: helpers.EncodeHex(script),
		ScriptPubKey:  helpers.EncodeHex(pkScript),
		Address:       addr.EncodeAddress(),
	}, nil
}
