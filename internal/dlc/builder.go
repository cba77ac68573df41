package dlc

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/klingon-dlc/pkg/helpers"
	"github.com/klingon-exchange/klingon-dlc/pkg/logging"
)

// Builder constructs contract transaction sets under a fixed policy.
// It holds no per-contract state and is safe for concurrent use.
type Builder struct {
	policy Policy
	log    *logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder creates a Builder for the given policy.
func NewBuilder(policy Policy, opts ...Option) (*Builder, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	b := &Builder{policy: policy, log: logging.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Policy returns the builder's policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// CreateTransactions builds the contract transaction set with DefaultPolicy.
func CreateTransactions(p *ContractParams) (*Transactions, error) {
	b, err := NewBuilder(DefaultPolicy())
	if err != nil {
		return nil, err
	}
	return b.CreateTransactions(p)
}

// CreateTransactions validates p and builds the funding transaction, one CET
// per payout (same order) and the refund transaction. Either the whole set is
// returned or an error wrapping one of the Err* kinds; never a partial set.
func (b *Builder) CreateTransactions(p *ContractParams) (*Transactions, error) {
	plan, err := b.validate(p)
	if err != nil {
		return nil, err
	}

	funding, err := b.buildFunding(p, plan.fundingScript, plan.offerFees, plan.acceptFees)
	if err != nil {
		return nil, err
	}

	txs := &Transactions{
		Fund:            funding.tx,
		FundingScript:   plan.fundingScript,
		FundOutputIndex: funding.outputIndex,
		FundOutputValue: funding.outputValue,
		OfferFees:       plan.offerFees,
		AcceptFees:      plan.acceptFees,
	}
	fundOutpoint := txs.FundOutpoint()
	txs.CETs = b.buildCETs(p, fundOutpoint)
	txs.Refund = b.buildRefund(p, fundOutpoint)

	b.log.Debug("Contract transactions built",
		"fund_txid", fundOutpoint.Hash.String(),
		"fund_vout", fundOutpoint.Index,
		"fund_value", helpers.SatoshisToBTC(funding.outputValue),
		"cets", len(txs.CETs),
		"offer_fund_fee", plan.offerFees.FundFee,
		"accept_fund_fee", plan.acceptFees.FundFee,
		"cet_fee", plan.offerFees.CetFee+plan.acceptFees.CetFee,
	)

	return txs, nil
}

// buildPlan is the validated, fee-resolved input to the transaction builders.
type buildPlan struct {
	fundingScript []byte
	offerFees     PartyFees
	acceptFees    PartyFees
}

// Validate checks every cross-entity invariant of p without building anything.
func (b *Builder) Validate(p *ContractParams) error {
	_, err := b.validate(p)
	return err
}

func (b *Builder) validate(p *ContractParams) (*buildPlan, error) {
	if p == nil {
		return nil, newError(ErrInvalidAmount, "", "", NoRow, "nil contract params")
	}

	fundingScript, err := BuildFundingScript(p.Offer.FundPubKey, p.Accept.FundPubKey)
	if err != nil {
		return nil, err
	}
	if err := validateParty(&p.Offer, PartyOffer); err != nil {
		return nil, err
	}
	if err := validateParty(&p.Accept, PartyAccept); err != nil {
		return nil, err
	}
	if err := validateOutpoints(p); err != nil {
		return nil, err
	}
	if len(p.Offer.Inputs)+len(p.Accept.Inputs) == 0 {
		return nil, newError(ErrInvalidAmount, "", "inputs", NoRow, "funding transaction has no inputs")
	}

	total, err := p.TotalCollateral()
	if err != nil || !inSatoshiRange(total) {
		return nil, newError(ErrInvalidAmount, "", "collateral", NoRow, "total collateral overflows")
	}
	if total == 0 {
		return nil, newError(ErrInvalidAmount, "", "collateral", NoRow, "total collateral is zero")
	}
	if err := validatePayouts(p.Payouts, total); err != nil {
		return nil, err
	}
	if err := validateLockTimes(p); err != nil {
		return nil, err
	}
	if err := validateSerialIDs(p); err != nil {
		return nil, err
	}

	offerFees, err := b.policy.PartyFees(&p.Offer, PartyOffer, p.FeeRatePerVb)
	if err != nil {
		return nil, err
	}
	acceptFees, err := b.policy.PartyFees(&p.Accept, PartyAccept, p.FeeRatePerVb)
	if err != nil {
		return nil, err
	}

	fundValue, err := fundOutputValue(p, offerFees, acceptFees)
	if err != nil || !inSatoshiRange(fundValue) {
		return nil, newError(ErrInvalidAmount, "", "collateral", NoRow, "funding output value overflows")
	}
	if err := b.validateOutcomeOutputs(p); err != nil {
		return nil, err
	}

	return &buildPlan{
		fundingScript: fundingScript,
		offerFees:     offerFees,
		acceptFees:    acceptFees,
	}, nil
}

func validateParty(party *PartyParams, who Party) error {
	if err := validateScriptPubKey(party.ChangeScriptPubKey); err != nil {
		return newError(ErrInvalidScript, who, "changeScriptPubkey", NoRow, "%v", err)
	}
	if err := validateScriptPubKey(party.PayoutScriptPubKey); err != nil {
		return newError(ErrInvalidScript, who, "payoutScriptPubkey", NoRow, "%v", err)
	}
	for i, in := range party.Inputs {
		if len(in.RedeemScript) == 0 {
			continue
		}
		if err := validateScriptPubKey(in.RedeemScript); err != nil {
			return newError(ErrInvalidScript, who, fmt.Sprintf("inputs[%d].redeemScript", i), NoRow, "%v", err)
		}
	}
	if !inSatoshiRange(party.InputAmount) {
		return newError(ErrInvalidAmount, who, "inputAmount", NoRow, "%d exceeds max satoshi", party.InputAmount)
	}
	if !inSatoshiRange(party.Collateral) {
		return newError(ErrInvalidAmount, who, "collateral", NoRow, "%d exceeds max satoshi", party.Collateral)
	}
	if len(party.Inputs) == 0 && (party.InputAmount > 0 || party.Collateral > 0) {
		return newError(ErrInvalidAmount, who, "inputs", NoRow,
			"input amount %d and collateral %d declared without funding inputs", party.InputAmount, party.Collateral)
	}
	return nil
}

// validateOutpoints rejects a funding input spent twice across both parties.
func validateOutpoints(p *ContractParams) error {
	seen := make(map[wire.OutPoint]Party)
	for _, side := range []struct {
		who    Party
		params *PartyParams
	}{{PartyOffer, &p.Offer}, {PartyAccept, &p.Accept}} {
		for i, in := range side.params.Inputs {
			if prev, ok := seen[in.Outpoint]; ok {
				return newError(ErrInvalidOutpoint, side.who, fmt.Sprintf("inputs[%d].outpoint", i), NoRow,
					"%s already spent by %s", in.Outpoint, prev)
			}
			seen[in.Outpoint] = side.who
		}
	}
	return nil
}

// validatePayouts enforces value conservation on every outcome row.
func validatePayouts(payouts []Payout, totalCollateral uint64) error {
	if len(payouts) == 0 {
		return newError(ErrNoPayouts, "", "payouts", NoRow, "at least one payout is required")
	}
	for i, payout := range payouts {
		sum, err := addAmounts(payout.Offer, payout.Accept)
		if err != nil {
			return newError(ErrPayoutConservation, "", "payouts", i, "offer %d + accept %d overflows",
				payout.Offer, payout.Accept)
		}
		if sum != totalCollateral {
			return newError(ErrPayoutConservation, "", "payouts", i,
				"offer %d + accept %d = %d, total collateral %d",
				payout.Offer, payout.Accept, sum, totalCollateral)
		}
	}
	return nil
}

// validateOutcomeOutputs rejects any CET or refund that would be left with
// no output once dust is removed.
func (b *Builder) validateOutcomeOutputs(p *ContractParams) error {
	for i, payout := range p.Payouts {
		if len(b.payoutOutputs(p, payout.Offer, payout.Accept)) == 0 {
			return newError(ErrInvalidAmount, "", "payouts", i, "every output of the cet is below dust")
		}
	}
	if len(b.payoutOutputs(p, p.Offer.Collateral, p.Accept.Collateral)) == 0 {
		return newError(ErrInvalidAmount, "", "collateral", NoRow, "every output of the refund is below dust")
	}
	return nil
}
