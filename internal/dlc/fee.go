package dlc

// changeOutputWeight is the weight of a change output without its script:
// 8-byte value plus the 1-byte script length.
const changeOutputWeight = (8 + 1) * 4

// WeightToFee converts a weight to a fee: ceil(weight / scale) * feeRate.
func (p Policy) WeightToFee(weight, feeRatePerVb uint64) (uint64, error) {
	return mulAmounts(p.VSize(weight), feeRatePerVb)
}

// VSize converts a weight to virtual bytes, rounding up.
func (p Policy) VSize(weight uint64) uint64 {
	return weight/p.WitnessScaleFactor + boolToUint(weight%p.WitnessScaleFactor != 0)
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// InputWeight returns the non-witness weight of a funding input plus its
// declared maximum witness length.
func (p Policy) InputWeight(in TxInputInfo) (uint64, error) {
	scriptSig, err := redeemScriptToScriptSig(in.RedeemScript)
	if err != nil {
		return 0, err
	}
	scriptWeight, err := mulAmounts(uint64(len(scriptSig)), p.WitnessScaleFactor)
	if err != nil {
		return 0, err
	}
	return addAmounts(p.TxInputBaseWeight, scriptWeight, uint64(in.MaxWitnessLen))
}

// FundWeight is the funding transaction weight attributed to one party:
// half the shared base weight, the party's own inputs and its change output.
func (p Policy) FundWeight(party *PartyParams) (uint64, error) {
	total := p.FundTxBaseWeight / 2
	for _, in := range party.Inputs {
		w, err := p.InputWeight(in)
		if err != nil {
			return 0, err
		}
		if total, err = addAmounts(total, w); err != nil {
			return 0, err
		}
	}
	changeWeight, err := mulAmounts(uint64(len(party.ChangeScriptPubKey)), p.WitnessScaleFactor)
	if err != nil {
		return 0, err
	}
	return addAmounts(total, changeWeight, changeOutputWeight)
}

// CetWeight is the CET/refund weight attributed to one party: half the shared
// base weight (version, locktime, funding input and witness) plus its payout script.
func (p Policy) CetWeight(party *PartyParams) (uint64, error) {
	spkWeight, err := mulAmounts(uint64(len(party.PayoutScriptPubKey)), p.WitnessScaleFactor)
	if err != nil {
		return 0, err
	}
	return addAmounts(p.CetBaseWeight/2, spkWeight)
}

// PartyFees computes a party's funding fee, CET/refund fee reserve and change.
// The party's input amount must cover collateral plus both fees.
func (p Policy) PartyFees(party *PartyParams, who Party, feeRatePerVb uint64) (PartyFees, error) {
	fundWeight, err := p.FundWeight(party)
	if err != nil {
		return PartyFees{}, newError(ErrInvalidAmount, who, "inputs", NoRow, "funding weight overflow")
	}
	fundFee, err := p.WeightToFee(fundWeight, feeRatePerVb)
	if err != nil {
		return PartyFees{}, newError(ErrInvalidAmount, who, "feeRatePerVb", NoRow, "funding fee overflow")
	}

	cetWeight, err := p.CetWeight(party)
	if err != nil {
		return PartyFees{}, newError(ErrInvalidAmount, who, "payoutScriptPubkey", NoRow, "cet weight overflow")
	}
	cetFee, err := p.WeightToFee(cetWeight, feeRatePerVb)
	if err != nil {
		return PartyFees{}, newError(ErrInvalidAmount, who, "feeRatePerVb", NoRow, "cet fee overflow")
	}

	required, err := addAmounts(party.Collateral, fundFee, cetFee)
	if err != nil {
		return PartyFees{}, newError(ErrInvalidAmount, who, "collateral", NoRow, "collateral plus fees overflow")
	}
	if party.InputAmount < required {
		return PartyFees{}, newError(ErrInsufficientFunds, who, "inputAmount", NoRow,
			"need %d (collateral %d, fund fee %d, cet fee %d), have %d",
			required, party.Collateral, fundFee, cetFee, party.InputAmount)
	}

	return PartyFees{
		FundFee: fundFee,
		CetFee:  cetFee,
		Change:  party.InputAmount - required,
	}, nil
}
