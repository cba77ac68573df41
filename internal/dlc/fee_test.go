package dlc

import (
	"errors"
	"testing"
)

func TestWeightToFee(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name    string
		weight  uint64
		feeRate uint64
		want    uint64
	}{
		{"exact vbytes", 400, 1, 100},
		{"rounds up", 401, 1, 101},
		{"fund share at 4 sat/vB", 503, 4, 504},
		{"cet share at 4 sat/vB", 338, 4, 340},
		{"zero fee rate", 503, 0, 0},
		{"zero weight", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.WeightToFee(tt.weight, tt.feeRate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("WeightToFee(%d, %d) = %d, want %d", tt.weight, tt.feeRate, got, tt.want)
			}
		})
	}

	if _, err := policy.WeightToFee(4000, 1<<63); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount on overflow, got %v", err)
	}
}

func TestInputWeight(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name string
		in   TxInputInfo
		want uint64
	}{
		{"p2wpkh", TxInputInfo{MaxWitnessLen: P2WPKHWitnessSize}, 164 + 107},
		{"fixture witness", TxInputInfo{MaxWitnessLen: 108}, 272},
		{"p2sh-p2wpkh", TxInputInfo{MaxWitnessLen: 107, RedeemScript: p2wpkh(0x01)}, 164 + 23*4 + 107},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.InputWeight(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("InputWeight = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPartyFeesSplitByContribution(t *testing.T) {
	policy := DefaultPolicy()
	p := fixtureParams(t)

	// A second input makes the offer side pay for it alone.
	p.Offer.Inputs = append(p.Offer.Inputs, TxInputInfo{
		Outpoint:      testOutpoint(t, 7),
		MaxWitnessLen: 108,
		SerialID:      9,
	})

	offer, err := policy.PartyFees(&p.Offer, PartyOffer, 4)
	if err != nil {
		t.Fatalf("offer PartyFees: %v", err)
	}
	accept, err := policy.PartyFees(&p.Accept, PartyAccept, 4)
	if err != nil {
		t.Fatalf("accept PartyFees: %v", err)
	}

	// 503 + 272 = 775 WU -> 194 vB -> 776 sat.
	if offer.FundFee != 776 {
		t.Errorf("offer fund fee = %d, want 776", offer.FundFee)
	}
	if accept.FundFee != 504 {
		t.Errorf("accept fund fee = %d, want 504", accept.FundFee)
	}
	if offer.CetFee != accept.CetFee {
		t.Errorf("cet fees differ for equal payout scripts: %d vs %d", offer.CetFee, accept.CetFee)
	}
}

func TestPartyFeesExactFunds(t *testing.T) {
	policy := DefaultPolicy()
	p := fixtureParams(t)
	p.Offer.InputAmount = 100000000 + 504 + 340

	fees, err := policy.PartyFees(&p.Offer, PartyOffer, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fees.Change != 0 {
		t.Errorf("change = %d, want 0", fees.Change)
	}

	p.Offer.InputAmount--
	if _, err := policy.PartyFees(&p.Offer, PartyOffer, 4); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestVSizeCustomScaleFactor(t *testing.T) {
	policy := DefaultPolicy()
	policy.WitnessScaleFactor = 2
	if got := policy.VSize(5); got != 3 {
		t.Errorf("VSize(5) with scale 2 = %d, want 3", got)
	}
}
