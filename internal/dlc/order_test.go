package dlc

import (
	"errors"
	"testing"
)

func TestOrderBySerialIDs(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		ids   []uint64
		want  []string
	}{
		{"already ordered", []string{"a", "b", "c"}, []uint64{1, 2, 3}, []string{"a", "b", "c"}},
		{"reversed", []string{"a", "b", "c"}, []uint64{3, 2, 1}, []string{"c", "b", "a"}},
		{"sparse ids", []string{"fund", "offer", "accept"}, []uint64{900, 7, 42}, []string{"offer", "accept", "fund"}},
		{"max uint64", []string{"x", "y"}, []uint64{^uint64(0), 0}, []string{"y", "x"}},
		{"empty", nil, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderBySerialIDs(tt.items, tt.ids)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOrderBySerialIDsDoesNotMutateInput(t *testing.T) {
	items := []string{"a", "b"}
	_ = orderBySerialIDs(items, []uint64{2, 1})
	if items[0] != "a" {
		t.Error("input slice was reordered in place")
	}
}

func TestValidateSerialIDsSeparateDomains(t *testing.T) {
	// The same number may appear in different ordering domains.
	p := fixtureParams(t)
	p.Offer.Inputs[0].SerialID = 1
	p.Offer.PayoutSerialID = 1
	if err := validateSerialIDs(p); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSerialIDsCollision(t *testing.T) {
	p := fixtureParams(t)
	p.Accept.Inputs = append(p.Accept.Inputs, TxInputInfo{Outpoint: testOutpoint(t, 5), SerialID: 5})

	err := validateSerialIDs(p)
	if !errors.Is(err, ErrDuplicateSerialID) {
		t.Fatalf("expected ErrDuplicateSerialID, got %v", err)
	}
	var cerr *ContractError
	if !errors.As(err, &cerr) || cerr.Field != "inputs[1].serialId" {
		t.Errorf("unexpected error detail: %v", err)
	}
}
