package dlc

import (
	"fmt"
	"slices"
)

// serialItem pairs an item with the serial id it is ordered by.
type serialItem[T any] struct {
	serialID uint64
	item     T
}

// orderBySerialIDs returns items sorted by ascending serial id. ids[i] is the
// serial id of items[i]. Ids are validated distinct before any transaction is
// built; the stable sort only keeps the result deterministic if that check is
// ever bypassed.
func orderBySerialIDs[T any](items []T, ids []uint64) []T {
	if len(items) != len(ids) {
		panic(fmt.Sprintf("dlc: %d items but %d serial ids", len(items), len(ids)))
	}
	pairs := make([]serialItem[T], len(items))
	for i := range items {
		pairs[i] = serialItem[T]{serialID: ids[i], item: items[i]}
	}
	slices.SortStableFunc(pairs, func(a, b serialItem[T]) int {
		switch {
		case a.serialID < b.serialID:
			return -1
		case a.serialID > b.serialID:
			return 1
		default:
			return 0
		}
	})
	out := make([]T, len(pairs))
	for i, p := range pairs {
		out[i] = p.item
	}
	return out
}

// serialOwner names where a serial id came from, for error reporting.
type serialOwner struct {
	party Party
	field string
}

// serialSet detects serial id collisions within one ordering domain.
type serialSet struct {
	domain string
	seen   map[uint64]serialOwner
}

func newSerialSet(domain string) *serialSet {
	return &serialSet{domain: domain, seen: make(map[uint64]serialOwner)}
}

func (s *serialSet) add(id uint64, party Party, field string) error {
	if prev, ok := s.seen[id]; ok {
		return newError(ErrDuplicateSerialID, party, field, NoRow,
			"%s serial id %d already used by %s %s", s.domain, id, prev.party, prev.field)
	}
	s.seen[id] = serialOwner{party: party, field: field}
	return nil
}

// validateSerialIDs checks every ordering domain: the merged funding inputs,
// the funding outputs, and the CET/refund payout outputs.
func validateSerialIDs(p *ContractParams) error {
	inputs := newSerialSet("input")
	for _, side := range []struct {
		who    Party
		params *PartyParams
	}{{PartyOffer, &p.Offer}, {PartyAccept, &p.Accept}} {
		for i, in := range side.params.Inputs {
			if err := inputs.add(in.SerialID, side.who, fmt.Sprintf("inputs[%d].serialId", i)); err != nil {
				return err
			}
		}
	}

	fundOutputs := newSerialSet("funding output")
	if err := fundOutputs.add(p.FundOutputSerialID, "", "fundOutputSerialId"); err != nil {
		return err
	}
	if err := fundOutputs.add(p.Offer.ChangeSerialID, PartyOffer, "changeSerialId"); err != nil {
		return err
	}
	if err := fundOutputs.add(p.Accept.ChangeSerialID, PartyAccept, "changeSerialId"); err != nil {
		return err
	}

	payouts := newSerialSet("payout output")
	if err := payouts.add(p.Offer.PayoutSerialID, PartyOffer, "payoutSerialId"); err != nil {
		return err
	}
	return payouts.add(p.Accept.PayoutSerialID, PartyAccept, "payoutSerialId")
}
