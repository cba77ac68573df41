package dlc

import (
	"errors"
	"fmt"
	"strings"
)

// Contract construction errors. Every failure returned by the builder wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrDuplicateSerialID       = errors.New("duplicate serial id")
	ErrInvalidTimelockOrdering = errors.New("invalid timelock ordering")
	ErrInvalidScript           = errors.New("invalid script")
	ErrPayoutConservation      = errors.New("payout does not conserve total collateral")
	ErrInvalidOutpoint         = errors.New("invalid outpoint")
	ErrNoPayouts               = errors.New("no payouts")
)

// NoRow marks a ContractError that is not tied to a payout row.
const NoRow = -1

// ContractError describes which part of the contract parameters was rejected.
type ContractError struct {
	Kind   error
	Party  Party  // empty when the error is not party specific
	Field  string // parameter name as it appears on the wire, e.g. "changeSerialId"
	Row    int    // payout row index, NoRow when n/a
	Detail string
}

func (e *ContractError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Party != "" {
		fmt.Fprintf(&b, ": %s", e.Party)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Row != NoRow {
		fmt.Fprintf(&b, ": payout %d", e.Row)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *ContractError) Unwrap() error {
	return e.Kind
}

func newError(kind error, party Party, field string, row int, format string, args ...interface{}) *ContractError {
	return &ContractError{
		Kind:   kind,
		Party:  party,
		Field:  field,
		Row:    row,
		Detail: fmt.Sprintf(format, args...),
	}
}

// ErrorKind returns a short stable name for the sentinel wrapped by err,
// or "" if err is not a contract error.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrDuplicateSerialID):
		return "DuplicateSerialIdentifier"
	case errors.Is(err, ErrInvalidTimelockOrdering):
		return "InvalidTimelockOrdering"
	case errors.Is(err, ErrInvalidScript):
		return "InvalidScript"
	case errors.Is(err, ErrPayoutConservation):
		return "PayoutConservationViolation"
	case errors.Is(err, ErrInvalidOutpoint):
		return "InvalidOutpoint"
	case errors.Is(err, ErrNoPayouts):
		return "NoPayouts"
	default:
		return ""
	}
}
