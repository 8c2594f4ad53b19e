package core

import (
	"fmt"
	"strings"
)

// Kind selects which side of the ledger a chart aggregates.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind accepts "income" or "expense", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindIncome, KindExpense:
		return k, nil
	default:
		return "", NewValidationError("tx_type", fmt.Errorf("%w: %q", ErrInvalidKind, s))
	}
}

func (k Kind) String() string {
	return string(k)
}
