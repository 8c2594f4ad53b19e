// Package core provides the ledger domain model and the money, period and
// kind primitives shared by the stores and the aggregation engine.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the precision amounts are stored with and rounded to.
const CentPlaces = 2

// ParseAmount converts a signed decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Values
// with more than two fractional digits are rejected rather than rounded.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("-12,5")  -> -12.5, nil
//	ParseAmount("1.005")  -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", ErrInvalidAmount)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", ErrInvalidAmount)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects amounts finer than a cent. Zero is a valid amount.
func ValidateAmount(d decimal.Decimal) error {
	if !d.Equal(d.Round(CentPlaces)) {
		return NewValidationError("amount", ErrInvalidAmount)
	}
	return nil
}

// RoundCents rounds half away from zero to two places. Aggregations
// accumulate at full precision and round only the values they emit.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}
