package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

// Filter selects one side of the ledger and maps its sums onto a positive scale.
type Filter interface {
	Kind() core.Kind
	Sign() ledger.Sign
	Normalize(sum decimal.Decimal) decimal.Decimal
}

type IncomeFilter struct{}

func (IncomeFilter) Kind() core.Kind                              { return core.KindIncome }
func (IncomeFilter) Sign() ledger.Sign                            { return ledger.Positive }
func (IncomeFilter) Normalize(sum decimal.Decimal) decimal.Decimal { return sum }

type ExpenseFilter struct{}

func (ExpenseFilter) Kind() core.Kind                              { return core.KindExpense }
func (ExpenseFilter) Sign() ledger.Sign                            { return ledger.Negative }
func (ExpenseFilter) Normalize(sum decimal.Decimal) decimal.Decimal { return sum.Neg() }

// FilterFor returns the filter variant for k.
func FilterFor(k core.Kind) (Filter, error) {
	switch k {
	case core.KindIncome:
		return IncomeFilter{}, nil
	case core.KindExpense:
		return ExpenseFilter{}, nil
	default:
		return nil, core.NewValidationError("tx_type", fmt.Errorf("%w: %q", core.ErrInvalidKind, string(k)))
	}
}
