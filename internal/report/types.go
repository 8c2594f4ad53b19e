package report

import (
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// AccountBalance is one row of the all-balances view.
type AccountBalance struct {
	AccountID   int64
	AccountName string
	Currency    string
	Balance     decimal.Decimal
}

// DailyBalance is the cumulative balance at the end of a calendar day.
type DailyBalance struct {
	Date    time.Time
	Balance decimal.Decimal
}

// IncomeExpense splits an account's amounts by sign. Expense is a magnitude.
type IncomeExpense struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type KPIs struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal // magnitude of the period's negative amounts
	Net        decimal.Decimal
	BalanceEnd decimal.Decimal // everything strictly before the period end
}

type CategorySpend struct {
	Category string
	Spent    decimal.Decimal
}

type MonthlyReport struct {
	AccountID  int64
	Period     core.Period
	KPIs       KPIs
	ByCategory []CategorySpend
}

// CategoryTotal is one slice of a per-category chart.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}
