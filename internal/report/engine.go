// Package report is the aggregation engine. It turns the signed amounts of the
// ledger into balances, cumulative time series, income/expense splits and
// per-category breakdowns.
//
// Every operation is a single read pass over the store and never writes.
// Amounts accumulate at full precision; only Timeseries and IncomeExpense
// round the values they emit.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

type Engine struct {
	store ledger.Reader
}

func NewEngine(store ledger.Reader) *Engine {
	return &Engine{store: store}
}

// Balance sums every amount of the account. Unknown accounts have balance 0.
func (e *Engine) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return decimal.Zero, err
	}
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{AccountID: accountID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance of account %d: %w", accountID, err)
	}
	return sum(entries), nil
}

// AllBalances returns one row per account, ordered by account id. Accounts
// without transactions appear with a zero balance.
func (e *Engine) AllBalances(ctx context.Context) ([]AccountBalance, error) {
	accounts, err := e.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{})
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}

	totals := make(map[int64]decimal.Decimal, len(accounts))
	for _, en := range entries {
		totals[en.AccountID] = totals[en.AccountID].Add(en.Amount)
	}

	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountBalance{
			AccountID:   a.ID,
			AccountName: a.Name,
			Currency:    a.Currency,
			Balance:     totals[a.ID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// Timeseries groups the account's amounts by calendar day and returns the
// running balance at the end of each day, oldest first.
func (e *Engine) Timeseries(ctx context.Context, accountID int64) ([]DailyBalance, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("timeseries of account %d: %w", accountID, err)
	}

	daily := make(map[time.Time]decimal.Decimal)
	for _, en := range entries {
		d := core.Day(en.CreatedAt)
		daily[d] = daily[d].Add(en.Amount)
	}
	days := make([]time.Time, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DailyBalance, 0, len(days))
	running := decimal.Zero
	for _, d := range days {
		running = running.Add(daily[d])
		out = append(out, DailyBalance{Date: d, Balance: core.RoundCents(running)})
	}
	return out, nil
}

// IncomeExpense splits the account's amounts by sign. Zero amounts count
// toward neither side.
func (e *Engine) IncomeExpense(ctx context.Context, accountID int64) (IncomeExpense, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return IncomeExpense{}, err
	}
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{AccountID: accountID})
	if err != nil {
		return IncomeExpense{}, fmt.Errorf("income/expense of account %d: %w", accountID, err)
	}
	income, expense := split(entries)
	return IncomeExpense{
		Income:  core.RoundCents(income),
		Expense: core.RoundCents(expense.Abs()),
	}, nil
}

// MonthlyReport computes the KPIs and the expense breakdown of one calendar
// month. The period is validated before the store is touched.
func (e *Engine) MonthlyReport(ctx context.Context, accountID int64, year, month int) (MonthlyReport, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return MonthlyReport{}, err
	}
	period, err := core.MonthPeriod(year, month)
	if err != nil {
		return MonthlyReport{}, err
	}

	// One scan up to the period end covers both the closing balance and the
	// in-period figures.
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{AccountID: accountID, To: period.End})
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report %s of account %d: %w", period, accountID, err)
	}

	inPeriod := make([]core.Entry, 0, len(entries))
	for _, en := range entries {
		if period.Contains(en.CreatedAt) {
			inPeriod = append(inPeriod, en)
		}
	}
	income, expense := split(inPeriod)

	var byCategory []CategorySpend
	for _, ct := range groupByCategory(inPeriod, ExpenseFilter{}) {
		byCategory = append(byCategory, CategorySpend{Category: ct.Category, Spent: ct.Total})
	}
	if byCategory == nil {
		byCategory = []CategorySpend{}
	}

	return MonthlyReport{
		AccountID: accountID,
		Period:    period,
		KPIs: KPIs{
			Income:     income,
			Expense:    expense.Abs(),
			Net:        income.Add(expense),
			BalanceEnd: sum(entries),
		},
		ByCategory: byCategory,
	}, nil
}

// ChartData aggregates all-time per-category totals for one side of the ledger.
func (e *Engine) ChartData(ctx context.Context, accountID int64, kind core.Kind) ([]CategoryTotal, error) {
	if err := core.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	f, err := FilterFor(kind)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.Entries(ctx, ledger.EntryFilter{AccountID: accountID, Sign: f.Sign()})
	if err != nil {
		return nil, fmt.Errorf("%s chart of account %d: %w", kind, accountID, err)
	}
	return groupByCategory(entries, f), nil
}

func sum(entries []core.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, en := range entries {
		total = total.Add(en.Amount)
	}
	return total
}

// split returns the positive sum and the signed negative sum.
func split(entries []core.Entry) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, en := range entries {
		switch {
		case en.Amount.IsPositive():
			income = income.Add(en.Amount)
		case en.Amount.IsNegative():
			expense = expense.Add(en.Amount)
		}
	}
	return income, expense
}

// groupByCategory sums the entries matching f per category label and orders
// the totals descending, breaking ties by label.
func groupByCategory(entries []core.Entry, f Filter) []CategoryTotal {
	sign := f.Sign()
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, en := range entries {
		if !sign.Match(en.Amount) {
			continue
		}
		label := en.CategoryLabel()
		if _, ok := sums[label]; !ok {
			order = append(order, label)
		}
		sums[label] = sums[label].Add(en.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, label := range order {
		out = append(out, CategoryTotal{Category: label, Total: f.Normalize(sums[label])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
