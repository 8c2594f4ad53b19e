package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/report"
)

// Amounts leave the API as JSON numbers. Engine values are already rounded
// where rounding applies, so the float conversion only affects presentation.
func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// amountInput accepts an amount as a JSON number or string and keeps its
// literal text so it can be validated with core.ParseAmount.
type amountInput string

func (a *amountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountInput(s)
		return nil
	}
	*a = amountInput(data)
	return nil
}

func (a amountInput) parse() (decimal.Decimal, error) {
	return core.ParseAmount(string(a))
}

// Layouts accepted for created_at, all read as UTC wall clock.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, core.NewValidationError("created_at", errors.New("unrecognized timestamp"))
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func toAccount(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Currency: a.Currency}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type createTransactionRequest struct {
	AccountID  int64       `json:"account_id"`
	Amount     amountInput `json:"amount"`
	Note       string      `json:"note"`
	CategoryID *int64      `json:"category_id"`
	CreatedAt  string      `json:"created_at"`
}

func (req createTransactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := req.Amount.parse()
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		AccountID:  req.AccountID,
		Amount:     amount,
		Note:       strings.TrimSpace(req.Note),
		CategoryID: req.CategoryID,
	}
	if strings.TrimSpace(req.CreatedAt) != "" {
		if tx.CreatedAt, err = parseTimestamp(req.CreatedAt); err != nil {
			return core.Transaction{}, err
		}
	}
	return tx, nil
}

type updateTransactionRequest struct {
	Amount     amountInput `json:"amount"`
	Note       string      `json:"note"`
	CategoryID *int64      `json:"category_id"`
}

func (req updateTransactionRequest) toUpdate() (core.TransactionUpdate, error) {
	amount, err := req.Amount.parse()
	if err != nil {
		return core.TransactionUpdate{}, err
	}
	return core.TransactionUpdate{
		Amount:     amount,
		Note:       strings.TrimSpace(req.Note),
		CategoryID: req.CategoryID,
	}, nil
}

type transactionResponse struct {
	ID         int64   `json:"id"`
	AccountID  int64   `json:"account_id"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
	CategoryID *int64  `json:"category_id"`
	CreatedAt  string  `json:"created_at"`
}

// createdAtLayout renders timestamps without a zone, as they are stored.
const createdAtLayout = "2006-01-02T15:04:05.999999"

func toTransaction(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		AccountID:  t.AccountID,
		Amount:     num(t.Amount),
		Note:       t.Note,
		CategoryID: t.CategoryID,
		CreatedAt:  t.CreatedAt.UTC().Format(createdAtLayout),
	}
}

func toTransactions(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransaction(t))
	}
	return out
}

type balanceResponse struct {
	AccountID int64   `json:"account_id"`
	Balance   float64 `json:"balance"`
}

type accountBalanceResponse struct {
	AccountID   int64   `json:"account_id"`
	AccountName string  `json:"account_name"`
	Currency    string  `json:"currency"`
	Balance     float64 `json:"balance"`
}

func toAccountBalances(rows []report.AccountBalance) []accountBalanceResponse {
	out := make([]accountBalanceResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, accountBalanceResponse{
			AccountID:   b.AccountID,
			AccountName: b.AccountName,
			Currency:    b.Currency,
			Balance:     num(b.Balance),
		})
	}
	return out
}

type dailyBalanceResponse struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

func toTimeseries(points []report.DailyBalance) []dailyBalanceResponse {
	out := make([]dailyBalanceResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dailyBalanceResponse{Date: p.Date.Format("2006-01-02"), Balance: num(p.Balance)})
	}
	return out
}

type incomeExpenseResponse struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type periodResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type kpisResponse struct {
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Net        float64 `json:"net"`
	BalanceEnd float64 `json:"balance_end"`
}

type categorySpendResponse struct {
	Category string  `json:"category"`
	Spent    float64 `json:"spent"`
}

type monthlyReportResponse struct {
	AccountID  int64                   `json:"account_id"`
	Period     periodResponse          `json:"period"`
	KPIs       kpisResponse            `json:"kpis"`
	ByCategory []categorySpendResponse `json:"by_category"`
}

func toMonthlyReport(rep report.MonthlyReport) monthlyReportResponse {
	out := monthlyReportResponse{
		AccountID: rep.AccountID,
		Period:    periodResponse{Year: rep.Period.Year, Month: rep.Period.Month},
		KPIs: kpisResponse{
			Income:     num(rep.KPIs.Income),
			Expense:    num(rep.KPIs.Expense),
			Net:        num(rep.KPIs.Net),
			BalanceEnd: num(rep.KPIs.BalanceEnd),
		},
		ByCategory: make([]categorySpendResponse, 0, len(rep.ByCategory)),
	}
	for _, c := range rep.ByCategory {
		out.ByCategory = append(out.ByCategory, categorySpendResponse{Category: c.Category, Spent: num(c.Spent)})
	}
	return out
}

type categoryTotalResponse struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

func toChart(rows []report.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, categoryTotalResponse{Category: c.Category, Total: num(c.Total)})
	}
	return out
}
