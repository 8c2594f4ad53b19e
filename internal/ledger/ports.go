// Package ledger defines the storage ports the aggregation engine and the
// ledger services depend on.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Sign restricts an entry scan to one side of the ledger.
type Sign int

const (
	AnySign Sign = iota
	Positive
	Negative
)

// Match reports whether amount satisfies the sign predicate. Zero amounts
// only ever match AnySign.
func (s Sign) Match(amount decimal.Decimal) bool {
	switch s {
	case Positive:
		return amount.IsPositive()
	case Negative:
		return amount.IsNegative()
	default:
		return true
	}
}

// EntryFilter selects ledger entries for aggregation.
type EntryFilter struct {
	AccountID int64     // 0 selects every account
	From      time.Time // inclusive, zero means unbounded
	To        time.Time // exclusive, zero means unbounded
	Sign      Sign
}

// Matches applies the filter to a single entry.
func (f EntryFilter) Matches(e core.Entry) bool {
	if f.AccountID != 0 && e.AccountID != f.AccountID {
		return false
	}
	if !f.From.IsZero() && e.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.CreatedAt.Before(f.To) {
		return false
	}
	return f.Sign.Match(e.Amount)
}

// TransactionFilter selects transactions for listing.
type TransactionFilter struct {
	AccountID int64        // 0 selects every account
	Period    *core.Period // nil means all time
}

// Ports for the ledger store.
type (
	// Reader is everything the aggregation engine needs. Entries are returned
	// ordered by created_at, then id, with category names resolved through an
	// outer join so missing categories come back empty.
	Reader interface {
		Entries(ctx context.Context, f EntryFilter) ([]core.Entry, error)
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	AccountWriter interface {
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, name string) (core.Category, error)
		// CreateCategories creates all names or none of them.
		CreateCategories(ctx context.Context, names []string) ([]core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		CountCategories(ctx context.Context) (int, error)
	}

	// TransactionStore mutates single transactions. Get, Update and Delete
	// return core.ErrNotFound when the id does not exist.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error)
	}

	Store interface {
		Reader
		AccountWriter
		CategoryStore
		TransactionStore
		Ping(ctx context.Context) error
		Close() error
	}
)
