// Package memory is a mutex-guarded, process-local ledger store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	accounts []core.Account
	cats     []core.Category
	txs      map[int64]core.Transaction
	nextTxID int64
	now      func() time.Time
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs: make(map[int64]core.Transaction),
		now: time.Now,
	}
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = int64(len(s.accounts) + 1)
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) CreateCategory(_ context.Context, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = int64(len(s.cats) + 1)
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) CreateCategories(_ context.Context, names []string) ([]core.Category, error) {
	cats := make([]core.Category, 0, len(names))
	for _, name := range names {
		c := core.Category{Name: strings.TrimSpace(name)}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range cats {
		cats[i].ID = int64(len(s.cats) + 1)
		s.cats = append(s.cats, cats[i])
	}
	return cats, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) CountCategories(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cats), nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	t.CreatedAt = core.Timestamp(t.CreatedAt)
	s.nextTxID++
	t.ID = s.nextTxID
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if f.AccountID != 0 && t.AccountID != f.AccountID {
			continue
		}
		if f.Period != nil && !f.Period.Contains(t.CreatedAt) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error) {
	if err := u.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	t.Amount = u.Amount
	t.Note = u.Note
	t.CategoryID = u.CategoryID
	s.txs[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	delete(s.txs, id)
	return t, nil
}

// Entries resolves category names the way an outer join would: unknown ids
// resolve to an empty name.
func (s *Store) Entries(ctx context.Context, f ledger.EntryFilter) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[int64]string, len(s.cats))
	for _, c := range s.cats {
		names[c.ID] = c.Name
	}

	out := make([]core.Entry, 0, len(s.txs))
	for _, t := range s.txs {
		e := core.Entry{
			TransactionID: t.ID,
			AccountID:     t.AccountID,
			Amount:        t.Amount,
			CreatedAt:     t.CreatedAt,
		}
		if t.CategoryID != nil {
			e.Category = names[*t.CategoryID]
		}
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TransactionID < out[j].TransactionID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}
