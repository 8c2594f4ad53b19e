package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

func TestMemoryStoreAccountsAndCategories(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateAccount(ctx, core.Account{Name: "Giro"})
	if err != nil || a.ID != 1 || a.Currency != "EUR" {
		t.Fatalf("unexpected account: %+v err=%v", a, err)
	}
	if _, err := s.CreateAccount(ctx, core.Account{Name: " "}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := s.CreateCategory(ctx, "Miete"); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountCategories(ctx)
	if n != 1 {
		t.Fatalf("expected 1 category, got %d", n)
	}
}

func TestMemoryStoreEntriesResolveCategories(t *testing.T) {
	ctx := context.Background()
	s := New()
	miete, _ := s.CreateCategory(ctx, "Miete")
	dangling := int64(42)
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	mustCreate := func(amount string, cat *int64, at time.Time) {
		t.Helper()
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			AccountID:  1,
			Amount:     decimal.RequireFromString(amount),
			CategoryID: cat,
			CreatedAt:  at,
		}); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate("-200", &miete.ID, day)
	mustCreate("-50", &dangling, day.Add(time.Hour))
	mustCreate("1000", nil, day.Add(-time.Hour))

	entries, err := s.Entries(ctx, ledger.EntryFilter{AccountID: 1, Sign: ledger.Negative})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 negative entries, got %d", len(entries))
	}
	if entries[0].CategoryLabel() != "Miete" || entries[1].CategoryLabel() != core.NoCategory {
		t.Fatalf("unexpected labels: %q, %q", entries[0].CategoryLabel(), entries[1].CategoryLabel())
	}

	all, _ := s.Entries(ctx, ledger.EntryFilter{})
	if len(all) != 3 || !all[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected chronological order, got %+v", all)
	}
}

func TestMemoryStoreUpdateDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.UpdateTransaction(ctx, 99, core.TransactionUpdate{Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.DeleteTransaction(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tx, _ := s.CreateTransaction(ctx, core.Transaction{AccountID: 1, Amount: decimal.NewFromInt(5), Note: "a"})
	upd, err := s.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Amount: decimal.NewFromInt(-5), Note: "b"})
	if err != nil || !upd.Amount.Equal(decimal.NewFromInt(-5)) || upd.Note != "b" || !upd.CreatedAt.Equal(tx.CreatedAt) {
		t.Fatalf("unexpected update: %+v err=%v", upd, err)
	}
	if _, err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
