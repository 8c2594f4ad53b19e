package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"saldo/internal/ledger/memory"
)

func TestLoadDefaultCategories(t *testing.T) {
	names, err := LoadCategories("")
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(names) != 10 {
		t.Fatalf("expected 10 default categories, got %d: %v", len(names), names)
	}
	if names[0] != "Lebensmittel & Haushalt" || names[8] != "Gehalt" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestLoadCategoriesFromFileDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cats.yaml")
	content := "categories:\n  - Miete\n  - \"  \"\n  - Miete\n  - Urlaub\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(names) != 2 || names[0] != "Miete" || names[1] != "Urlaub" {
		t.Fatalf("unexpected names: %v", names)
	}

	if _, err := LoadCategories(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnsureCategoriesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	created, err := EnsureCategories(ctx, store, []string{"A", "B"})
	if err != nil || created != 2 {
		t.Fatalf("first seed: created=%d err=%v", created, err)
	}
	created, err = EnsureCategories(ctx, store, []string{"A", "B", "C"})
	if err != nil || created != 0 {
		t.Fatalf("second seed: created=%d err=%v", created, err)
	}
	n, _ := store.CountCategories(ctx)
	if n != 2 {
		t.Fatalf("expected 2 categories, got %d", n)
	}
}

func TestEnsureCategoriesFailedSeedIsRetried(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	if _, err := EnsureCategories(ctx, store, []string{"A", " ", "B"}); err == nil {
		t.Fatal("expected error for blank category name")
	}
	if n, _ := store.CountCategories(ctx); n != 0 {
		t.Fatalf("failed seed left %d categories behind", n)
	}

	created, err := EnsureCategories(ctx, store, []string{"A", "B"})
	if err != nil || created != 2 {
		t.Fatalf("retry: created=%d err=%v", created, err)
	}
}
