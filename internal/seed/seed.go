// Package seed provides the default category set and creates it in an empty ledger.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"saldo/internal/ledger"
)

//go:embed categories.yaml
var defaultCategories []byte

// File is the layout of a category seed file.
type File struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories reads category names from path, or the built-in defaults
// when path is empty. Blank and duplicate names are dropped, order is kept.
func LoadCategories(path string) ([]string, error) {
	data := defaultCategories
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return parse(data)
}

func parse(data []byte) ([]string, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed YAML: %w", err)
	}
	return dedupe(f.Categories), nil
}

// EnsureCategories creates names when the store has no categories yet and
// returns how many were created. A non-empty store is left untouched. The
// names are created as one batch, so a failed seed leaves the store empty and
// the next run tries again.
func EnsureCategories(ctx context.Context, store ledger.CategoryStore, names []string) (int, error) {
	n, err := store.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "Categories present, skipping seed", "count", n)
		return 0, nil
	}

	cats, err := store.CreateCategories(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("create categories: %w", err)
	}
	slog.InfoContext(ctx, "Seeded default categories", "count", len(cats))
	return len(cats), nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
