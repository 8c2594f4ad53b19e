package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"saldo/internal/seed"
	"saldo/internal/services"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default categories in an empty ledger",
	Long: `Create categories from a YAML seed file, or from the built-in
defaults. Nothing is created when the ledger already has categories.

Example:
  saldoctl seed
  saldoctl seed --file categories.yaml`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "category seed file (default is SEED_CATEGORIES_FILE or the built-in set)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := seedFile
	if path == "" {
		path = cfg.SeedCategoriesFile
	}
	names, err := seed.LoadCategories(path)
	if err != nil {
		return err
	}

	res, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	svc := services.NewLedgerService(res.Store, nil)
	defer func() { _ = svc.Close() }()

	n, err := svc.SeedCategories(cmd.Context(), names)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing created")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %d categories\n", n)
	return nil
}
