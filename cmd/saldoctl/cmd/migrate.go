package cmd

import (
	"github.com/spf13/cobra"

	"saldo/internal/config"
	"saldo/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply the embedded schema migrations to the configured SQL backend.

The memory backend has no schema and is left alone.

Example:
  DATA_BACKEND=postgres DATABASE_URL=postgres://... saldoctl migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.DataBackend == config.BackendMemory {
		logger.Info("Memory backend has no schema to migrate")
		return nil
	}

	// Opening a SQL backend migrates it up.
	res, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(res)

	logger.Info("Schema is up to date", "backend", cfg.DataBackend, log.FieldOperation, log.OpMigrate)
	return nil
}
