// Package cmd provides the saldoctl commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
)

var (
	envFile string
	debug   bool
	output  string

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "saldoctl",
	Short: "Maintain a saldo ledger and print its reports",
	Long: `saldoctl works directly against the configured data backend.

It reads the same environment as the saldo server (DATA_BACKEND,
SQLITE_DB_PATH, DATABASE_URL, ...).

Example:
  saldoctl migrate
  saldoctl seed --file categories.yaml
  saldoctl report --account 1 --year 2026 --month 1
  saldoctl chart --account 1 --kind income -o yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.LoadEnvFile(envFile); err != nil {
			return err
		}

		loaded, err := cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.EffectiveLogLevel()
		if debug {
			level = "debug"
		}
		// Logs go to stderr so stdout carries only command output.
		logger = cli.SetupLoggerTo(os.Stderr, level, log.ComponentCLI)

		switch output {
		case formatTable, formatYAML:
			return nil
		default:
			return fmt.Errorf("unknown output format %q, want %s or %s", output, formatTable, formatYAML)
		}
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := cli.SignalContext()
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatTable, "output format: table or yaml")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(timeseriesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(chartCmd)
}

// openStore opens the configured backend; callers must run the cleanup.
func openStore(ctx context.Context) (*backend.BackendResult, error) {
	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.DataBackend, err)
	}
	return res, nil
}

func closeStore(res *backend.BackendResult) {
	if err := res.Cleanup(); err != nil {
		logger.Error("Failed to close store", log.FieldError, err)
	}
}
