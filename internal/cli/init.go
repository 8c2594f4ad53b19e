// Package cli holds the start-up steps shared by saldo, saldo-worker and saldoctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saldo/internal/backend"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/seed"
	"saldo/internal/services"
)

// LoadEnvFile loads path, or ./.env when path is empty. A missing default
// .env is not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// SetupLogger builds the process logger on stdout and installs it as the
// slog default. An unknown level falls back to info and is reported through
// the new logger.
func SetupLogger(level, component string) *log.Logger {
	return SetupLoggerTo(os.Stdout, level, component)
}

// SetupLoggerTo is SetupLogger writing to w.
func SetupLoggerTo(w io.Writer, level, component string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	cfg.Component = component
	cfg.Output = w
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", log.FieldError, err)
	}
	return logger
}

func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens and migrates the configured backend.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	return factory.CreateBackend(ctx, bcfg)
}

// SeedCategories creates the default categories when seeding is enabled and
// the ledger has none.
func SeedCategories(ctx context.Context, logger *log.Logger, cfg *config.Config, svc *services.LedgerService) error {
	if !cfg.SeedCategories {
		logger.Debug("Category seeding disabled")
		return nil
	}
	names, err := seed.LoadCategories(cfg.SeedCategoriesFile)
	if err != nil {
		return err
	}
	n, err := svc.SeedCategories(ctx, names)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if n > 0 {
		logger.WithComponent(log.ComponentSeed).Info("Default categories created", "count", n)
	}
	return nil
}

// SignalContext is cancelled on SIGINT or SIGTERM. The returned stop
// releases the signal handler.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err, log.FieldErrorType, log.ErrorType(err))
	os.Exit(1)
}
