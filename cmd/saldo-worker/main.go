package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/cache"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/sheets"
	gsheet "saldo/internal/sheets/google"
	memsheet "saldo/internal/sheets/memory"
	"saldo/internal/worker"
)

const (
	cacheCleanupInterval = 5 * time.Minute
	reconcileInterval    = time.Hour
)

func main() {
	bootLogger := cli.SetupLogger("info", log.ComponentWorker)
	if err := cli.LoadEnvFile(""); err != nil {
		cli.Fatal(bootLogger, "Failed to load environment file", err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.EffectiveLogLevel(), log.ComponentWorker)
	logger.Info("Starting saldo-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err)
		}
	}()

	writer, err := reportWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	seen := cache.NewLRUCache[struct{}](worker.DefaultSeenSize, cfg.EventDedupeTTL)
	caches := cache.NewManager()
	caches.Register(seen)
	caches.StartCleanup(cacheCleanupInterval)
	defer caches.Stop()

	w := worker.NewReportWorker(res.Store, writer, seen)

	// Catch up on events missed while the worker was down.
	if err := w.ExportCurrentMonth(ctx); err != nil {
		logger.Error("Startup export finished with errors", log.FieldError, err)
	}

	var client *amqp.Client
	if cfg.AMQPEnabled() {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer client.Close()
	} else {
		logger.Info("AMQP_URL not set, only the periodic export runs")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.RunPeriodicExport(gctx, reconcileInterval)
	})
	if client != nil {
		g.Go(func() error {
			logger.Info("Consuming ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			err := client.ConsumeEvents(gctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// reportWriter returns the Sheets client when a spreadsheet is configured and
// an in-memory sink otherwise.
func reportWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.ReportWriter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("GOOGLE_SPREADSHEET_ID not set, reports are kept in memory only")
		return memsheet.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.ReportSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.WithComponent(log.ComponentSheets).Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
