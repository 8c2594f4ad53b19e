package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
	"saldo/internal/services"
)

func main() {
	bootLogger := cli.SetupLogger("info", log.ComponentApp)
	if err := cli.LoadEnvFile(""); err != nil {
		cli.Fatal(bootLogger, "Failed to load environment file", err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.EffectiveLogLevel(), log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Server stopped with error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return err
	}

	// A nil *amqp.Client must not be stored in the interface.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			_ = res.Cleanup()
			return err
		}
		publisher = client
		logger.Info("Ledger events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP_URL not set, ledger events disabled")
	}

	svc := services.NewLedgerService(res.Store, publisher)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger service", log.FieldError, err)
		}
	}()

	if err := cli.SeedCategories(ctx, logger, cfg, svc); err != nil {
		return err
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AppName:            cfg.AppName,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, svc, res.Store, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting saldo server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
