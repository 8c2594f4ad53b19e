package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/report"
	"saldo/internal/sheets"
)

// Processed event ids are remembered this long to absorb redeliveries.
const (
	DefaultSeenSize = 10000
	DefaultSeenTTL  = time.Hour
)

// ReportWorker keeps exported monthly reports in step with the ledger.
type ReportWorker struct {
	store  ledger.Reader
	engine *report.Engine
	writer sheets.ReportWriter
	seen   *cache.LRUCache[struct{}]
	now    func() time.Time
}

// NewReportWorker creates a worker; a nil seen cache gets the default size and TTL.
func NewReportWorker(store ledger.Reader, writer sheets.ReportWriter, seen *cache.LRUCache[struct{}]) *ReportWorker {
	if seen == nil {
		seen = cache.NewLRUCache[struct{}](DefaultSeenSize, DefaultSeenTTL)
	}
	return &ReportWorker{
		store:  store,
		engine: report.NewEngine(store),
		writer: writer,
		seen:   seen,
		now:    time.Now,
	}
}

// Seen exposes the dedupe cache so it can be registered for cleanup.
func (w *ReportWorker) Seen() *cache.LRUCache[struct{}] {
	return w.seen
}

// HandleEvent recomputes and exports the report of the month the event
// touched and of every later month up to the current one, since a change
// moves the closing balance of all of them. Events whose month cannot be
// reported on are dropped.
func (w *ReportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if w.seen.Contains(ev.ID) {
		slog.DebugContext(ctx, "Skipping already processed event", "event_id", ev.ID)
		return nil
	}

	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", ev.ID,
		"type", ev.Type,
		"account_id", ev.AccountID,
		"transaction_id", ev.TransactionID)

	p, err := ev.Period()
	if err != nil {
		slog.WarnContext(ctx, "Dropping event outside reportable range",
			"event_id", ev.ID,
			"occurred_at", ev.OccurredAt,
			"error", err)
		w.seen.Set(ev.ID, struct{}{})
		return nil
	}

	if err := w.ExportFrom(ctx, ev.AccountID, p); err != nil {
		if core.IsValidation(err) {
			slog.WarnContext(ctx, "Dropping invalid event", "event_id", ev.ID, "error", err)
			w.seen.Set(ev.ID, struct{}{})
			return nil
		}
		return err
	}

	w.seen.Set(ev.ID, struct{}{})
	return nil
}

// ExportMonth recomputes one account's monthly report and writes it out.
func (w *ReportWorker) ExportMonth(ctx context.Context, accountID int64, p core.Period) error {
	rep, err := w.engine.MonthlyReport(ctx, accountID, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("monthly report %d/%s: %w", accountID, p, err)
	}
	if err := w.writer.WriteMonthlyReport(ctx, rep); err != nil {
		return fmt.Errorf("export report %d/%s: %w", accountID, p, err)
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogReportExported(ctx, accountID, p.String())
	return nil
}

// ExportFrom exports from and each following month through the current month.
// A month after the current one is exported alone.
func (w *ReportWorker) ExportFrom(ctx context.Context, accountID int64, from core.Period) error {
	now := w.now().UTC()
	last, err := core.MonthPeriod(now.Year(), int(now.Month()))
	if err != nil {
		return err
	}
	for p := from; ; p = p.Next() {
		if err := w.ExportMonth(ctx, accountID, p); err != nil {
			return err
		}
		if !p.Start.Before(last.Start) {
			return nil
		}
	}
}

// ExportAll writes the report of period for every account. It is run at
// startup to recover from events missed while the worker was down.
func (w *ReportWorker) ExportAll(ctx context.Context, p core.Period) error {
	accounts, err := w.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		slog.InfoContext(ctx, "No accounts found on startup")
		return nil
	}

	var errs []error
	exported := 0
	for _, a := range accounts {
		if err := w.ExportMonth(ctx, a.ID, p); err != nil {
			slog.ErrorContext(ctx, "Failed to export report during startup",
				"account_id", a.ID, "period", p.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"period", p.String(),
		"total", len(accounts),
		"exported", exported,
		"errors", len(errs))

	return errors.Join(errs...)
}

// ExportCurrentMonth runs ExportAll for the month containing now.
func (w *ReportWorker) ExportCurrentMonth(ctx context.Context) error {
	now := w.now().UTC()
	p, err := core.MonthPeriod(now.Year(), int(now.Month()))
	if err != nil {
		return err
	}
	return w.ExportAll(ctx, p)
}

// RunPeriodicExport calls ExportCurrentMonth every interval until ctx is done.
// Failures are logged and left to the next tick, so events dropped after a
// failed redelivery still reach the export.
func (w *ReportWorker) RunPeriodicExport(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.ExportCurrentMonth(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
