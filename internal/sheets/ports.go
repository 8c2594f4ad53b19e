package sheets

import (
	"context"

	"saldo/internal/report"
)

// Ports for outbound adapters.
type (
	// ReportWriter stores the latest monthly report of an account. Writing
	// the same account and month again replaces the earlier report.
	ReportWriter interface {
		WriteMonthlyReport(ctx context.Context, rep report.MonthlyReport) error
	}
)
