package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/cache"
	"saldo/internal/report"
	ports "saldo/internal/sheets"
)

// Report sheet columns, A through G.
var header = []any{"Account", "Month", "Income", "Expense", "Net", "Balance End", "By Category"}

const rowCacheTTL = 10 * time.Minute

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string // base name, prefixed with the report year
	CredentialsJSON string
	CredentialsFile string
}

// Client writes monthly reports to one row per account and month of a
// "<year> <SheetName>" sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	// sheet!account|month -> 1-based row number
	rows *cache.LRUCache[int]
}

var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Report"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
		rows:          cache.NewLRUCache[int](1024, rowCacheTTL),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither JSON nor file is configured.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credsFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", credsFile)
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// WriteMonthlyReport overwrites the report row of the account and month,
// appending a new row the first time the pair is seen.
func (c *Client) WriteMonthlyReport(ctx context.Context, rep report.MonthlyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, rep.Period.Year)
	row, err := c.locateRow(ctx, sheet, rep)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:G%d", sheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{reportRow(rep)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.rows.Delete(rowKey(sheet, rep))
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Exported monthly report",
		"account_id", rep.AccountID,
		"period", rep.Period.String(),
		"range", rng)
	return nil
}

func (c *Client) locateRow(ctx context.Context, sheet string, rep report.MonthlyReport) (int, error) {
	key := rowKey(sheet, rep)
	if row, ok := c.rows.Get(key); ok {
		return row, nil
	}

	rng := fmt.Sprintf("%s!A:B", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	if len(resp.Values) == 0 {
		hdr := &gsheet.ValueRange{Values: [][]any{header}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1:G1", hdr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("write header: %w", err)
		}
		resp.Values = [][]any{header}
	}

	row := findRow(resp.Values, rep.AccountID, rep.Period.String())
	c.rows.Set(key, row)
	return row, nil
}

func rowKey(sheet string, rep report.MonthlyReport) string {
	return fmt.Sprintf("%s!%d|%s", sheet, rep.AccountID, rep.Period.String())
}

// findRow returns the 1-based row holding accountID and month, or the first
// row past the end of values.
func findRow(values [][]any, accountID int64, month string) int {
	want := strconv.FormatInt(accountID, 10)
	for i, row := range values {
		if len(row) < 2 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want && strings.TrimSpace(fmt.Sprint(row[1])) == month {
			return i + 1
		}
	}
	return len(values) + 1
}

func reportRow(rep report.MonthlyReport) []any {
	parts := make([]string, 0, len(rep.ByCategory))
	for _, c := range rep.ByCategory {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Category, c.Spent.StringFixed(2)))
	}
	return []any{
		rep.AccountID,
		// Leading apostrophe keeps USER_ENTERED from turning the month into a date.
		"'" + rep.Period.String(),
		rep.KPIs.Income.InexactFloat64(),
		rep.KPIs.Expense.InexactFloat64(),
		rep.KPIs.Net.InexactFloat64(),
		rep.KPIs.BalanceEnd.InexactFloat64(),
		strings.Join(parts, "; "),
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
