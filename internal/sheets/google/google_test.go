package google

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/report"
)

func januaryReport(t *testing.T) report.MonthlyReport {
	t.Helper()
	p, err := core.MonthPeriod(2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	return report.MonthlyReport{
		AccountID: 3,
		Period:    p,
		KPIs: report.KPIs{
			Income:     decimal.NewFromInt(1000),
			Expense:    decimal.NewFromInt(250),
			Net:        decimal.NewFromInt(750),
			BalanceEnd: decimal.NewFromInt(750),
		},
		ByCategory: []report.CategorySpend{
			{Category: "Miete", Spent: decimal.NewFromInt(200)},
			{Category: "Shopping", Spent: decimal.NewFromInt(50)},
		},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "  "})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestWriteMonthlyReport_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.WriteMonthlyReport(context.Background(), januaryReport(t)); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestReportRow(t *testing.T) {
	row := reportRow(januaryReport(t))
	if len(row) != len(header) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(header))
	}
	if row[0] != int64(3) || row[1] != "'2026-01" {
		t.Errorf("unexpected key cells: %v %v", row[0], row[1])
	}
	if row[2] != 1000.0 || row[3] != 250.0 || row[4] != 750.0 || row[5] != 750.0 {
		t.Errorf("unexpected KPI cells: %v", row[2:6])
	}
	if row[6] != "Miete: 200.00; Shopping: 50.00" {
		t.Errorf("unexpected category cell: %q", row[6])
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		header,
		{"1", "2026-01"},
		{"3", "2025-12"},
		{},
		{"3", "2026-01", "1000"},
	}

	tests := []struct {
		name    string
		account int64
		month   string
		want    int
	}{
		{"existing row", 3, "2026-01", 5},
		{"other account", 1, "2026-01", 2},
		{"new pair appends", 3, "2026-02", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findRow(values, tt.account, tt.month); got != tt.want {
				t.Errorf("findRow = %d, want %d", got, tt.want)
			}
		})
	}

	if got := findRow(nil, 1, "2026-01"); got != 1 {
		t.Errorf("empty sheet: got %d, want 1", got)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Report", 2026, "2026 Report"},
		{"  Report ", 2025, "2025 Report"},
		{"2024 Report", 2026, "2024 Report"},
		{"", 2026, ""},
		{"12345", 2026, "2026 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
