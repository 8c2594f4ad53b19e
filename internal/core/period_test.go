package core

import (
	"errors"
	"testing"
	"time"
)

func TestMonthPeriod(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{
			name:      "january",
			year:      2026,
			month:     1,
			wantStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls into next year",
			year:      2025,
			month:     12,
			wantStart: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "leap february",
			year:      2028,
			month:     2,
			wantStart: time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "month zero", year: 2026, month: 0, wantErr: ErrInvalidMonth},
		{name: "month thirteen", year: 2026, month: 13, wantErr: ErrInvalidMonth},
		{name: "year below floor", year: 1999, month: 5, wantErr: ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := MonthPeriod(tt.year, tt.month)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !IsValidation(err) {
					t.Fatalf("MonthPeriod(%d, %d) error = %v, want %v", tt.year, tt.month, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !p.Start.Equal(tt.wantStart) || !p.End.Equal(tt.wantEnd) {
				t.Errorf("MonthPeriod(%d, %d) = [%v, %v), want [%v, %v)", tt.year, tt.month, p.Start, p.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	p, err := MonthPeriod(2026, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Contains(p.Start) {
		t.Error("start must be inside the period")
	}
	if p.Contains(p.End) {
		t.Error("end must belong to the next period")
	}
	if !p.Next().Contains(p.End) {
		t.Error("next period must contain the previous end")
	}
	if !p.Contains(p.End.Add(-time.Microsecond)) {
		t.Error("last instant before end must be inside")
	}
}

func TestPeriodNextAcrossYear(t *testing.T) {
	p, _ := MonthPeriod(2025, 12)
	next := p.Next()
	if next.Year != 2026 || next.Month != 1 {
		t.Fatalf("expected 2026-01, got %s", next)
	}

	y, _ := YearPeriod(2026)
	if y.String() != "2026" || !y.End.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected year period %s ending %v", y, y.End)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": KindIncome, "EXPENSE": KindExpense, " expense ": KindExpense} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
