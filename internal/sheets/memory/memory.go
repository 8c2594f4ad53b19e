package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"saldo/internal/report"
)

// Sink keeps the latest report per account and month in memory. It stands
// in for the spreadsheet when no Google credentials are configured.
type Sink struct {
	mu      sync.Mutex
	reports map[string]report.MonthlyReport
	writes  int
}

func New() *Sink {
	return &Sink{reports: make(map[string]report.MonthlyReport)}
}

func key(accountID int64, year, month int) string {
	return fmt.Sprintf("%d|%04d-%02d", accountID, year, month)
}

// WriteMonthlyReport replaces any earlier report of the same account and month.
func (s *Sink) WriteMonthlyReport(_ context.Context, rep report.MonthlyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[key(rep.AccountID, rep.Period.Year, rep.Period.Month)] = rep
	s.writes++
	return nil
}

// Get returns the stored report of the account and month.
func (s *Sink) Get(accountID int64, year, month int) (report.MonthlyReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[key(accountID, year, month)]
	return rep, ok
}

// Reports returns every stored report ordered by account, then month.
func (s *Sink) Reports() []report.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.MonthlyReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].Period.Start.Before(out[j].Period.Start)
	})
	return out
}

// Writes counts every write, including overwrites.
func (s *Sink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
