package core

import (
	"fmt"
	"time"
)

// Accepted year range for reporting periods.
const (
	MinYear = 2000
	MaxYear = 9999
)

// Period is a half-open time range [Start, End). Month is 0 for a whole year.
type Period struct {
	Year  int
	Month int
	Start time.Time
	End   time.Time
}

// MonthPeriod returns the calendar month of year. The end is derived by adding
// one calendar month to the start, so December rolls into the next January.
func MonthPeriod(year, month int) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	if month < 1 || month > 12 {
		return Period{}, NewValidationError("month", fmt.Errorf("%w: %d", ErrInvalidMonth, month))
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Year:  year,
		Month: month,
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// YearPeriod returns the whole calendar year.
func YearPeriod(year int) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Year:  year,
		Start: start,
		End:   start.AddDate(1, 0, 0),
	}, nil
}

func validateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return NewValidationError("year", fmt.Errorf("%w: %d", ErrInvalidYear, year))
	}
	return nil
}

// Contains reports whether t falls inside the period. End is exclusive.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start) && t.Before(p.End)
}

// Next returns the period of the same length immediately following p.
func (p Period) Next() Period {
	if p.Month == 0 {
		return Period{Year: p.Year + 1, Start: p.End, End: p.End.AddDate(1, 0, 0)}
	}
	return Period{
		Year:  p.End.Year(),
		Month: int(p.End.Month()),
		Start: p.End,
		End:   p.End.AddDate(0, 1, 0),
	}
}

func (p Period) String() string {
	if p.Month == 0 {
		return fmt.Sprintf("%04d", p.Year)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
