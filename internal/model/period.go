package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned for months outside 1-12 or non-positive years.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a calendar month.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q (want YYYY-MM)", ErrInvalidPeriod, s)
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// Validate checks the period is a real month.
func (p Period) Validate() error {
	if p.Year <= 0 || p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, p.Year, p.Month)
	}
	return nil
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the first day of the following month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls on a calendar day of the month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
