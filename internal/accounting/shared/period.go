package shared

import (
	"fmt"
	"time"
)

// Period identifies one monthly accounting cycle, encoded as YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM period code.
func ParsePeriod(code string) (Period, error) {
	t, err := time.Parse("2006-01", code)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, code)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing the given date.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String renders the YYYY-MM code.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last calendar day of the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// MonthsSince returns the number of monthly cycles elapsed from the cycle
// containing start up to and including this period. The cycle containing
// start counts as 1; a start after this period yields zero or negative.
func (p Period) MonthsSince(start time.Time) int {
	return (p.Year-start.Year())*12 + int(p.Month) - int(start.Month()) + 1
}
