package streaks

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout      = "2006-01-02"
	DefaultTimezone = "America/New_York"
)

// Calendar buckets instants into civil dates of a single reference timezone.
// Date keys are YYYY-MM-DD strings and month keys are the first day of the
// month in the same layout, so both sort lexicographically.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(name string) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &Calendar{loc: loc}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DateKey returns the calendar date of t in the reference timezone.
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// MonthKey returns the first-of-month key for t in the reference timezone.
func (c *Calendar) MonthKey(t time.Time) string {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// MonthBounds returns the UTC instants of local midnight on the first day of
// the month and of the following month.
func (c *Calendar) MonthBounds(monthKey string) (time.Time, time.Time, error) {
	first, err := time.Parse(DateLayout, monthKey)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, monthKey)
	}
	start := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, c.loc)
	end := time.Date(first.Year(), first.Month()+1, 1, 0, 0, 0, 0, c.loc)
	return start.UTC(), end.UTC(), nil
}

// ShiftDate moves a date key by days using civil-date arithmetic, which is
// immune to DST transitions. An unparsable key yields "".
func ShiftDate(key string, days int) string {
	d, err := time.Parse(DateLayout, key)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, days).Format(DateLayout)
}

func PreviousMonthKey(monthKey string) (string, error) {
	d, err := time.Parse(DateLayout, monthKey)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, monthKey)
	}
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format(DateLayout), nil
}

// ParseMonth accepts "YYYY-MM" or "YYYY-MM-DD" and returns the month key.
func ParseMonth(s string) (string, error) {
	for _, layout := range []string{"2006-01", DateLayout} {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}
