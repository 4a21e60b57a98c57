package pricing

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a UTC calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// RentalDays counts the calendar days of a rental, including both the start
// and the end date. A same-day rental is one day.
func RentalDays(start, end time.Time) (int, error) {
	s := civilDate(start)
	e := civilDate(end)
	if e.Before(s) {
		return 0, fmt.Errorf("end date must be >= start date")
	}
	// Both values are UTC midnights, so the difference is a whole number of days.
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// civilDate drops the clock and location of t, keeping its calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
