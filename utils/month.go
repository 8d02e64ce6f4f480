package utils

import (
	"fmt"
	"time"
)

// Accounting months are passed around as "YYYY-MM" strings end to end
// (API, columns, unique keys). These helpers are the only place the
// format is parsed or produced.

const monthLayout = "2006-01"

// ParseMonth returns the first day of the month in UTC.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", month)
	}
	return t, nil
}

func FormatMonth(t time.Time) string {
	return t.Format(monthLayout)
}

func IsValidMonth(month string) bool {
	_, err := ParseMonth(month)
	return err == nil
}

// AddMonths does calendar-month arithmetic with year rollover.
func AddMonths(month string, n int) (string, error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	return FormatMonth(t.AddDate(0, n, 0)), nil
}

func CurrentMonth() string {
	return FormatMonth(time.Now().UTC())
}
