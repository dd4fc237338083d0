// utils/dates.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the shapes the admin UI sends: date inputs,
// datetime-local inputs and full timestamps.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses a schedule date in the server's local time zone.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// FormatLongDate renders a schedule date as "June 15, 2025", or returns the
// input unchanged when it does not parse.
func FormatLongDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return t.Format("January 2, 2006")
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// IsDue reports whether a schedule date has been reached at now.
func IsDue(value string, now time.Time) bool {
	t, err := ParseDate(value)
	if err != nil {
		return false
	}
	return !t.After(now)
}
