// Package period parses the date bounds of report and audit queries.
package period

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseStart accepts RFC 3339 or a bare date (midnight UTC). Empty input yields nil.
func ParseStart(value string) (*time.Time, error) {
	return parse(value, false)
}

// ParseEnd is ParseStart, except a bare date covers the whole day.
func ParseEnd(value string) (*time.Time, error) {
	return parse(value, true)
}

func parse(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC 3339", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
