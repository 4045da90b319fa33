package utilities

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// CivilDate drops the clock part of t, keeping t's own calendar day, and
// anchors the result at UTC midnight so day arithmetic is DST-free.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD. An empty string yields ok=false and no error.
func ParseDate(s string) (day time.Time, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	day, err = time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return day, true, nil
}

// ClockIn returns a clock reporting the current time in loc.
func ClockIn(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
