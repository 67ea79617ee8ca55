package utils

import "time"

// DateLayout is the wire format for calendar dates (due dates, session
// dates) in request payloads.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD payload value as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// StartOfDay truncates t to UTC midnight. Calendar comparisons (due
// today, overdue) always go through this so stored timestamps and query
// bounds line up.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
