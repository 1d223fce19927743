package utils

import (
	"time"
)

// DayUTC truncates a time to midnight UTC. All record dates and day
// arithmetic in the engine operate on values produced by this.
func DayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return DayUTC(time.Now())
}

// ParseDate parses a "2006-01-02" date string as a UTC day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DayUTC(t), nil
}

// FormatDate formats a time as "2006-01-02" in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// IsBusinessDay reports whether the date falls Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PrevBusinessDay returns the closest business day strictly before the
// given date.
func PrevBusinessDay(from time.Time) time.Time {
	prev := DayUTC(from).AddDate(0, 0, -1)
	for !IsBusinessDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// NextBusinessDay returns the closest business day strictly after the
// given date.
func NextBusinessDay(from time.Time) time.Time {
	next := DayUTC(from).AddDate(0, 0, 1)
	for !IsBusinessDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// DaysBetween returns the number of calendar days from start to end
// inclusive, or 0 when start is after end.
func DaysBetween(start, end time.Time) int {
	s, e := DayUTC(start), DayUTC(end)
	if s.After(e) {
		return 0
	}
	return int(e.Sub(s)/(24*time.Hour)) + 1
}
