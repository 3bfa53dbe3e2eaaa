package date

import (
	"time"
)

// ISODay is the wire format for calendar dates, time-of-day is never transported
const ISODay = "2006-01-02"

// DaysPerWeek is the number of day buckets in a week view
const DaysPerWeek = 7

// StartOfDay truncates a time to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday midnight of the week containing t.
// weekStart = t - ((weekday + 6) mod 7) days, applied identically on every
// caller so burnout lookups never shift by a day.
func WeekStart(t time.Time) time.Time {
	d := StartOfDay(t)
	diff := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -diff)
}

// WeekEnd returns the Sunday of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, DaysPerWeek-1)
}

// SameDay compares two times at calendar-day granularity, ignoring
// time-of-day and sub-day offset drift
func SameDay(a time.Time, b time.Time) bool {
	return a.Format(ISODay) == b.Format(ISODay)
}

// IsToday reports whether t falls on the same calendar day as now
func IsToday(t time.Time, now time.Time) bool {
	return SameDay(t, now)
}

// Format renders a time as a YYYY-MM-DD string
func Format(t time.Time) string {
	return t.Format(ISODay)
}

// Parse reads a YYYY-MM-DD string into a midnight UTC time
func Parse(value string) (time.Time, error) {
	return time.Parse(ISODay, value)
}
