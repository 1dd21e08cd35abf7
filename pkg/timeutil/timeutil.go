// Package timeutil provides UTC time-window helpers used by the stagnation
// and rate-limit rules. All derived facts in the core are computed against
// UTC timestamps.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// DaysAgo returns the UTC instant n days before now.
func DaysAgo(n int) time.Time {
	return Now().AddDate(0, 0, -n)
}

// MinutesAgo returns the UTC instant n minutes before now.
func MinutesAgo(n int) time.Time {
	return Now().Add(-time.Duration(n) * time.Minute)
}

// HoursAgo returns the UTC instant n hours before now.
func HoursAgo(n int) time.Time {
	return Now().Add(-time.Duration(n) * time.Hour)
}

// WithinLast reports whether t falls inside the trailing window ending now.
func WithinLast(t time.Time, window time.Duration) bool {
	return t.After(Now().Add(-window))
}

// StartOfDay returns the start of t's day in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of t's day in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// SameDay reports whether two instants fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}
