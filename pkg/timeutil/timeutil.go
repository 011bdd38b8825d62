// Package timeutil provides timezone utilities for the Seoul timezone (UTC+9).
// All timetable dates in the portal are school-local dates, so every helper
// here normalizes to KST before doing calendar math.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// SeoulTZ is the Seoul timezone (UTC+9, no DST).
// South Korea has not observed DST since 1988, so this is constant year-round.
var SeoulTZ = time.FixedZone("Asia/Seoul", 9*60*60)

// Now returns the current time in Seoul timezone.
func Now() time.Time {
	return time.Now().In(SeoulTZ)
}

// ToSeoul converts a time to Seoul timezone.
func ToSeoul(t time.Time) time.Time {
	return t.In(SeoulTZ)
}

// Date creates a time in Seoul timezone with the given date at midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, SeoulTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Seoul timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToSeoul(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SeoulTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Seoul timezone.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// WeekStart returns the Monday 00:00:00 of the week the given time falls in.
// Sunday counts as the last day of the previous week, i.e. an anchor on
// Sunday rolls back six days.
func WeekStart(t time.Time) time.Time {
	local := StartOfDay(t)
	// time.Weekday uses Sunday=0, so (weekday+6)%7 is the distance back to Monday.
	back := (int(local.Weekday()) + 6) % 7
	return local.AddDate(0, 0, -back)
}

// WeekEnd returns the Sunday 23:59:59 of the week the given time falls in.
func WeekEnd(t time.Time) time.Time {
	return EndOfDay(WeekStart(t).AddDate(0, 0, 6))
}

// NextWeekStart returns the Monday of the week after the one containing t.
func NextWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// SameDate reports whether two times fall on the same calendar date in Seoul.
func SameDate(a, b time.Time) bool {
	a, b = ToSeoul(a), ToSeoul(b)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// FormatDate formats a time as "2006-01-02" in Seoul timezone.
func FormatDate(t time.Time) string {
	return ToSeoul(t).Format("2006-01-02")
}

// ParseDate parses a "2006-01-02" string as a Seoul-local date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, SeoulTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDateTime formats a time as "2006-01-02 15:04" in Seoul timezone.
func FormatDateTime(t time.Time) string {
	return ToSeoul(t).Format("2006-01-02 15:04")
}

// DaysBetween returns the number of whole calendar days from a to b in Seoul
// timezone. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a, b = StartOfDay(a), StartOfDay(b)
	return int(b.Sub(a).Hours() / 24)
}
