// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Grade Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Grade represents a school year (1..3). GradeNone means the record carries
// no grade, which grade-based scoping treats as never visible (fail closed).
type Grade int

const (
	GradeNone Grade = 0
	MinGrade  Grade = 1
	MaxGrade  Grade = 3
)

// IsSet reports whether a grade is recorded at all.
func (g Grade) IsSet() bool {
	return g != GradeNone
}

// IsValid checks if the grade is within the valid range.
func (g Grade) IsValid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}

// String returns the string representation.
func (g Grade) String() string {
	if !g.IsSet() {
		return "-"
	}
	return fmt.Sprintf("%d", int(g))
}

// NewGrade creates a new Grade with validation. Zero is accepted and maps to
// GradeNone.
func NewGrade(value int) (Grade, error) {
	if value == 0 {
		return GradeNone, nil
	}
	g := Grade(value)
	if !g.IsValid() {
		return GradeNone, ErrInvalidGrade
	}
	return g, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Level / GroupLevel Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Level represents a language proficiency label such as "N2" or "TOPIK4".
// Labels in the source data are free-form and sometimes compound
// ("N2-N3"), so matching is substring containment, not equality.
type Level string

// IsSet reports whether a level is recorded.
func (l Level) IsSet() bool {
	return strings.TrimSpace(string(l)) != ""
}

// String returns the string representation.
func (l Level) String() string {
	return string(l)
}

// Matches reports whether two level labels refer to the same audience.
// Case-insensitive; either label containing the other counts as a match,
// so "N2" matches the compound label "N2-N3".
func (l Level) Matches(other Level) bool {
	a := strings.ToLower(strings.TrimSpace(string(l)))
	b := strings.ToLower(strings.TrimSpace(string(other)))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// NewLevel creates a trimmed Level.
func NewLevel(value string) Level {
	return Level(strings.TrimSpace(value))
}

// GroupLevel represents a class-group label within a level (e.g. "A", "B2").
type GroupLevel string

// IsSet reports whether a group level is recorded.
func (g GroupLevel) IsSet() bool {
	return strings.TrimSpace(string(g)) != ""
}

// String returns the string representation.
func (g GroupLevel) String() string {
	return string(g)
}

// Matches compares group labels case-insensitively.
func (g GroupLevel) Matches(other GroupLevel) bool {
	a := strings.ToLower(strings.TrimSpace(string(g)))
	b := strings.ToLower(strings.TrimSpace(string(other)))
	if a == "" || b == "" {
		return false
	}
	return a == b
}

// ═══════════════════════════════════════════════════════════════════════════
// Semester Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Semester represents an academic term ("2024-spring", "2024-fall").
type Semester string

var semesterRegex = regexp.MustCompile(`^\d{4}-(spring|summer|fall|winter)$`)

// IsValid checks if the semester format is valid.
func (s Semester) IsValid() bool {
	return semesterRegex.MatchString(string(s))
}

// String returns the string representation.
func (s Semester) String() string {
	return string(s)
}

// Year extracts the year from the semester.
func (s Semester) Year() int {
	if len(s) < 4 {
		return 0
	}
	year := 0
	fmt.Sscanf(string(s[:4]), "%d", &year)
	return year
}

// Season extracts the season from the semester.
func (s Semester) Season() string {
	parts := strings.Split(string(s), "-")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// NewSemester creates a new Semester with validation.
func NewSemester(value string) (Semester, error) {
	s := Semester(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", ErrInvalidSemester
	}
	return s, nil
}

// CurrentSemester returns the semester for the given time.
func CurrentSemester(t time.Time) Semester {
	year := t.Year()
	var season string
	switch m := t.Month(); {
	case m >= 3 && m <= 5:
		season = "spring"
	case m >= 6 && m <= 8:
		season = "summer"
	case m >= 9 && m <= 11:
		season = "fall"
	default:
		season = "winter"
	}
	return Semester(fmt.Sprintf("%d-%s", year, season))
}

// ═══════════════════════════════════════════════════════════════════════════
// Period Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Period represents one discrete 50-minute class slot, numbered 1..12.
// Periods map to wall-clock times by a static table: period 1 starts at
// 09:00 and slots follow back to back with no gaps.
type Period int

const (
	MinPeriod Period = 1
	MaxPeriod Period = 12

	periodMinutes = 50
)

// firstPeriodStart is the wall-clock start of period 1.
var firstPeriodStart = struct{ hour, minute int }{9, 0}

// IsValid checks if the period is within the valid range.
func (p Period) IsValid() bool {
	return p >= MinPeriod && p <= MaxPeriod
}

// Int returns the underlying int value.
func (p Period) Int() int {
	return int(p)
}

// StartClock returns the wall-clock start time of the period as "15:04".
func (p Period) StartClock() string {
	minutes := firstPeriodStart.hour*60 + firstPeriodStart.minute + (int(p)-1)*periodMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EndClock returns the wall-clock end time of the period as "15:04".
func (p Period) EndClock() string {
	minutes := firstPeriodStart.hour*60 + firstPeriodStart.minute + int(p)*periodMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// PeriodRange represents an inclusive span of periods.
type PeriodRange struct {
	Start Period `json:"start"`
	End   Period `json:"end"`
}

// IsValid checks the range invariant: both ends in 1..12 and Start <= End.
func (r PeriodRange) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start <= r.End
}

// Overlaps reports whether two ranges intersect.
func (r PeriodRange) Overlaps(other PeriodRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Contains reports whether the range includes the given period.
func (r PeriodRange) Contains(p Period) bool {
	return p >= r.Start && p <= r.End
}

// Count returns the number of periods in the range.
func (r PeriodRange) Count() int {
	return int(r.End-r.Start) + 1
}

// String renders the range as "1-2" or "5" for single periods.
func (r PeriodRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", int(r.Start))
	}
	return fmt.Sprintf("%d-%d", int(r.Start), int(r.End))
}

// ClockSpan renders the range's wall-clock window as "09:00-10:40".
func (r PeriodRange) ClockSpan() string {
	return r.Start.StartClock() + "-" + r.End.EndClock()
}

// NewPeriodRange creates a new PeriodRange with validation.
func NewPeriodRange(start, end int) (PeriodRange, error) {
	r := PeriodRange{Start: Period(start), End: Period(end)}
	if !r.Start.IsValid() || !r.End.IsValid() {
		return PeriodRange{}, ErrInvalidPeriod
	}
	if r.Start > r.End {
		return PeriodRange{}, ErrInvalidPeriodSpan
	}
	return r, nil
}

// FullDayRange returns a range covering every period of the day. Used for
// holidays, which block the whole teaching day.
func FullDayRange() PeriodRange {
	return PeriodRange{Start: MinPeriod, End: MaxPeriod}
}

// ═══════════════════════════════════════════════════════════════════════════
// Weekday Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Weekday represents a day of the week in the portal's wire convention:
// Sunday=0 through Saturday=6, matching time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// IsValid checks if the weekday is within range.
func (w Weekday) IsValid() bool {
	return w >= Sunday && w <= Saturday
}

// Int returns the underlying int value.
func (w Weekday) Int() int {
	return int(w)
}

// MondayOffset returns the day offset from Monday: Monday=0, Tuesday=1, ...,
// Sunday=6. Used when projecting weekly occurrences onto a Monday-anchored
// week.
func (w Weekday) MondayOffset() int {
	return (int(w) + 6) % 7
}

// Time returns the time.Weekday equivalent.
func (w Weekday) Time() time.Weekday {
	return time.Weekday(w)
}

// String returns the English weekday name.
func (w Weekday) String() string {
	if !w.IsValid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return w.Time().String()
}

// NewWeekday creates a new Weekday with validation.
func NewWeekday(value int) (Weekday, error) {
	w := Weekday(value)
	if !w.IsValid() {
		return 0, ErrInvalidWeekday
	}
	return w, nil
}

// WeekdayOf returns the Weekday of a concrete date.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()))
}
