// Package schedule implements the weekly schedule composition engine: it
// normalizes heterogeneous timetable records into one Occurrence shape,
// filters them for a viewing scope, resolves cancellation/holiday
// suppression and time conflicts, and projects the result onto a concrete
// Monday-anchored week.
//
// The engine is a pure, synchronous computation over in-memory lists. It
// performs no I/O and reads no wall clock; callers inject the target week
// and fetch records through the Repository ports.
package schedule

import (
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// KIND
// ═══════════════════════════════════════════════════════════════════════════

// Kind classifies an Occurrence. Kind is assigned once during normalization
// and is immutable afterwards; all downstream logic branches only on it.
type Kind string

const (
	KindRegular Kind = "regular"
	KindSpecial Kind = "special"
	KindCancel  Kind = "cancel"
	KindMakeup  Kind = "makeup"
	KindHoliday Kind = "holiday"
	KindEvent   Kind = "event"
)

// Priority returns the display precedence of the kind. Lower wins the slot:
// Holiday(0) < Cancel(1) < Makeup(2) < Special(3) < Event(4) < Regular(5).
func (k Kind) Priority() int {
	switch k {
	case KindHoliday:
		return 0
	case KindCancel:
		return 1
	case KindMakeup:
		return 2
	case KindSpecial:
		return 3
	case KindEvent:
		return 4
	case KindRegular:
		return 5
	default:
		return 6
	}
}

// IsValid checks if the kind is one of the known values.
func (k Kind) IsValid() bool {
	switch k {
	case KindRegular, KindSpecial, KindCancel, KindMakeup, KindHoliday, KindEvent:
		return true
	}
	return false
}

// Recurs reports whether the kind repeats weekly. Regular classes and
// special lectures recur; cancels, makeups, holidays, and punctual events
// are anchored to a single date.
func (k Kind) Recurs() bool {
	return k == KindRegular || k == KindSpecial
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// ═══════════════════════════════════════════════════════════════════════════
// RECURRENCE
// ═══════════════════════════════════════════════════════════════════════════

// RecurrenceType discriminates weekly from single-date recurrence.
type RecurrenceType int

const (
	// Weekly occurrences repeat on a fixed weekday (regular, special).
	Weekly RecurrenceType = iota
	// SingleDate occurrences happen on one concrete date (cancel, makeup,
	// holiday, event).
	SingleDate
)

// Recurrence describes when an occurrence happens.
type Recurrence struct {
	Type RecurrenceType `json:"type"`

	// Weekday is valid when Type == Weekly (Sunday=0 convention).
	Weekday shared.Weekday `json:"weekday,omitempty"`

	// Date is valid when Type == SingleDate. Always a Seoul-local midnight.
	Date time.Time `json:"date,omitempty"`
}

// WeeklyOn builds a weekly recurrence.
func WeeklyOn(w shared.Weekday) Recurrence {
	return Recurrence{Type: Weekly, Weekday: w}
}

// On builds a single-date recurrence.
func On(date time.Time) Recurrence {
	return Recurrence{Type: SingleDate, Date: date}
}

// ═══════════════════════════════════════════════════════════════════════════
// SCOPE
// ═══════════════════════════════════════════════════════════════════════════

// Scope is the academic scope an occurrence is addressed to. Any field may
// be unset; the scope filter decides what unset means per kind.
type Scope struct {
	Grade          shared.Grade      `json:"grade,omitempty"`
	Level          shared.Level      `json:"level,omitempty"`
	GroupLevel     shared.GroupLevel `json:"group_level,omitempty"`
	ForeignerTrack *bool             `json:"foreigner_track,omitempty"`
	Semester       shared.Semester   `json:"semester,omitempty"`
}

// ═══════════════════════════════════════════════════════════════════════════
// OCCURRENCE
// ═══════════════════════════════════════════════════════════════════════════

// Occurrence is the canonical schedule entry every raw record normalizes
// into. Occurrences are read-only value objects for the duration of one
// composition pass; the resolver attaches its suppression flags to the
// projected Entry, never to the Occurrence itself.
type Occurrence struct {
	// ID is unique within the occurrence's source kind. Synthesized
	// deterministically by the normalizer when the source supplies none.
	ID string `json:"id"`

	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"` // empty for holidays
	Scope   Scope  `json:"scope"`

	Recurrence Recurrence         `json:"recurrence"`
	Periods    shared.PeriodRange `json:"periods"`

	// LinkedRegularID references the regular occurrence a cancel/makeup
	// relates to. May be empty: a makeup can exist on its own.
	LinkedRegularID string `json:"linked_regular_id,omitempty"`
}

// Priority is the kind-derived display precedence.
func (o Occurrence) Priority() int {
	return o.Kind.Priority()
}

// IsWeekly reports whether the occurrence recurs weekly.
func (o Occurrence) IsWeekly() bool {
	return o.Recurrence.Type == Weekly
}

// Entry is one projected occurrence on a concrete date, as produced by the
// composer. The flags are derived per composition pass and belong to the
// projection, not to the underlying occurrence.
type Entry struct {
	Occurrence Occurrence `json:"occurrence"`
	Date       time.Time  `json:"date"`

	// SuppressedByHoliday marks entries that nominally fall on a holiday.
	// Advisory only: the entry stays in the output.
	SuppressedByHoliday bool `json:"suppressed_by_holiday,omitempty"`

	// SuppressedByCancel marks a regular class voided by a cancellation on
	// this date.
	SuppressedByCancel bool `json:"suppressed_by_cancel,omitempty"`

	// Conflict marks a pair of non-suppressed entries of different subjects
	// whose period ranges overlap. Never auto-resolved; surfaced to the
	// operator through a ConflictWarning.
	Conflict bool `json:"conflict,omitempty"`
}

// Suppressed reports whether the entry should be skipped when acting on the
// schedule (sending reminders, booking rooms). Holiday suppression is
// advisory and intentionally excluded.
func (e Entry) Suppressed() bool {
	return e.SuppressedByCancel
}
