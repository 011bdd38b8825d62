package schedule

import (
	"sort"
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// WEEKLY COMPOSER
// ═══════════════════════════════════════════════════════════════════════════

// Result is one composed week: every projected entry for the seven days
// starting at WeekStart, sorted by (date, kind priority, start period), plus
// all warnings collected along the way.
type Result struct {
	WeekStart time.Time `json:"week_start"`
	Entries   []Entry   `json:"entries"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// Visible returns the entries that should be acted on: everything not
// suppressed by a cancellation. Holiday suppression is advisory and does
// not filter.
func (r Result) Visible() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if !e.SuppressedByCancel {
			out = append(out, e)
		}
	}
	return out
}

// OnDate returns the entries for one concrete date, in output order.
func (r Result) OnDate(date time.Time) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if timeutil.SameDate(e.Date, date) {
			out = append(out, e)
		}
	}
	return out
}

// WeekStartOf rounds an anchor date down to the Monday of its week. Sunday
// belongs to the week that started six days earlier.
func WeekStartOf(anchor time.Time) time.Time {
	return timeutil.WeekStart(anchor)
}

// ComposeWeek projects the given occurrences onto the week starting at the
// Monday of weekStart and resolves suppression and conflicts per date.
// Weekly occurrences land on weekStart plus their Monday offset; single-date
// occurrences are included when their date falls inside the week. The
// output is fully deterministic: same occurrences and week in, identical
// entries, flags, and warnings out.
func ComposeWeek(occurrences []Occurrence, weekStart time.Time) Result {
	weekStart = WeekStartOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	entries := make([]Entry, 0, len(occurrences))
	for _, occ := range occurrences {
		switch occ.Recurrence.Type {
		case Weekly:
			date := weekStart.AddDate(0, 0, occ.Recurrence.Weekday.MondayOffset())
			entries = append(entries, Entry{Occurrence: occ, Date: date})
		case SingleDate:
			date := timeutil.StartOfDay(occ.Recurrence.Date)
			if !date.Before(weekStart) && date.Before(weekEnd) {
				entries = append(entries, Entry{Occurrence: occ, Date: date})
			}
		}
	}

	entries, warnings := Resolve(entries)
	sortEntries(entries)

	return Result{
		WeekStart: weekStart,
		Entries:   entries,
		Warnings:  warnings,
	}
}

// Compose runs the full pipeline: normalize the raw records, filter them
// for the view scope, and compose the target week. All warnings from every
// stage are merged into the result, normalization warnings first.
func Compose(records []RawRecord, view ViewScope, weekStart time.Time) Result {
	occurrences, warnings := Normalize(records)

	filter := NewScopeFilter(view, occurrences)
	visible := filter.Filter(occurrences)

	result := ComposeWeek(visible, weekStart)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// sortEntries orders the agenda chronologically, then by kind priority so
// holidays/cancellations/makeups surface above regular classes on the same
// date, then by start period. The occurrence id is the final tie-breaker to
// keep repeated runs byte-for-byte identical.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if pa, pb := a.Occurrence.Priority(), b.Occurrence.Priority(); pa != pb {
			return pa < pb
		}
		if a.Occurrence.Periods.Start != b.Occurrence.Periods.Start {
			return a.Occurrence.Periods.Start < b.Occurrence.Periods.Start
		}
		return a.Occurrence.ID < b.Occurrence.ID
	})
}
