package schedule

import (
	"sort"
	"strings"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// CONFLICT & SUPPRESSION RESOLVER
// ═══════════════════════════════════════════════════════════════════════════

// Resolve applies the precedence rules to a set of projected entries:
//
//  1. A holiday flags every other entry on its date as suppressed-by-holiday.
//     Advisory only - nothing is removed from the output.
//  2. A cancellation suppresses the regular class it points at on that date.
//     A dangling or missing link falls back to matching by subject among the
//     date's regular classes; anything but exactly one resolved target is
//     reported as an unresolved link.
//  3. Makeups are additive and never suppressed by cancel logic.
//  4. Overlapping period ranges between two non-suppressed class sessions of
//     different subjects are flagged as conflicts for operator review, never
//     auto-resolved.
//
// The input order is preserved; only flags are set. Warnings come out in
// date order so repeated runs over the same input are identical.
func Resolve(entries []Entry) ([]Entry, []Warning) {
	resolved := make([]Entry, len(entries))
	copy(resolved, entries)

	byDate := make(map[string][]int)
	for i, e := range resolved {
		key := timeutil.FormatDate(e.Date)
		byDate[key] = append(byDate[key], i)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var warnings []Warning
	for _, date := range dates {
		idx := byDate[date]
		warnings = append(warnings, suppressByHoliday(resolved, idx)...)
		warnings = append(warnings, suppressByCancel(resolved, idx)...)
		warnings = append(warnings, flagConflicts(resolved, idx)...)
	}

	return resolved, warnings
}

// suppressByHoliday flags all non-holiday entries on a date that carries at
// least one holiday.
func suppressByHoliday(entries []Entry, idx []int) []Warning {
	holiday := false
	for _, i := range idx {
		if entries[i].Occurrence.Kind == KindHoliday {
			holiday = true
			break
		}
	}
	if !holiday {
		return nil
	}

	for _, i := range idx {
		if entries[i].Occurrence.Kind != KindHoliday {
			entries[i].SuppressedByHoliday = true
		}
	}
	return nil
}

// suppressByCancel resolves each cancellation on the date to its regular
// class and flags that class as suppressed.
func suppressByCancel(entries []Entry, idx []int) []Warning {
	var warnings []Warning

	for _, ci := range idx {
		cancel := entries[ci]
		if cancel.Occurrence.Kind != KindCancel {
			continue
		}

		// Direct link first.
		if link := cancel.Occurrence.LinkedRegularID; link != "" {
			if ti, ok := findRegularByID(entries, idx, link); ok {
				entries[ti].SuppressedByCancel = true
				continue
			}
			// Dangling link: fall through to the subject heuristic, but
			// always report the dead reference.
			warnings = append(warnings, unresolvedLinkWarning(
				cancel.Occurrence.ID, link, "linked regular not found on this date"))
		}

		candidates := findRegularsBySubject(entries, idx, cancel.Occurrence.Subject)
		switch len(candidates) {
		case 0:
			if cancel.Occurrence.LinkedRegularID == "" {
				warnings = append(warnings, unresolvedLinkWarning(
					cancel.Occurrence.ID, "", "no regular class matches this cancellation"))
			}
		case 1:
			entries[candidates[0]].SuppressedByCancel = true
			if cancel.Occurrence.LinkedRegularID == "" {
				// The heuristic is fragile with same-named subjects, so
				// even a unique match is surfaced for operator review.
				warnings = append(warnings, unresolvedLinkWarning(
					cancel.Occurrence.ID,
					entries[candidates[0]].Occurrence.ID,
					"regular class matched by subject heuristic"))
			}
		default:
			// Same-named subjects at different times: suppress the first in
			// input order, but surface the ambiguity instead of silently
			// guessing.
			entries[candidates[0]].SuppressedByCancel = true
			warnings = append(warnings, unresolvedLinkWarning(
				cancel.Occurrence.ID,
				entries[candidates[0]].Occurrence.ID,
				"multiple regular classes match; first one suppressed"))
		}
	}

	return warnings
}

func findRegularByID(entries []Entry, idx []int, id string) (int, bool) {
	for _, i := range idx {
		if entries[i].Occurrence.Kind == KindRegular && entries[i].Occurrence.ID == id {
			return i, true
		}
	}
	return 0, false
}

func findRegularsBySubject(entries []Entry, idx []int, subject string) []int {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return nil
	}
	var out []int
	for _, i := range idx {
		if entries[i].Occurrence.Kind != KindRegular {
			continue
		}
		if strings.ToLower(strings.TrimSpace(entries[i].Occurrence.Subject)) == subject {
			out = append(out, i)
		}
	}
	return out
}

// flagConflicts marks pairs of non-suppressed class sessions of different
// subjects whose period ranges intersect. Holidays and cancellations are
// not sessions and never participate.
func flagConflicts(entries []Entry, idx []int) []Warning {
	var warnings []Warning

	sessions := make([]int, 0, len(idx))
	for _, i := range idx {
		e := entries[i]
		if e.SuppressedByCancel {
			continue
		}
		switch e.Occurrence.Kind {
		case KindRegular, KindSpecial, KindMakeup, KindEvent:
			sessions = append(sessions, i)
		}
	}

	for a := 0; a < len(sessions); a++ {
		for b := a + 1; b < len(sessions); b++ {
			ea, eb := &entries[sessions[a]], &entries[sessions[b]]
			if sameSubject(ea.Occurrence.Subject, eb.Occurrence.Subject) {
				continue
			}
			if !ea.Occurrence.Periods.Overlaps(eb.Occurrence.Periods) {
				continue
			}
			ea.Conflict = true
			eb.Conflict = true
			warnings = append(warnings, conflictWarning(ea.Occurrence.ID, eb.Occurrence.ID))
		}
	}

	return warnings
}

func sameSubject(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
