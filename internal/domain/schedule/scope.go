package schedule

import (
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// VIEW SCOPE
// ═══════════════════════════════════════════════════════════════════════════

// DateWindow bounds the dates a viewer is interested in. Zero endpoints
// mean unbounded on that side.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the window is fully unbounded.
func (w DateWindow) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Contains reports whether a date falls inside the window.
func (w DateWindow) Contains(date time.Time) bool {
	if !w.From.IsZero() && date.Before(timeutil.StartOfDay(w.From)) {
		return false
	}
	if !w.To.IsZero() && date.After(timeutil.EndOfDay(w.To)) {
		return false
	}
	return true
}

// containsWeekday reports whether any date in the window falls on the given
// weekday. Unbounded windows always contain every weekday.
func (w DateWindow) containsWeekday(weekday shared.Weekday) bool {
	if w.From.IsZero() || w.To.IsZero() {
		return true
	}
	from := timeutil.StartOfDay(w.From)
	to := timeutil.StartOfDay(w.To)
	if to.Sub(from) >= 6*24*time.Hour {
		return true
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if shared.WeekdayOf(d) == weekday {
			return true
		}
	}
	return false
}

// ViewScope is the filtering context a viewer requests. Unset fields relax
// the corresponding rule.
type ViewScope struct {
	Grade          shared.Grade
	Level          shared.Level
	GroupLevel     shared.GroupLevel
	ForeignerTrack *bool
	Window         DateWindow
}

// ═══════════════════════════════════════════════════════════════════════════
// VISIBILITY DECISIONS
// ═══════════════════════════════════════════════════════════════════════════

// Reason explains why an occurrence was hidden. Empty for visible
// occurrences. Diagnostic only; never shown to end users.
type Reason string

const (
	ReasonOutsideWindow Reason = "outside_window"
	ReasonGradeMismatch Reason = "grade_mismatch"
	ReasonNoGrade       Reason = "no_grade_recorded"
	ReasonLevelMismatch Reason = "level_mismatch"
	ReasonGroupMismatch Reason = "group_mismatch"
	ReasonTrackMismatch Reason = "track_mismatch"
)

// Visibility is the outcome of one scope decision.
type Visibility struct {
	Visible bool
	Reason  Reason
}

func visible() Visibility        { return Visibility{Visible: true} }
func hidden(r Reason) Visibility { return Visibility{Visible: false, Reason: r} }

// ScopeFilter decides per-occurrence visibility for one viewing scope. It
// indexes the regular occurrences of the dataset so cancels and makeups can
// inherit the scope of the class they point at.
type ScopeFilter struct {
	view     ViewScope
	regulars map[string]Occurrence
}

// NewScopeFilter builds a filter for the given view over the given dataset.
// The dataset must contain the regular occurrences that cancels/makeups may
// reference; passing the full normalized set is the intended use.
func NewScopeFilter(view ViewScope, dataset []Occurrence) *ScopeFilter {
	regulars := make(map[string]Occurrence)
	for _, occ := range dataset {
		if occ.Kind == KindRegular {
			regulars[occ.ID] = occ
		}
	}
	return &ScopeFilter{view: view, regulars: regulars}
}

// Filter returns the occurrences visible under the view scope, preserving
// input order.
func (f *ScopeFilter) Filter(occurrences []Occurrence) []Occurrence {
	out := make([]Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if f.Decide(occ).Visible {
			out = append(out, occ)
		}
	}
	return out
}

// Decide applies the visibility rules in order; the first matching rule
// decides.
func (f *ScopeFilter) Decide(occ Occurrence) Visibility {
	// The date window applies to every kind, holidays included: a viewer
	// asking for one week has no use for another week's holiday.
	if !f.inWindow(occ) {
		return hidden(ReasonOutsideWindow)
	}

	switch occ.Kind {
	case KindHoliday:
		// Holidays apply to every viewer.
		return visible()

	case KindSpecial:
		return f.decideSpecial(occ)

	case KindCancel, KindMakeup, KindEvent:
		return f.decideLinked(occ)

	default: // KindRegular
		return f.decideRegular(occ)
	}
}

func (f *ScopeFilter) inWindow(occ Occurrence) bool {
	if f.view.Window.IsZero() {
		return true
	}
	if occ.Recurrence.Type == SingleDate {
		return f.view.Window.Contains(occ.Recurrence.Date)
	}
	return f.view.Window.containsWeekday(occ.Recurrence.Weekday)
}

// decideSpecial: special lectures are visible to any grade but are filtered
// by level/group when the viewer specifies them. Level matching tolerates
// compound labels ("N2" matches "N2-N3").
func (f *ScopeFilter) decideSpecial(occ Occurrence) Visibility {
	if f.view.Level.IsSet() && occ.Scope.Level.IsSet() && !occ.Scope.Level.Matches(f.view.Level) {
		return hidden(ReasonLevelMismatch)
	}
	if f.view.GroupLevel.IsSet() && occ.Scope.GroupLevel.IsSet() && !occ.Scope.GroupLevel.Matches(f.view.GroupLevel) {
		return hidden(ReasonGroupMismatch)
	}
	if mismatchedTrack(f.view.ForeignerTrack, occ.Scope.ForeignerTrack) {
		return hidden(ReasonTrackMismatch)
	}
	return visible()
}

// decideLinked: cancels and makeups inherit the scope of their linked
// regular when it resolves; otherwise their own embedded scope applies.
// Grade comparison only hides when both sides record a grade - a makeup
// with no grade information is an announcement for everyone.
func (f *ScopeFilter) decideLinked(occ Occurrence) Visibility {
	scope := occ.Scope
	if occ.LinkedRegularID != "" {
		if regular, ok := f.regulars[occ.LinkedRegularID]; ok {
			scope = regular.Scope
		}
	}

	if f.view.Grade.IsSet() && scope.Grade.IsSet() && scope.Grade != f.view.Grade {
		return hidden(ReasonGradeMismatch)
	}
	if mismatchedTrack(f.view.ForeignerTrack, scope.ForeignerTrack) {
		return hidden(ReasonTrackMismatch)
	}
	return visible()
}

// decideRegular: regular classes require an exact grade match. A regular
// class with no recorded grade is never visible under grade scoping - fail
// closed, so one grade's schedule cannot leak into another's view.
func (f *ScopeFilter) decideRegular(occ Occurrence) Visibility {
	if f.view.Grade.IsSet() {
		if !occ.Scope.Grade.IsSet() {
			return hidden(ReasonNoGrade)
		}
		if occ.Scope.Grade != f.view.Grade {
			return hidden(ReasonGradeMismatch)
		}
	}
	if mismatchedTrack(f.view.ForeignerTrack, occ.Scope.ForeignerTrack) {
		return hidden(ReasonTrackMismatch)
	}
	return visible()
}

func mismatchedTrack(view, occ *bool) bool {
	return view != nil && occ != nil && *view != *occ
}
