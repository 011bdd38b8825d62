package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

func weeklyOcc(id string, kind Kind, weekday int, scope Scope) Occurrence {
	wd, _ := shared.NewWeekday(weekday)
	periods, _ := shared.NewPeriodRange(1, 2)
	return Occurrence{
		ID:         id,
		Kind:       kind,
		Subject:    "Subject-" + id,
		Scope:      scope,
		Recurrence: WeeklyOn(wd),
		Periods:    periods,
	}
}

func datedOcc(id string, kind Kind, date string, scope Scope) Occurrence {
	d, _ := timeutil.ParseDate(date)
	periods, _ := shared.NewPeriodRange(1, 2)
	return Occurrence{
		ID:         id,
		Kind:       kind,
		Subject:    "Subject-" + id,
		Scope:      scope,
		Recurrence: On(d),
		Periods:    periods,
	}
}

func TestScopeFilter_RegularGradeFailsClosed(t *testing.T) {
	occs := []Occurrence{
		weeklyOcc("g2", KindRegular, 1, Scope{Grade: 2}),
		weeklyOcc("g3", KindRegular, 1, Scope{Grade: 3}),
		weeklyOcc("none", KindRegular, 1, Scope{}),
	}
	f := NewScopeFilter(ViewScope{Grade: 2}, occs)

	assert.True(t, f.Decide(occs[0]).Visible)
	assert.Equal(t, ReasonGradeMismatch, f.Decide(occs[1]).Reason)
	// A regular class with no recorded grade never leaks into a grade view.
	assert.Equal(t, ReasonNoGrade, f.Decide(occs[2]).Reason)
}

func TestScopeFilter_RegularWithoutGradeScoping(t *testing.T) {
	occ := weeklyOcc("none", KindRegular, 1, Scope{})
	f := NewScopeFilter(ViewScope{}, []Occurrence{occ})
	assert.True(t, f.Decide(occ).Visible)
}

func TestScopeFilter_SpecialLevelContainment(t *testing.T) {
	tests := []struct {
		name     string
		occLevel string
		view     string
		visible  bool
	}{
		{"exact match", "N2", "N2", true},
		{"compound occurrence label", "N2-N3", "N2", true},
		{"compound viewer label", "N2", "N2-N3", true},
		{"case insensitive", "n2", "N2", true},
		{"mismatch", "N1", "N3", false},
		{"unset occurrence level passes", "", "N2", true},
		{"unset viewer level passes", "N2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := weeklyOcc("s1", KindSpecial, 2, Scope{Level: shared.Level(tt.occLevel)})
			f := NewScopeFilter(ViewScope{Level: shared.Level(tt.view)}, []Occurrence{occ})
			got := f.Decide(occ)
			assert.Equal(t, tt.visible, got.Visible)
			if !tt.visible {
				assert.Equal(t, ReasonLevelMismatch, got.Reason)
			}
		})
	}
}

func TestScopeFilter_SpecialGroupAndTrack(t *testing.T) {
	grpA := weeklyOcc("a", KindSpecial, 2, Scope{GroupLevel: "A"})
	f := NewScopeFilter(ViewScope{GroupLevel: "B"}, []Occurrence{grpA})
	assert.Equal(t, ReasonGroupMismatch, f.Decide(grpA).Reason)

	foreign := weeklyOcc("f", KindSpecial, 2, Scope{ForeignerTrack: boolPtr(true)})
	f = NewScopeFilter(ViewScope{ForeignerTrack: boolPtr(false)}, []Occurrence{foreign})
	assert.Equal(t, ReasonTrackMismatch, f.Decide(foreign).Reason)

	// Track unset on either side never hides.
	f = NewScopeFilter(ViewScope{}, []Occurrence{foreign})
	assert.True(t, f.Decide(foreign).Visible)
}

func TestScopeFilter_LinkedInheritsRegularScope(t *testing.T) {
	regular := weeklyOcc("reg-1", KindRegular, 1, Scope{Grade: 2})
	cancel := datedOcc("cx-1", KindCancel, "2024-06-03", Scope{})
	cancel.LinkedRegularID = "reg-1"

	dataset := []Occurrence{regular, cancel}

	// Grade 2 viewer sees the cancellation through the linked class.
	f := NewScopeFilter(ViewScope{Grade: 2}, dataset)
	assert.True(t, f.Decide(cancel).Visible)

	// Grade 3 viewer does not.
	f = NewScopeFilter(ViewScope{Grade: 3}, dataset)
	assert.Equal(t, ReasonGradeMismatch, f.Decide(cancel).Reason)
}

func TestScopeFilter_LinkedWithoutGradeIsVisibleToAll(t *testing.T) {
	// A makeup with no grade information and no resolvable link is an
	// announcement for everyone.
	makeup := datedOcc("mk-1", KindMakeup, "2024-06-04", Scope{})
	makeup.LinkedRegularID = "missing"

	f := NewScopeFilter(ViewScope{Grade: 1}, []Occurrence{makeup})
	assert.True(t, f.Decide(makeup).Visible)
}

func TestScopeFilter_HolidayAlwaysVisible(t *testing.T) {
	holiday := datedOcc("h1", KindHoliday, "2024-06-06", Scope{})
	f := NewScopeFilter(ViewScope{Grade: 1, Level: "N1", GroupLevel: "A"}, []Occurrence{holiday})
	assert.True(t, f.Decide(holiday).Visible)
}

func TestScopeFilter_DateWindow(t *testing.T) {
	from := timeutil.Date(2024, 6, 3)
	to := timeutil.Date(2024, 6, 9)
	window := DateWindow{From: from, To: to}

	inside := datedOcc("in", KindEvent, "2024-06-05", Scope{})
	outside := datedOcc("out", KindEvent, "2024-06-12", Scope{})
	lateHoliday := datedOcc("h-out", KindHoliday, "2024-06-12", Scope{})
	weekly := weeklyOcc("wk", KindRegular, 2, Scope{})

	f := NewScopeFilter(ViewScope{Window: window}, []Occurrence{inside, outside, lateHoliday, weekly})

	assert.True(t, f.Decide(inside).Visible)
	assert.Equal(t, ReasonOutsideWindow, f.Decide(outside).Reason)
	// The window rule applies to holidays too.
	assert.Equal(t, ReasonOutsideWindow, f.Decide(lateHoliday).Reason)
	// A full week contains every weekday.
	assert.True(t, f.Decide(weekly).Visible)
}

func TestScopeFilter_FilterPreservesOrder(t *testing.T) {
	occs := []Occurrence{
		weeklyOcc("a", KindRegular, 1, Scope{Grade: 2}),
		weeklyOcc("b", KindRegular, 1, Scope{Grade: 3}),
		weeklyOcc("c", KindRegular, 2, Scope{Grade: 2}),
		datedOcc("d", KindHoliday, "2024-06-06", Scope{}),
	}

	f := NewScopeFilter(ViewScope{Grade: 2}, occs)
	got := f.Filter(occs)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "d", got[2].ID)
}
