package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrade(t *testing.T) {
	g, err := NewGrade(2)
	require.NoError(t, err)
	assert.Equal(t, Grade(2), g)
	assert.True(t, g.IsSet())

	g, err = NewGrade(0)
	require.NoError(t, err)
	assert.Equal(t, GradeNone, g)
	assert.False(t, g.IsSet())

	_, err = NewGrade(7)
	assert.ErrorIs(t, err, ErrInvalidGrade)
}

func TestLevelMatches(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"N2", "N2", true},
		{"N2", "n2", true},
		{"N2", "N2-N3", true},
		{"N2-N3", "N3", true},
		{"N1", "N3", false},
		{"", "N2", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.a).Matches(Level(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}

func TestSemester(t *testing.T) {
	s, err := NewSemester("2024-Spring")
	require.NoError(t, err)
	assert.Equal(t, Semester("2024-spring"), s)

	_, err = NewSemester("spring-2024")
	assert.ErrorIs(t, err, ErrInvalidSemester)

	assert.Equal(t, Semester("2024-spring"), CurrentSemester(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Semester("2024-winter"), CurrentSemester(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodClocks(t *testing.T) {
	// The teaching day starts at 09:00 in 50-minute slots.
	assert.Equal(t, "09:00", Period(1).StartClock())
	assert.Equal(t, "09:50", Period(1).EndClock())
	assert.Equal(t, "09:50", Period(2).StartClock())
	assert.Equal(t, "18:10", Period(12).StartClock())
}

func TestPeriodRange(t *testing.T) {
	r, err := NewPeriodRange(1, 3)
	require.NoError(t, err)

	other, err := NewPeriodRange(3, 4)
	require.NoError(t, err)
	assert.True(t, r.Overlaps(other))

	disjoint, err := NewPeriodRange(4, 5)
	require.NoError(t, err)
	assert.False(t, r.Overlaps(disjoint))

	_, err = NewPeriodRange(3, 1)
	assert.ErrorIs(t, err, ErrInvalidPeriodSpan)
	_, err = NewPeriodRange(0, 2)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = NewPeriodRange(1, 13)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestWeekdayMondayOffset(t *testing.T) {
	monday, _ := NewWeekday(1)
	sunday, _ := NewWeekday(0)
	saturday, _ := NewWeekday(6)

	assert.Equal(t, 0, monday.MondayOffset())
	assert.Equal(t, 5, saturday.MondayOffset())
	// Sunday is the seventh day of a Monday-anchored week.
	assert.Equal(t, 6, sunday.MondayOffset())
}
