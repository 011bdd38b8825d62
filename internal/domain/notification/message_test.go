package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

func datedOccurrence(kind schedule.Kind, subject, date string, start, end int) schedule.Occurrence {
	d, _ := timeutil.ParseDate(date)
	periods, _ := shared.NewPeriodRange(start, end)
	return schedule.Occurrence{
		ID:         "x",
		Kind:       kind,
		Subject:    subject,
		Recurrence: schedule.On(d),
		Periods:    periods,
	}
}

func TestScheduleChangeMessage(t *testing.T) {
	title, msg := ScheduleChangeMessage(datedOccurrence(schedule.KindCancel, "Math", "2024-06-04", 1, 2))
	assert.Equal(t, "Class cancelled", title)
	assert.Contains(t, msg, "Math")
	assert.Contains(t, msg, "2024-06-04")
	assert.Contains(t, msg, "1-2")

	title, msg = ScheduleChangeMessage(datedOccurrence(schedule.KindMakeup, "Grammar", "2024-06-06", 3, 4))
	assert.Equal(t, "Makeup class scheduled", title)
	assert.Contains(t, msg, "Grammar")

	title, msg = ScheduleChangeMessage(datedOccurrence(schedule.KindHoliday, "", "2024-06-07", 1, 12))
	assert.Equal(t, "School holiday", title)
	assert.Contains(t, msg, "2024-06-07")
}

func TestWeeklyDigestMessage(t *testing.T) {
	week := timeutil.Date(2024, 6, 3)
	records := []schedule.RawRecord{
		{ID: "reg-1", Subject: "Math", Grade: 2, Weekday: intPtr(1), StartPeriod: 1, EndPeriod: 2},
		{ID: "cx-1", EventType: "cancel", Subject: "Math", Date: "2024-06-03", StartPeriod: 1, EndPeriod: 2, LinkedRegularID: "reg-1"},
	}

	result := schedule.Compose(records, schedule.ViewScope{Grade: 2}, week)

	title, msg := WeeklyDigestMessage(result)
	assert.Equal(t, "Your week of 2024-06-03", title)
	require.Contains(t, msg, "2024-06-03 (Mon):")
	assert.Contains(t, msg, "CANCELLED")
}

func TestWeeklyDigestMessage_EmptyWeek(t *testing.T) {
	result := schedule.Result{WeekStart: timeutil.Date(2024, 6, 3)}
	_, msg := WeeklyDigestMessage(result)
	assert.Equal(t, "No classes scheduled this week.", msg)
}

func TestNoticeMessage(t *testing.T) {
	title, msg := NoticeMessage("Library closed", "The library closes early on Friday.")
	assert.Equal(t, "Notice: Library closed", title)
	assert.Equal(t, "The library closes early on Friday.", msg)

	// Long bodies are truncated for delivery.
	long := strings.Repeat("a", 500)
	_, msg = NoticeMessage("Long", long)
	assert.True(t, len(msg) < 320)
	assert.True(t, strings.HasSuffix(msg, "..."))

	// Empty body falls back to the title.
	_, msg = NoticeMessage("Just a title", "  ")
	assert.Equal(t, "Just a title", msg)
}

func intPtr(v int) *int { return &v }
