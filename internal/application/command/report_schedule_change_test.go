package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type stubChangeStore struct {
	events   []schedule.RawRecord
	specials []schedule.RawRecord
	err      error
}

func (s *stubChangeStore) InsertEvent(ctx context.Context, rec schedule.RawRecord) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, rec)
	return nil
}

func (s *stubChangeStore) InsertSpecialLecture(ctx context.Context, rec schedule.RawRecord) error {
	if s.err != nil {
		return s.err
	}
	s.specials = append(s.specials, rec)
	return nil
}

type stubBumper struct {
	bumps int
	err   error
}

func (b *stubBumper) BumpVersion(ctx context.Context) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.bumps++
	return int64(b.bumps), nil
}

type stubPublisher struct {
	events []shared.Event
}

func (p *stubPublisher) Publish(ctx context.Context, event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func intPtr(v int) *int { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestReportScheduleChange_Cancellation(t *testing.T) {
	store := &stubChangeStore{}
	bumper := &stubBumper{}
	publisher := &stubPublisher{}
	handler := NewReportScheduleChangeHandler(store, bumper, publisher, nil)

	result, err := handler.Execute(context.Background(), ReportScheduleChangeCommand{
		Type:            ChangeCancel,
		Subject:         "Japanese Grammar",
		Date:            "2024-06-03",
		StartPeriod:     1,
		EndPeriod:       2,
		Grade:           2,
		LinkedRegularID: "reg-1",
	})
	require.NoError(t, err)

	assert.Equal(t, schedule.KindCancel, result.Kind)
	assert.NotEmpty(t, result.OccurrenceID)

	require.Len(t, store.events, 1)
	assert.Equal(t, result.OccurrenceID, store.events[0].ID)
	assert.Equal(t, "cancel", store.events[0].EventType)
	assert.Equal(t, "reg-1", store.events[0].LinkedRegularID)
	assert.Empty(t, store.specials)

	assert.Equal(t, 1, bumper.bumps)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventScheduleChanged, publisher.events[0].EventType())
}

func TestReportScheduleChange_SpecialLecture(t *testing.T) {
	store := &stubChangeStore{}
	handler := NewReportScheduleChangeHandler(store, nil, nil, nil)

	result, err := handler.Execute(context.Background(), ReportScheduleChangeCommand{
		Type:        ChangeSpecial,
		Subject:     "TOPIK Intensive",
		Weekday:     intPtr(3),
		StartPeriod: 5,
		EndPeriod:   6,
		Level:       "TOPIK4",
		Semester:    "2024-summer",
	})
	require.NoError(t, err)

	assert.Equal(t, schedule.KindSpecial, result.Kind)
	require.Len(t, store.specials, 1)
	assert.Empty(t, store.events)
	assert.Equal(t, "special", store.specials[0].Kind)
}

func TestReportScheduleChange_DeterministicID(t *testing.T) {
	cmd := ReportScheduleChangeCommand{
		Type:        ChangeMakeup,
		Subject:     "Japanese Grammar",
		Date:        "2024-06-07",
		StartPeriod: 3,
		EndPeriod:   4,
	}

	first := &stubChangeStore{}
	second := &stubChangeStore{}

	r1, err := NewReportScheduleChangeHandler(first, nil, nil, nil).Execute(context.Background(), cmd)
	require.NoError(t, err)
	r2, err := NewReportScheduleChangeHandler(second, nil, nil, nil).Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, r1.OccurrenceID, r2.OccurrenceID)
}

func TestReportScheduleChange_Validation(t *testing.T) {
	handler := NewReportScheduleChangeHandler(&stubChangeStore{}, nil, nil, nil)

	tests := []struct {
		name string
		cmd  ReportScheduleChangeCommand
	}{
		{"punctual change without date", ReportScheduleChangeCommand{Type: ChangeCancel, StartPeriod: 1, EndPeriod: 2}},
		{"special without weekday", ReportScheduleChangeCommand{Type: ChangeSpecial, StartPeriod: 1, EndPeriod: 2}},
		{"unknown type", ReportScheduleChangeCommand{Type: "postpone", Date: "2024-06-03"}},
		{"invalid period range", ReportScheduleChangeCommand{Type: ChangeEvent, Date: "2024-06-03", StartPeriod: 4, EndPeriod: 2}},
		{"invalid date", ReportScheduleChangeCommand{Type: ChangeEvent, Date: "06/03/2024", StartPeriod: 1, EndPeriod: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.cmd)
			assert.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestReportScheduleChange_StoreErrorIsFatal(t *testing.T) {
	store := &stubChangeStore{err: fmt.Errorf("insert failed")}
	bumper := &stubBumper{}
	publisher := &stubPublisher{}
	handler := NewReportScheduleChangeHandler(store, bumper, publisher, nil)

	_, err := handler.Execute(context.Background(), ReportScheduleChangeCommand{
		Type:        ChangeEvent,
		Subject:     "Field Trip",
		Date:        "2024-06-05",
		StartPeriod: 1,
		EndPeriod:   4,
	})
	require.Error(t, err)
	assert.Zero(t, bumper.bumps)
	assert.Empty(t, publisher.events)
}

func TestReportScheduleChange_BumpFailureIsNotFatal(t *testing.T) {
	store := &stubChangeStore{}
	bumper := &stubBumper{err: fmt.Errorf("redis down")}
	handler := NewReportScheduleChangeHandler(store, bumper, nil, nil)

	_, err := handler.Execute(context.Background(), ReportScheduleChangeCommand{
		Type:        ChangeEvent,
		Subject:     "Field Trip",
		Date:        "2024-06-05",
		StartPeriod: 1,
		EndPeriod:   4,
	})
	assert.NoError(t, err)
	require.Len(t, store.events, 1)
}
