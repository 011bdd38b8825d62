package eventhandler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

type dispatchCall struct {
	typ      notification.Type
	audience notification.Audience
	title    string
	message  string
}

type stubNotifier struct {
	calls []dispatchCall
	err   error
}

func (s *stubNotifier) Dispatch(ctx context.Context, typ notification.Type, audience notification.Audience, title, message string) (notification.Report, error) {
	if s.err != nil {
		return notification.Report{}, s.err
	}
	s.calls = append(s.calls, dispatchCall{typ: typ, audience: audience, title: title, message: message})
	return notification.Report{Matched: 1, Sent: 1}, nil
}

func cancelOccurrence() schedule.Occurrence {
	periods, err := shared.NewPeriodRange(1, 2)
	if err != nil {
		panic(err)
	}
	return schedule.Occurrence{
		ID:      "cx-1",
		Kind:    schedule.KindCancel,
		Subject: "Japanese Grammar",
		Scope: schedule.Scope{
			Grade: 2,
			Level: shared.NewLevel("N2"),
		},
		Recurrence: schedule.On(timeutil.Date(2024, time.June, 3)),
		Periods:    periods,
	}
}

func TestOnScheduleChanged_DispatchesToOccurrenceScope(t *testing.T) {
	notifier := &stubNotifier{}
	handler := NewOnScheduleChangedHandler(notifier, nil)

	err := handler.Handle(context.Background(), schedule.NewChangedEvent(cancelOccurrence()))
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	assert.Equal(t, notification.TypeScheduleChanged, call.typ)
	assert.Equal(t, shared.Grade(2), call.audience.Grade)
	assert.Equal(t, shared.NewLevel("N2"), call.audience.Level)
	assert.Contains(t, call.message, "Japanese Grammar")
}

func TestOnScheduleChanged_IgnoresForeignPayload(t *testing.T) {
	notifier := &stubNotifier{}
	handler := NewOnScheduleChangedHandler(notifier, nil)

	base := shared.NewBaseEvent(shared.EventScheduleChanged, "x")
	err := handler.Handle(context.Background(), base)
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestOnScheduleChanged_DispatchErrorPropagates(t *testing.T) {
	notifier := &stubNotifier{err: fmt.Errorf("directory down")}
	handler := NewOnScheduleChangedHandler(notifier, nil)

	err := handler.Handle(context.Background(), schedule.NewChangedEvent(cancelOccurrence()))
	assert.Error(t, err)
}

func TestOnNoticePublished_DispatchesToNoticeAudience(t *testing.T) {
	notifier := &stubNotifier{}
	handler := NewOnNoticePublishedHandler(notifier, nil)

	n, err := notice.NewNotice(notice.NewNoticeParams{
		Title:    "Midterm week",
		Body:     "Regular classes pause during midterms.",
		Audience: notice.Audience{Grade: 3},
		AuthorID: "admin-1",
	})
	require.NoError(t, err)
	require.NoError(t, n.Publish())

	require.NoError(t, handler.Handle(context.Background(), notice.NewPublishedEvent(n)))

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	assert.Equal(t, notification.TypeNoticePublished, call.typ)
	assert.Equal(t, shared.Grade(3), call.audience.Grade)
	assert.Contains(t, call.message, "midterms")
}
