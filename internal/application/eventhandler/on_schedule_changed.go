// Package eventhandler contains the domain event subscribers that connect
// the write side to the notification fan-out.
package eventhandler

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON SCHEDULE CHANGED HANDLER
// Turns a persisted schedule change into notifications for the students the
// change concerns: the occurrence's own scope becomes the audience.
// ══════════════════════════════════════════════════════════════════════════════

// Notifier is the fan-out port; satisfied by notification.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, typ notification.Type, audience notification.Audience, title, message string) (notification.Report, error)
}

// OnScheduleChangedHandler reacts to schedule.changed events.
type OnScheduleChangedHandler struct {
	notifier Notifier
	log      *logger.Logger
}

// NewOnScheduleChangedHandler creates the handler.
func NewOnScheduleChangedHandler(notifier Notifier, log *logger.Logger) *OnScheduleChangedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnScheduleChangedHandler{
		notifier: notifier,
		log:      log.With(logger.Component("eventhandler.schedule_changed")),
	}
}

// Handle dispatches a change notification scoped to the occurrence.
func (h *OnScheduleChangedHandler) Handle(ctx context.Context, event shared.Event) error {
	changed, ok := event.(*schedule.ChangedEvent)
	if !ok {
		h.log.Warn("unexpected event payload", logger.String("type", string(event.EventType())))
		return nil
	}
	occ := changed.Occurrence

	title, message := notification.ScheduleChangeMessage(occ)
	audience := notification.Audience{
		Grade:          occ.Scope.Grade,
		Level:          occ.Scope.Level,
		GroupLevel:     occ.Scope.GroupLevel,
		ForeignerTrack: occ.Scope.ForeignerTrack,
	}

	report, err := h.notifier.Dispatch(ctx, notification.TypeScheduleChanged, audience, title, message)
	if err != nil {
		return err
	}
	h.log.Info("schedule change notified",
		logger.OccurrenceID(occ.ID),
		logger.OccurrenceKind(occ.Kind.String()),
		logger.RecipientCount(report.Sent),
	)
	return nil
}
