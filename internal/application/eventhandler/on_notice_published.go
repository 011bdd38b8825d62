package eventhandler

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// OnNoticePublishedHandler announces freshly published notices to the
// notice's audience.
type OnNoticePublishedHandler struct {
	notifier Notifier
	log      *logger.Logger
}

// NewOnNoticePublishedHandler creates the handler.
func NewOnNoticePublishedHandler(notifier Notifier, log *logger.Logger) *OnNoticePublishedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnNoticePublishedHandler{
		notifier: notifier,
		log:      log.With(logger.Component("eventhandler.notice_published")),
	}
}

// Handle dispatches the announcement.
func (h *OnNoticePublishedHandler) Handle(ctx context.Context, event shared.Event) error {
	published, ok := event.(*notice.PublishedEvent)
	if !ok {
		h.log.Warn("unexpected event payload", logger.String("type", string(event.EventType())))
		return nil
	}
	n := published.Notice

	title, message := notification.NoticeMessage(n.Title, n.Body)
	audience := notification.Audience{
		Grade:          n.Audience.Grade,
		Level:          n.Audience.Level,
		GroupLevel:     n.Audience.GroupLevel,
		ForeignerTrack: n.Audience.ForeignerTrack,
	}

	report, err := h.notifier.Dispatch(ctx, notification.TypeNoticePublished, audience, title, message)
	if err != nil {
		return err
	}
	h.log.Info("notice announced",
		logger.String("notice_id", n.ID.String()),
		logger.RecipientCount(report.Sent),
	)
	return nil
}
