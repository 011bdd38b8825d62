package command

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTICE COMMANDS
// Create / publish / pin / delete for administrative announcements. Creation
// produces a draft; publication is a separate step that fans out the
// notice.published event.
// ══════════════════════════════════════════════════════════════════════════════

// CreateNoticeCommand contains the data of a new draft notice.
type CreateNoticeCommand struct {
	Title    string
	Body     string
	Audience notice.Audience
	Pinned   bool
	AuthorID string
}

// PublishNoticeCommand publishes an existing draft.
type PublishNoticeCommand struct {
	NoticeID string
}

// PinNoticeCommand toggles the pinned flag.
type PinNoticeCommand struct {
	NoticeID string
	Pinned   bool
}

// DeleteNoticeCommand removes a notice.
type DeleteNoticeCommand struct {
	NoticeID string
}

// NoticeHandler handles all notice write operations.
type NoticeHandler struct {
	repo      notice.Repository
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewNoticeHandler creates the handler. publisher may be nil.
func NewNoticeHandler(repo notice.Repository, publisher shared.EventPublisher, log *logger.Logger) *NoticeHandler {
	if log == nil {
		log = logger.Default()
	}
	return &NoticeHandler{
		repo:      repo,
		publisher: publisher,
		log:       log.With(logger.Component("command.notice")),
	}
}

// Create validates and stores a draft notice.
func (h *NoticeHandler) Create(ctx context.Context, cmd CreateNoticeCommand) (*notice.Notice, error) {
	n, err := notice.NewNotice(notice.NewNoticeParams{
		Title:    cmd.Title,
		Body:     cmd.Body,
		Audience: cmd.Audience,
		Pinned:   cmd.Pinned,
		AuthorID: cmd.AuthorID,
	})
	if err != nil {
		return nil, err
	}
	if err := h.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	h.log.Info("notice created", logger.String("notice_id", n.ID.String()))
	return n, nil
}

// Publish moves a draft to published and emits notice.published. Publishing
// an already-published notice is an error; the event fires at most once.
func (h *NoticeHandler) Publish(ctx context.Context, cmd PublishNoticeCommand) (*notice.Notice, error) {
	n, err := h.repo.GetByID(ctx, notice.NoticeID(cmd.NoticeID))
	if err != nil {
		return nil, err
	}
	if err := n.Publish(); err != nil {
		return nil, err
	}
	if err := h.repo.Save(ctx, n); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, notice.NewPublishedEvent(n)); err != nil {
			h.log.Warn("notice.published publish failed", logger.Err(err))
		}
	}

	h.log.Info("notice published", logger.String("notice_id", n.ID.String()))
	return n, nil
}

// Pin sets or clears the pinned flag.
func (h *NoticeHandler) Pin(ctx context.Context, cmd PinNoticeCommand) (*notice.Notice, error) {
	n, err := h.repo.GetByID(ctx, notice.NoticeID(cmd.NoticeID))
	if err != nil {
		return nil, err
	}
	if cmd.Pinned {
		n.Pin()
	} else {
		n.Unpin()
	}
	if err := h.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a notice. Deleting a missing notice is a no-op.
func (h *NoticeHandler) Delete(ctx context.Context, cmd DeleteNoticeCommand) error {
	if err := h.repo.Delete(ctx, notice.NoticeID(cmd.NoticeID)); err != nil {
		return err
	}
	h.log.Info("notice deleted", logger.String("notice_id", cmd.NoticeID))
	return nil
}
