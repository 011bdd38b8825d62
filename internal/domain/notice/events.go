package notice

import (
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// PublishedEvent is emitted when a draft notice goes live. Carries the full
// notice so subscribers can render the announcement without a second read.
type PublishedEvent struct {
	shared.BaseEvent

	Notice *Notice `json:"notice"`
}

// NewPublishedEvent builds a PublishedEvent for the given notice.
func NewPublishedEvent(n *Notice) *PublishedEvent {
	return &PublishedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventNoticePublished, n.ID.String()),
		Notice:    n,
	}
}

// Payload implements shared.Event.
func (e *PublishedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"notice_id": e.Notice.ID.String(),
		"title":     e.Notice.Title,
		"pinned":    e.Notice.Pinned,
	}
}
