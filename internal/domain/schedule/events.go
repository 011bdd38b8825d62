package schedule

import (
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ═══════════════════════════════════════════════════════════════════════════

// ChangedEvent is emitted after a schedule mutation (a new cancellation,
// makeup, one-off event, or special lecture) has been persisted. Carries the
// normalized occurrence so subscribers never re-read the store.
type ChangedEvent struct {
	shared.BaseEvent

	Occurrence Occurrence `json:"occurrence"`
}

// NewChangedEvent builds a ChangedEvent for the given occurrence.
func NewChangedEvent(occ Occurrence) *ChangedEvent {
	return &ChangedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventScheduleChanged, occ.ID),
		Occurrence: occ,
	}
}

// Payload implements shared.Event.
func (e *ChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"occurrence_id": e.Occurrence.ID,
		"kind":          e.Occurrence.Kind.String(),
		"subject":       e.Occurrence.Subject,
	}
}
