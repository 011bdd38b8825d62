// Package notification contains the domain model for delivering schedule
// and notice announcements to portal users. The package defines what gets
// sent to whom; concrete delivery transports live behind the Sender port.
package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ═══════════════════════════════════════════════════════════════════════════

// NotificationID uniquely identifies a notification.
type NotificationID string

// NewNotificationID generates a fresh notification id.
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// IsValid reports whether the id is non-empty.
func (id NotificationID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id NotificationID) String() string {
	return string(id)
}

// ═══════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ═══════════════════════════════════════════════════════════════════════════

// Type classifies a notification.
type Type string

const (
	// TypeScheduleChanged - a cancellation, makeup, or event was recorded
	// that affects the recipient's week.
	TypeScheduleChanged Type = "schedule_changed"

	// TypeNoticePublished - a notice addressed to the recipient went live.
	TypeNoticePublished Type = "notice_published"

	// TypeWeeklyDigest - the Sunday-evening summary of the coming week.
	TypeWeeklyDigest Type = "weekly_digest"
)

// IsValid checks if the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeScheduleChanged, TypeNoticePublished, TypeWeeklyDigest:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Type) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════

// Status tracks delivery progress.
type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// CanRetry reports whether a retry attempt is allowed from this status.
func (s Status) CanRetry() bool {
	return s == StatusFailed
}

// ═══════════════════════════════════════════════════════════════════════════
// RECIPIENT & AUDIENCE
// ═══════════════════════════════════════════════════════════════════════════

// Recipient is a portal user eligible to receive notifications, as the
// directory reports them.
type Recipient struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Grade          shared.Grade      `json:"grade,omitempty"`
	Level          shared.Level      `json:"level,omitempty"`
	GroupLevel     shared.GroupLevel `json:"group_level,omitempty"`
	ForeignerTrack *bool             `json:"foreigner_track,omitempty"`

	// Enabled reflects the user's notification preference. Disabled
	// recipients are resolved but never dispatched to.
	Enabled bool `json:"enabled"`
}

// Audience scopes who a notification is addressed to. Unset fields widen
// the audience; a zero Audience reaches everyone.
type Audience struct {
	Grade          shared.Grade      `json:"grade,omitempty"`
	Level          shared.Level      `json:"level,omitempty"`
	GroupLevel     shared.GroupLevel `json:"group_level,omitempty"`
	ForeignerTrack *bool             `json:"foreigner_track,omitempty"`
}

// Matches reports whether a recipient falls inside the audience. Each set
// audience field must agree with the recipient's corresponding field; level
// matching tolerates compound labels the same way schedule scoping does.
func (a Audience) Matches(r Recipient) bool {
	if a.Grade.IsSet() && r.Grade != a.Grade {
		return false
	}
	if a.Level.IsSet() && !a.Level.Matches(r.Level) {
		return false
	}
	if a.GroupLevel.IsSet() && !a.GroupLevel.Matches(r.GroupLevel) {
		return false
	}
	if a.ForeignerTrack != nil && r.ForeignerTrack != nil && *a.ForeignerTrack != *r.ForeignerTrack {
		return false
	}
	return true
}

// ═══════════════════════════════════════════════════════════════════════════
// NOTIFICATION ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Notification is one message addressed to one recipient.
type Notification struct {
	ID   NotificationID `json:"id"`
	Type Type           `json:"type"`

	RecipientID string `json:"recipient_id"`

	Title   string `json:"title"`
	Message string `json:"message"`

	Status     Status `json:"status"`
	RetryCount int    `json:"retry_count"`
	LastError  string `json:"last_error,omitempty"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNotification creates a pending notification with validation.
func NewNotification(typ Type, recipientID, title, message string) (*Notification, error) {
	if !typ.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput, "unknown notification type")
	}
	if recipientID == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID, "recipient id cannot be empty")
	}
	if message == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "notification message cannot be empty")
	}

	now := time.Now().UTC()
	return &Notification{
		ID:          NewNotificationID(),
		Type:        typ,
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MarkSending transitions to the sending state.
func (n *Notification) MarkSending() error {
	if n.Status != StatusPending && !n.Status.CanRetry() {
		return shared.NewDomainError("notification", "MarkSending", shared.ErrInvalidState,
			"cannot send from status "+string(n.Status))
	}
	n.Status = StatusSending
	n.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSent records a successful delivery.
func (n *Notification) MarkSent() error {
	if n.Status != StatusSending {
		return shared.NewDomainError("notification", "MarkSent", shared.ErrInvalidState,
			"cannot mark sent from status "+string(n.Status))
	}
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
	n.UpdatedAt = now
	return nil
}

// MarkFailed records a failed delivery attempt.
func (n *Notification) MarkFailed(cause error) error {
	if n.Status != StatusSending {
		return shared.NewDomainError("notification", "MarkFailed", shared.ErrInvalidState,
			"cannot mark failed from status "+string(n.Status))
	}
	n.Status = StatusFailed
	n.RetryCount++
	if cause != nil {
		n.LastError = cause.Error()
	}
	n.UpdatedAt = time.Now().UTC()
	return nil
}
