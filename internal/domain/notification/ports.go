package notification

import "context"

// ═══════════════════════════════════════════════════════════════════════════
// PORTS
// ═══════════════════════════════════════════════════════════════════════════

// Sender is the delivery transport port. Implementations deliver one
// notification to its recipient; the dispatcher handles fan-out and retry.
type Sender interface {
	// Send delivers the notification. A returned error marks the attempt
	// failed; retryable errors are retried by the dispatcher.
	Send(ctx context.Context, n *Notification) error
}

// Directory resolves audiences to concrete recipients.
type Directory interface {
	// ListRecipients returns every recipient inside the audience,
	// including those with notifications disabled; the dispatcher skips
	// them after counting.
	ListRecipients(ctx context.Context, audience Audience) ([]Recipient, error)
}

// Repository is the persistence port for the notification log.
type Repository interface {
	// Save inserts or updates a notification record.
	Save(ctx context.Context, n *Notification) error

	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)
}
