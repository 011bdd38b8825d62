package postgres

import (
	"context"
	"fmt"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// RECIPIENT DIRECTORY IMPLEMENTATION
// ═══════════════════════════════════════════════════════════════════════════

// DirectoryRepository implements notification.Directory and
// notification.Repository for PostgreSQL. The users table is the portal's
// account store; only the notification-relevant columns are read here.
type DirectoryRepository struct {
	conn *Connection
}

// NewDirectoryRepository creates a new DirectoryRepository.
func NewDirectoryRepository(conn *Connection) *DirectoryRepository {
	return &DirectoryRepository{conn: conn}
}

var _ notification.Directory = (*DirectoryRepository)(nil)
var _ notification.Repository = (*DirectoryRepository)(nil)

// ListRecipients returns every recipient inside the audience. Grade and
// group narrowing happen in SQL; level containment is re-checked in memory
// because labels are free-form and compound.
func (d *DirectoryRepository) ListRecipients(ctx context.Context, audience notification.Audience) ([]notification.Recipient, error) {
	query := `
		SELECT id, name, grade, level, group_level, foreigner_track,
			   notifications_enabled
		FROM users
		WHERE status = 'active'
		  AND ($1 = 0 OR grade = $1)
		ORDER BY id
	`

	rows, err := d.conn.Query(ctx, query, int(audience.Grade))
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []notification.Recipient
	for rows.Next() {
		var (
			r     notification.Recipient
			grade int
			level string
			group string
		)
		if err := rows.Scan(&r.ID, &r.Name, &grade, &level, &group,
			&r.ForeignerTrack, &r.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		r.Grade = shared.Grade(grade)
		r.Level = shared.Level(level)
		r.GroupLevel = shared.GroupLevel(group)

		if audience.Matches(r) {
			recipients = append(recipients, r)
		}
	}

	return recipients, rows.Err()
}

// Save inserts or updates a notification record.
func (d *DirectoryRepository) Save(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, type, recipient_id, title, message, status, retry_count,
			last_error, sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			retry_count = EXCLUDED.retry_count,
			last_error = EXCLUDED.last_error,
			sent_at = EXCLUDED.sent_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := d.conn.Exec(ctx, query,
		n.ID.String(),
		n.Type.String(),
		n.RecipientID,
		n.Title,
		n.Message,
		string(n.Status),
		n.RetryCount,
		n.LastError,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	return nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (d *DirectoryRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, type, recipient_id, title, message, status, retry_count,
			   last_error, sent_at, created_at, updated_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var (
			n      notification.Notification
			id     string
			typ    string
			status string
		)
		if err := rows.Scan(&id, &typ, &n.RecipientID, &n.Title, &n.Message,
			&status, &n.RetryCount, &n.LastError, &n.SentAt,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.ID = notification.NotificationID(id)
		n.Type = notification.Type(typ)
		n.Status = notification.Status(status)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}
