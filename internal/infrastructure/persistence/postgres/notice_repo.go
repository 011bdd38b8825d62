package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// NOTICE REPOSITORY IMPLEMENTATION
// ═══════════════════════════════════════════════════════════════════════════

const defaultNoticeLimit = 50

// NoticeRepository implements notice.Repository for PostgreSQL.
type NoticeRepository struct {
	conn *Connection
}

// NewNoticeRepository creates a new NoticeRepository.
func NewNoticeRepository(conn *Connection) *NoticeRepository {
	return &NoticeRepository{conn: conn}
}

var _ notice.Repository = (*NoticeRepository)(nil)

// Save inserts or updates a notice.
func (r *NoticeRepository) Save(ctx context.Context, n *notice.Notice) error {
	query := `
		INSERT INTO notices (
			id, title, body, grade, level, group_level, foreigner_track,
			pinned, author_id, published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			grade = EXCLUDED.grade,
			level = EXCLUDED.level,
			group_level = EXCLUDED.group_level,
			foreigner_track = EXCLUDED.foreigner_track,
			pinned = EXCLUDED.pinned,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID.String(),
		n.Title,
		n.Body,
		int(n.Audience.Grade),
		n.Audience.Level.String(),
		n.Audience.GroupLevel.String(),
		n.Audience.ForeignerTrack,
		n.Pinned,
		n.AuthorID,
		n.PublishedAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notice: %w", err)
	}

	return nil
}

// GetByID returns the notice or shared.ErrNoticeNotFound.
func (r *NoticeRepository) GetByID(ctx context.Context, id notice.NoticeID) (*notice.Notice, error) {
	query := `
		SELECT id, title, body, grade, level, group_level, foreigner_track,
			   pinned, author_id, published_at, created_at, updated_at
		FROM notices
		WHERE id = $1
	`

	n, err := scanNotice(r.conn.QueryRow(ctx, query, id.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}

	return n, nil
}

// List returns notices matching the filter, pinned first, then newest first.
func (r *NoticeRepository) List(ctx context.Context, filter notice.ListFilter) ([]*notice.Notice, error) {
	query := `
		SELECT id, title, body, grade, level, group_level, foreigner_track,
			   pinned, author_id, published_at, created_at, updated_at
		FROM notices
		WHERE ($1 = 0 OR grade = 0 OR grade = $1)
		  AND (NOT $2 OR published_at IS NOT NULL)
		ORDER BY pinned DESC, created_at DESC
		LIMIT $3
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultNoticeLimit
	}

	rows, err := r.conn.Query(ctx, query, int(filter.Grade), filter.PublishedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	defer rows.Close()

	var notices []*notice.Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notice: %w", err)
		}
		notices = append(notices, n)
	}

	return notices, rows.Err()
}

// Delete removes a notice. Deleting a missing notice is not an error.
func (r *NoticeRepository) Delete(ctx context.Context, id notice.NoticeID) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete notice: %w", err)
	}
	return nil
}

func scanNotice(row pgx.Row) (*notice.Notice, error) {
	var (
		n     notice.Notice
		id    string
		grade int
		level string
		group string
	)
	err := row.Scan(&id, &n.Title, &n.Body, &grade, &level, &group,
		&n.Audience.ForeignerTrack, &n.Pinned, &n.AuthorID,
		&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}

	n.ID = notice.NoticeID(id)
	n.Audience.Grade = shared.Grade(grade)
	n.Audience.Level = shared.Level(level)
	n.Audience.GroupLevel = shared.GroupLevel(group)
	return &n, nil
}
