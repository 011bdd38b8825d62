// Package notice contains the domain model for administrative announcements.
// Notices complement the composed timetable: schedule changes explain what
// moved, notices explain why, and both reach the same audiences.
package notice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ═══════════════════════════════════════════════════════════════════════════

// NoticeID uniquely identifies a notice.
type NoticeID string

// NewNoticeID generates a fresh notice id.
func NewNoticeID() NoticeID {
	return NoticeID(uuid.New().String())
}

// IsValid reports whether the id is non-empty.
func (id NoticeID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id NoticeID) String() string {
	return string(id)
}

// Audience scopes who a notice is addressed to. Unset fields widen the
// audience; a zero Audience reaches everyone.
type Audience struct {
	Grade          shared.Grade      `json:"grade,omitempty"`
	Level          shared.Level      `json:"level,omitempty"`
	GroupLevel     shared.GroupLevel `json:"group_level,omitempty"`
	ForeignerTrack *bool             `json:"foreigner_track,omitempty"`
}

// IsGlobal reports whether the audience places no restriction at all.
func (a Audience) IsGlobal() bool {
	return !a.Grade.IsSet() && !a.Level.IsSet() && !a.GroupLevel.IsSet() && a.ForeignerTrack == nil
}

// ═══════════════════════════════════════════════════════════════════════════
// NOTICE ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Notice is one administrative announcement.
type Notice struct {
	ID NoticeID `json:"id"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// Audience restricts who sees the notice. Zero means school-wide.
	Audience Audience `json:"audience"`

	// Pinned notices sort above everything else regardless of age.
	Pinned bool `json:"pinned"`

	// AuthorID is the account that created the notice.
	AuthorID string `json:"author_id"`

	// PublishedAt is nil while the notice is a draft.
	PublishedAt *time.Time `json:"published_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNoticeParams carries the inputs for creating a notice.
type NewNoticeParams struct {
	Title    string
	Body     string
	Audience Audience
	Pinned   bool
	AuthorID string
}

// NewNotice creates a draft notice with validation. The id is generated;
// publication is a separate step.
func NewNotice(params NewNoticeParams) (*Notice, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, shared.ErrNoticeEmptyTitle
	}

	now := time.Now().UTC()
	return &Notice{
		ID:        NewNoticeID(),
		Title:     title,
		Body:      strings.TrimSpace(params.Body),
		Audience:  params.Audience,
		Pinned:    params.Pinned,
		AuthorID:  params.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsPublished reports whether the notice is visible to its audience.
func (n *Notice) IsPublished() bool {
	return n.PublishedAt != nil
}

// Publish transitions a draft to published. Publishing twice is an error.
func (n *Notice) Publish() error {
	if n.IsPublished() {
		return shared.ErrNoticePublished
	}
	now := time.Now().UTC()
	n.PublishedAt = &now
	n.UpdatedAt = now
	return nil
}

// Pin marks the notice as pinned.
func (n *Notice) Pin() {
	n.Pinned = true
	n.UpdatedAt = time.Now().UTC()
}

// Unpin clears the pinned flag.
func (n *Notice) Unpin() {
	n.Pinned = false
	n.UpdatedAt = time.Now().UTC()
}

// ═══════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ═══════════════════════════════════════════════════════════════════════════

// ListFilter narrows a notice listing. Zero values relax the corresponding
// restriction.
type ListFilter struct {
	// Grade limits to notices addressed to this grade or to everyone.
	Grade shared.Grade

	// PublishedOnly excludes drafts.
	PublishedOnly bool

	// Limit caps the result size; zero means the repository default.
	Limit int
}

// Repository is the persistence port for notices.
type Repository interface {
	// Save inserts or updates a notice.
	Save(ctx context.Context, notice *Notice) error

	// GetByID returns the notice or shared.ErrNoticeNotFound.
	GetByID(ctx context.Context, id NoticeID) (*Notice, error)

	// List returns notices matching the filter, pinned first, then newest
	// first.
	List(ctx context.Context, filter ListFilter) ([]*Notice, error)

	// Delete removes a notice. Deleting a missing notice is not an error.
	Delete(ctx context.Context, id NoticeID) error
}
