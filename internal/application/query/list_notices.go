package query

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notice"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST NOTICES QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListNoticesQuery contains the parameters of a notice board listing.
type ListNoticesQuery struct {
	// Grade limits to notices addressed to this grade or to everyone.
	Grade int

	// IncludeDrafts widens the listing to unpublished notices. Only
	// administrative surfaces set this.
	IncludeDrafts bool

	// Limit caps the result size; zero means the repository default.
	Limit int
}

// Validate checks the query parameters.
func (q ListNoticesQuery) Validate() error {
	if q.Grade != 0 {
		if _, err := shared.NewGrade(q.Grade); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return shared.NewDomainError("notice", "list", shared.ErrInvalidInput, "limit cannot be negative")
	}
	return nil
}

// ListNoticesHandler handles ListNoticesQuery.
type ListNoticesHandler struct {
	repo notice.Repository
	log  *logger.Logger
}

// NewListNoticesHandler creates the handler.
func NewListNoticesHandler(repo notice.Repository, log *logger.Logger) *ListNoticesHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ListNoticesHandler{
		repo: repo,
		log:  log.With(logger.Component("query.list_notices")),
	}
}

// Execute returns notices matching the query, pinned first, newest first.
func (h *ListNoticesHandler) Execute(ctx context.Context, q ListNoticesQuery) ([]*notice.Notice, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	grade, _ := shared.NewGrade(q.Grade)
	return h.repo.List(ctx, notice.ListFilter{
		Grade:         grade,
		PublishedOnly: !q.IncludeDrafts,
		Limit:         q.Limit,
	})
}
