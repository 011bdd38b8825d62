// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT SCHEDULE CHANGE COMMAND
// Records an administrative schedule mutation: a cancellation, a makeup
// session, a one-off event, or a new recurring special lecture. The record
// goes through the same normalization as reads, so anything the composer
// would reject is rejected here before it is stored.
// ══════════════════════════════════════════════════════════════════════════════

// ChangeType discriminates what kind of schedule change is reported.
type ChangeType string

const (
	ChangeCancel  ChangeType = "cancel"
	ChangeMakeup  ChangeType = "makeup"
	ChangeEvent   ChangeType = "event"
	ChangeSpecial ChangeType = "special"
)

// ReportScheduleChangeCommand contains the data of one schedule change.
type ReportScheduleChangeCommand struct {
	Type ChangeType

	Subject string

	// Date anchors punctual changes, "2006-01-02" school-local. Required
	// for cancel/makeup/event.
	Date string

	// Weekday anchors recurring special lectures, Sunday=0. Required for
	// special.
	Weekday *int

	StartPeriod int
	EndPeriod   int

	// Scope fields. Zero values mean "not recorded".
	Grade          int
	Level          string
	GroupLevel     string
	ForeignerTrack *bool
	Semester       string

	// LinkedRegularID ties a cancel/makeup to the regular class it amends.
	// Optional: the resolver falls back to a subject heuristic.
	LinkedRegularID string
}

// Validate checks the shape of the command. Content validation (periods,
// dates, grades) happens in normalization.
func (c ReportScheduleChangeCommand) Validate() error {
	switch c.Type {
	case ChangeCancel, ChangeMakeup, ChangeEvent:
		if c.Date == "" {
			return shared.NewDomainError("schedule", "report_change", shared.ErrInvalidInput,
				"date is required for punctual changes")
		}
	case ChangeSpecial:
		if c.Weekday == nil {
			return shared.NewDomainError("schedule", "report_change", shared.ErrInvalidInput,
				"weekday is required for special lectures")
		}
	default:
		return shared.NewDomainError("schedule", "report_change", shared.ErrInvalidInput,
			"unknown change type: "+string(c.Type))
	}
	return nil
}

// rawRecord maps the command onto the record shape the stores persist.
func (c ReportScheduleChangeCommand) rawRecord() schedule.RawRecord {
	rec := schedule.RawRecord{
		Subject:         c.Subject,
		Grade:           c.Grade,
		Level:           c.Level,
		GroupLevel:      c.GroupLevel,
		ForeignerTrack:  c.ForeignerTrack,
		Semester:        c.Semester,
		Date:            c.Date,
		Weekday:         c.Weekday,
		StartPeriod:     c.StartPeriod,
		EndPeriod:       c.EndPeriod,
		LinkedRegularID: c.LinkedRegularID,
	}
	if c.Type == ChangeSpecial {
		rec.Kind = string(schedule.KindSpecial)
	} else {
		rec.EventType = string(c.Type)
	}
	return rec
}

// ReportScheduleChangeResult is what the handler returns on success.
type ReportScheduleChangeResult struct {
	// OccurrenceID is the stored occurrence's deterministic id.
	OccurrenceID string

	Kind schedule.Kind
}

// VersionBumper invalidates cached timetables after a successful write.
type VersionBumper interface {
	BumpVersion(ctx context.Context) (int64, error)
}

// ReportScheduleChangeHandler handles ReportScheduleChangeCommand.
type ReportScheduleChangeHandler struct {
	store     schedule.ChangeStore
	cache     VersionBumper // nil disables invalidation
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewReportScheduleChangeHandler creates the handler. cache and publisher
// may be nil.
func NewReportScheduleChangeHandler(store schedule.ChangeStore, cache VersionBumper, publisher shared.EventPublisher, log *logger.Logger) *ReportScheduleChangeHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ReportScheduleChangeHandler{
		store:     store,
		cache:     cache,
		publisher: publisher,
		log:       log.With(logger.Component("command.report_schedule_change")),
	}
}

// Execute validates, persists, invalidates, and announces the change. The
// write is the only fatal step: a failed invalidation or event publish is
// logged and the change still stands.
func (h *ReportScheduleChangeHandler) Execute(ctx context.Context, cmd ReportScheduleChangeCommand) (ReportScheduleChangeResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReportScheduleChangeResult{}, err
	}

	rec := cmd.rawRecord()
	occs, warns := schedule.Normalize([]schedule.RawRecord{rec})
	if len(occs) == 0 {
		reason := "record rejected by normalization"
		if len(warns) > 0 {
			reason = warns[0].Reason
		}
		return ReportScheduleChangeResult{}, shared.NewDomainError("schedule", "report_change",
			shared.ErrValidation, reason)
	}
	occ := occs[0]
	rec.ID = occ.ID

	var err error
	if occ.Kind == schedule.KindSpecial {
		err = h.store.InsertSpecialLecture(ctx, rec)
	} else {
		err = h.store.InsertEvent(ctx, rec)
	}
	if err != nil {
		return ReportScheduleChangeResult{}, err
	}

	if h.cache != nil {
		if _, err := h.cache.BumpVersion(ctx); err != nil {
			// Stale caches age out by TTL; the write itself is fine.
			h.log.Warn("cache invalidation failed", logger.Err(err))
		}
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, schedule.NewChangedEvent(occ)); err != nil {
			h.log.Warn("schedule.changed publish failed", logger.Err(err))
		}
	}

	h.log.Info("schedule change recorded",
		logger.OccurrenceID(occ.ID),
		logger.OccurrenceKind(occ.Kind.String()),
		logger.String("subject", occ.Subject),
	)
	return ReportScheduleChangeResult{OccurrenceID: occ.ID, Kind: occ.Kind}, nil
}
