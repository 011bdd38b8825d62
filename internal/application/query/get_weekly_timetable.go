// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET WEEKLY TIMETABLE QUERY
// The central read of the portal: fetch every record class the viewer can
// see, run one composition pass, and return the merged week.
// ══════════════════════════════════════════════════════════════════════════════

// GetWeeklyTimetableQuery contains the parameters of a weekly timetable
// request.
type GetWeeklyTimetableQuery struct {
	// Grade narrows regular classes. Zero relaxes the rule and returns
	// every grade's regulars (staff overview); when a grade is requested,
	// a regular class with no recorded grade stays hidden.
	Grade int

	// Level narrows special lectures ("N2", "TOPIK4", compound labels
	// allowed).
	Level string

	// GroupLevel narrows special lectures by class group.
	GroupLevel string

	// ForeignerTrack narrows special lectures; nil relaxes the rule.
	ForeignerTrack *bool

	// Semester selects the teaching term. Empty defaults to the current
	// semester by wall clock.
	Semester string

	// WeekAnchor is any moment inside the requested week. Zero defaults to
	// now; the handler rolls it back to Monday either way.
	WeekAnchor time.Time
}

// Validate normalizes the query parameters in place.
func (q *GetWeeklyTimetableQuery) Validate() error {
	if q.Grade != 0 {
		if _, err := shared.NewGrade(q.Grade); err != nil {
			return err
		}
	}
	if q.Semester == "" {
		q.Semester = shared.CurrentSemester(timeutil.Now()).String()
	}
	if _, err := shared.NewSemester(q.Semester); err != nil {
		return err
	}
	if q.WeekAnchor.IsZero() {
		q.WeekAnchor = timeutil.Now()
	}
	return nil
}

// ResultCache is the read-through cache port. The implementation keys
// entries by view scope, week, and a global schedule version so writers
// invalidate by bumping the version instead of enumerating keys.
type ResultCache interface {
	Version(ctx context.Context) (int64, error)
	Lookup(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64) (schedule.Result, bool)
	Store(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64, result schedule.Result)
}

// GetWeeklyTimetableHandler handles GetWeeklyTimetableQuery.
type GetWeeklyTimetableHandler struct {
	source schedule.RecordSource
	cache  ResultCache // nil disables caching
	log    *logger.Logger
}

// NewGetWeeklyTimetableHandler creates the handler. cache may be nil.
func NewGetWeeklyTimetableHandler(source schedule.RecordSource, cache ResultCache, log *logger.Logger) *GetWeeklyTimetableHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetWeeklyTimetableHandler{
		source: source,
		cache:  cache,
		log:    log.With(logger.Component("query.weekly_timetable")),
	}
}

// Execute validates the query and composes the requested week.
func (h *GetWeeklyTimetableHandler) Execute(ctx context.Context, q GetWeeklyTimetableQuery) (schedule.Result, error) {
	if err := q.Validate(); err != nil {
		return schedule.Result{}, err
	}

	grade, _ := shared.NewGrade(q.Grade)
	sem, _ := shared.NewSemester(q.Semester)
	weekStart := schedule.WeekStartOf(q.WeekAnchor)

	view := schedule.ViewScope{
		Grade:          grade,
		Level:          shared.NewLevel(q.Level),
		GroupLevel:     shared.GroupLevel(strings.TrimSpace(q.GroupLevel)),
		ForeignerTrack: q.ForeignerTrack,
		Window: schedule.DateWindow{
			From: weekStart,
			To:   weekStart.AddDate(0, 0, 6),
		},
	}

	return h.compose(ctx, view, sem, weekStart)
}

// ComposeWeek composes the week for an already-built view scope. Used by
// the weekly digest job, which iterates grades directly.
func (h *GetWeeklyTimetableHandler) ComposeWeek(ctx context.Context, view schedule.ViewScope, weekStart time.Time) (schedule.Result, error) {
	weekStart = schedule.WeekStartOf(weekStart)
	if view.Window.IsZero() {
		view.Window = schedule.DateWindow{From: weekStart, To: weekStart.AddDate(0, 0, 6)}
	}
	return h.compose(ctx, view, shared.CurrentSemester(weekStart), weekStart)
}

func (h *GetWeeklyTimetableHandler) compose(ctx context.Context, view schedule.ViewScope, sem shared.Semester, weekStart time.Time) (schedule.Result, error) {
	started := timeutil.Now()

	version := h.cacheVersion(ctx)
	if h.cache != nil {
		if result, ok := h.cache.Lookup(ctx, view, weekStart, version); ok {
			h.log.Debug("timetable cache hit",
				logger.WeekStart(weekStart),
				logger.Grade(int(view.Grade)),
			)
			return result, nil
		}
	}

	records, err := h.fetch(ctx, view, sem)
	if err != nil {
		return schedule.Result{}, err
	}

	result := schedule.Compose(records, view, weekStart)

	if h.cache != nil {
		h.cache.Store(ctx, view, weekStart, version, result)
	}

	h.log.Info("weekly timetable composed",
		logger.WeekStart(weekStart),
		logger.Grade(int(view.Grade)),
		logger.Int("entries", len(result.Entries)),
		logger.WarningCount(len(result.Warnings)),
		logger.Latency(timeutil.Now().Sub(started)),
	)
	return result, nil
}

// fetch runs the four record queries concurrently. Queries are independent
// by contract; the first error cancels the rest.
func (h *GetWeeklyTimetableHandler) fetch(ctx context.Context, view schedule.ViewScope, sem shared.Semester) ([]schedule.RawRecord, error) {
	var (
		regulars, specials []schedule.RawRecord
		events, holidays   []schedule.RawRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regulars, err = h.source.RegularClasses(gctx, view.Grade, sem)
		return err
	})
	g.Go(func() error {
		var err error
		specials, err = h.source.SpecialLectures(gctx, view.Level, view.GroupLevel, sem, view.Window)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = h.source.PunctualEvents(gctx, view.Window)
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = h.source.Holidays(gctx, view.Window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, shared.WrapError("schedule", "fetch_records", shared.ErrExternalService, "record source query failed", err)
	}

	records := make([]schedule.RawRecord, 0, len(regulars)+len(specials)+len(events)+len(holidays))
	records = append(records, regulars...)
	records = append(records, specials...)
	records = append(records, events...)
	records = append(records, holidays...)
	return records, nil
}

func (h *GetWeeklyTimetableHandler) cacheVersion(ctx context.Context) int64 {
	if h.cache == nil {
		return 0
	}
	v, err := h.cache.Version(ctx)
	if err != nil {
		// A broken counter degrades to version -1: lookups under it miss,
		// and the store is overwritten once the counter is readable again.
		h.log.Warn("schedule version read failed", logger.Err(err))
		return -1
	}
	return v
}
