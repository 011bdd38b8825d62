// Package jobs contains the scheduled jobs of the school portal.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// WEEKLY DIGEST JOB
// ═══════════════════════════════════════════════════════════════════════════

// TimetableComposer composes the weekly agenda for a view scope. Satisfied
// by the weekly timetable query use case.
type TimetableComposer interface {
	ComposeWeek(ctx context.Context, view schedule.ViewScope, weekStart time.Time) (schedule.Result, error)
}

// DigestDispatcher fans a digest message out to an audience. Satisfied by
// the notification dispatcher.
type DigestDispatcher interface {
	Dispatch(ctx context.Context, typ notification.Type, audience notification.Audience, title, message string) (notification.Report, error)
}

// WeeklyDigestJob composes the coming week's agenda per grade each Sunday
// evening and sends it to that grade's recipients. Students walk into
// Monday knowing about every cancellation and makeup already recorded.
type WeeklyDigestJob struct {
	composer   TimetableComposer
	dispatcher DigestDispatcher
	log        *logger.Logger

	// now is injected for tests; defaults to school-local time.
	now func() time.Time
}

// NewWeeklyDigestJob wires the job.
func NewWeeklyDigestJob(composer TimetableComposer, dispatcher DigestDispatcher, log *logger.Logger) *WeeklyDigestJob {
	if log == nil {
		log = logger.Default()
	}
	return &WeeklyDigestJob{
		composer:   composer,
		dispatcher: dispatcher,
		log:        log.With(logger.Component("jobs.weekly_digest")),
		now:        timeutil.Now,
	}
}

// Name returns the unique name of the job.
func (j *WeeklyDigestJob) Name() string {
	return "weekly_digest"
}

// Description returns a human-readable description of the job.
func (j *WeeklyDigestJob) Description() string {
	return "composes next week's agenda per grade and sends it to students"
}

// Run executes one digest round. A failing grade does not block the other
// grades; the first error is reported after all grades were attempted.
func (j *WeeklyDigestJob) Run(ctx context.Context) error {
	weekStart := timeutil.NextWeekStart(j.now())

	var firstErr error
	for grade := shared.Grade(1); grade <= shared.Grade(3); grade++ {
		if err := j.sendForGrade(ctx, grade, weekStart); err != nil {
			j.log.Error("digest failed for grade",
				logger.Grade(int(grade)),
				logger.WeekStart(weekStart),
				logger.Err(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (j *WeeklyDigestJob) sendForGrade(ctx context.Context, grade shared.Grade, weekStart time.Time) error {
	view := schedule.ViewScope{Grade: grade}

	result, err := j.composer.ComposeWeek(ctx, view, weekStart)
	if err != nil {
		return fmt.Errorf("compose week for grade %d: %w", int(grade), err)
	}

	title, message := notification.WeeklyDigestMessage(result)
	report, err := j.dispatcher.Dispatch(ctx, notification.TypeWeeklyDigest,
		notification.Audience{Grade: grade}, title, message)
	if err != nil {
		return fmt.Errorf("dispatch digest for grade %d: %w", int(grade), err)
	}

	j.log.Info("digest sent",
		logger.Grade(int(grade)),
		logger.WeekStart(weekStart),
		logger.RecipientCount(report.Matched),
		logger.Int("sent", report.Sent),
		logger.Int("failed", report.Failed))
	return nil
}
