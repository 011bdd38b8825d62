package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// SCHEDULE REPOSITORY IMPLEMENTATION
// ═══════════════════════════════════════════════════════════════════════════

// ScheduleRepository implements schedule.RecordSource and
// schedule.ChangeStore for PostgreSQL. Each read query maps one legacy
// table onto RawRecord; the normalizer downstream untangles kinds, so the
// queries stay dumb row copies.
type ScheduleRepository struct {
	conn *Connection
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(conn *Connection) *ScheduleRepository {
	return &ScheduleRepository{conn: conn}
}

var _ schedule.RecordSource = (*ScheduleRepository)(nil)
var _ schedule.ChangeStore = (*ScheduleRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Record source reads
// ─────────────────────────────────────────────────────────────────────────────

// RegularClasses returns the recurring weekly classes for a grade and
// semester. GradeNone returns every grade's classes.
func (r *ScheduleRepository) RegularClasses(ctx context.Context, grade shared.Grade, semester shared.Semester) ([]schedule.RawRecord, error) {
	query := `
		SELECT id, subject, grade, weekday, start_period, end_period,
			   foreigner_track, semester
		FROM regular_classes
		WHERE semester = $1
		  AND ($2 = 0 OR grade = $2)
		ORDER BY weekday, start_period, id
	`

	rows, err := r.conn.Query(ctx, query, semester.String(), int(grade))
	if err != nil {
		return nil, fmt.Errorf("failed to query regular classes: %w", err)
	}
	defer rows.Close()

	var records []schedule.RawRecord
	for rows.Next() {
		var (
			rec     schedule.RawRecord
			weekday int
			track   *bool
		)
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Grade, &weekday,
			&rec.StartPeriod, &rec.EndPeriod, &track, &rec.Semester); err != nil {
			return nil, fmt.Errorf("failed to scan regular class: %w", err)
		}
		rec.Weekday = &weekday
		rec.ForeignerTrack = track
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SpecialLectures returns the recurring proficiency-level lectures,
// optionally narrowed by level and group. Level narrowing happens in the
// scope filter, not in SQL: labels are free-form and compound, so the
// query only excludes rows whose semester does not match.
func (r *ScheduleRepository) SpecialLectures(ctx context.Context, level shared.Level, group shared.GroupLevel, semester shared.Semester, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	query := `
		SELECT id, subject, level, group_level, weekday, start_period,
			   end_period, foreigner_track, semester
		FROM special_lectures
		WHERE semester = $1
		ORDER BY weekday, start_period, id
	`

	rows, err := r.conn.Query(ctx, query, semester.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query special lectures: %w", err)
	}
	defer rows.Close()

	var records []schedule.RawRecord
	for rows.Next() {
		var (
			rec     schedule.RawRecord
			weekday int
			track   *bool
		)
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Level, &rec.GroupLevel,
			&weekday, &rec.StartPeriod, &rec.EndPeriod, &track, &rec.Semester); err != nil {
			return nil, fmt.Errorf("failed to scan special lecture: %w", err)
		}
		rec.Kind = string(schedule.KindSpecial)
		rec.Weekday = &weekday
		rec.ForeignerTrack = track
		records = append(records, rec)
	}

	return records, rows.Err()
}

// PunctualEvents returns the dated cancel/makeup/event rows inside the
// window.
func (r *ScheduleRepository) PunctualEvents(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	query := `
		SELECT id, event_type, subject, grade, date, start_period, end_period,
			   regular_class_id
		FROM schedule_events
		WHERE date >= $1 AND date <= $2
		ORDER BY date, start_period, id
	`

	from, to := windowBounds(window)
	rows, err := r.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule events: %w", err)
	}
	defer rows.Close()

	var records []schedule.RawRecord
	for rows.Next() {
		var (
			rec    schedule.RawRecord
			date   time.Time
			linked *string
		)
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Subject, &rec.Grade,
			&date, &rec.StartPeriod, &rec.EndPeriod, &linked); err != nil {
			return nil, fmt.Errorf("failed to scan schedule event: %w", err)
		}
		rec.Date = timeutil.FormatDate(date)
		if linked != nil {
			rec.LinkedRegularID = *linked
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Holidays returns the holiday rows inside the window.
func (r *ScheduleRepository) Holidays(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	query := `
		SELECT id, name, date
		FROM holidays
		WHERE date >= $1 AND date <= $2
		ORDER BY date, id
	`

	from, to := windowBounds(window)
	rows, err := r.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var records []schedule.RawRecord
	for rows.Next() {
		var (
			rec  schedule.RawRecord
			date time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Subject, &date); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		rec.IsHoliday = true
		rec.Date = timeutil.FormatDate(date)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Change writes
// ─────────────────────────────────────────────────────────────────────────────

// InsertEvent stores a punctual event row.
func (r *ScheduleRepository) InsertEvent(ctx context.Context, rec schedule.RawRecord) error {
	query := `
		INSERT INTO schedule_events (
			id, event_type, subject, grade, date, start_period, end_period,
			regular_class_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	date, err := timeutil.ParseDate(rec.Date)
	if err != nil {
		return fmt.Errorf("invalid event date: %w", err)
	}

	var linked *string
	if rec.LinkedRegularID != "" {
		linked = &rec.LinkedRegularID
	}

	_, err = r.conn.Exec(ctx, query,
		rec.ID,
		rec.EventType,
		rec.Subject,
		rec.Grade,
		date,
		rec.StartPeriod,
		rec.EndPeriod,
		linked,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("schedule", "InsertEvent", shared.ErrAlreadyExists,
				"event already recorded", err)
		}
		return fmt.Errorf("failed to insert schedule event: %w", err)
	}

	return nil
}

// InsertSpecialLecture stores a new recurring special lecture.
func (r *ScheduleRepository) InsertSpecialLecture(ctx context.Context, rec schedule.RawRecord) error {
	query := `
		INSERT INTO special_lectures (
			id, subject, level, group_level, weekday, start_period, end_period,
			foreigner_track, semester, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	if rec.Weekday == nil {
		return shared.NewDomainError("schedule", "InsertSpecialLecture", shared.ErrInvalidInput,
			"special lecture requires a weekday")
	}

	_, err := r.conn.Exec(ctx, query,
		rec.ID,
		rec.Subject,
		rec.Level,
		rec.GroupLevel,
		*rec.Weekday,
		rec.StartPeriod,
		rec.EndPeriod,
		rec.ForeignerTrack,
		rec.Semester,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("schedule", "InsertSpecialLecture", shared.ErrAlreadyExists,
				"special lecture already recorded", err)
		}
		return fmt.Errorf("failed to insert special lecture: %w", err)
	}

	return nil
}

// windowBounds maps a DateWindow onto inclusive SQL bounds, substituting
// wide defaults for unbounded sides.
func windowBounds(window schedule.DateWindow) (from, to time.Time) {
	from = window.From
	to = window.To
	if from.IsZero() {
		from = timeutil.Date(2000, 1, 1)
	}
	if to.IsZero() {
		to = timeutil.Date(2100, 1, 1)
	}
	return timeutil.StartOfDay(from), timeutil.StartOfDay(to)
}
