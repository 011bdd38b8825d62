package schedule

import (
	"context"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the record-source contract the engine consumes.
// Implementations live in infrastructure/persistence; the normalizer is the
// sole adapter boundary, so everything here speaks RawRecord.
// ══════════════════════════════════════════════════════════════════════════════

// RecordSource provides the four independent read queries the composition
// pipeline fetches before one compose pass. The queries are independent and
// safe to run concurrently.
type RecordSource interface {
	// RegularClasses returns the recurring weekly classes for a grade and
	// semester. GradeNone returns classes of every grade.
	RegularClasses(ctx context.Context, grade shared.Grade, semester shared.Semester) ([]RawRecord, error)

	// SpecialLectures returns the recurring proficiency-level lectures for
	// a semester, optionally narrowed by level and group.
	SpecialLectures(ctx context.Context, level shared.Level, group shared.GroupLevel, semester shared.Semester, window DateWindow) ([]RawRecord, error)

	// PunctualEvents returns the dated cancel/makeup/event rows inside the
	// window.
	PunctualEvents(ctx context.Context, window DateWindow) ([]RawRecord, error)

	// Holidays returns the holiday rows inside the window.
	Holidays(ctx context.Context, window DateWindow) ([]RawRecord, error)
}

// ChangeStore persists schedule mutations: new cancellations, makeups, and
// one-off events entered by administrators. Reads go through RecordSource.
type ChangeStore interface {
	// InsertEvent stores a punctual event row. The record's EventType must
	// be one of "cancel", "makeup", or "event".
	InsertEvent(ctx context.Context, rec RawRecord) error

	// InsertSpecialLecture stores a new recurring special lecture.
	InsertSpecialLecture(ctx context.Context, rec RawRecord) error
}
