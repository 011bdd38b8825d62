package schedule

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// RAW RECORDS
// ═══════════════════════════════════════════════════════════════════════════

// RawRecord is the loosest common denominator of what the record sources
// return. The stores kept kind information in scattered boolean flags and
// overloaded string fields for years; the normalizer is the single place
// that untangles them into one explicit Kind.
type RawRecord struct {
	// ID is the source row id. May be empty for rows synthesized by joins;
	// the normalizer derives a deterministic id in that case.
	ID string

	// Kind is an explicit discriminator when the source has one
	// ("regular", "special", ...). Preferred over every other signal.
	Kind string

	// EventType carries "cancel", "makeup", or "event" on punctual event
	// rows that have no Kind column.
	EventType string

	// Legacy boolean flags, checked in a fixed order when neither Kind nor
	// EventType decides.
	IsHoliday   bool
	IsCancelled bool
	IsMakeup    bool
	IsSpecial   bool

	Subject string

	// Scope fields. Zero values mean "not recorded".
	Grade          int
	Level          string
	GroupLevel     string
	ForeignerTrack *bool
	Semester       string

	// Exactly one of Weekday/Date is expected per record. Weekday follows
	// the Sunday=0 convention; Date is "2006-01-02" school-local.
	Weekday *int
	Date    string

	StartPeriod int
	EndPeriod   int

	LinkedRegularID string
}

// anchor renders the record's date or weekday for id derivation and
// diagnostics.
func (r RawRecord) anchor() string {
	if r.Date != "" {
		return r.Date
	}
	if r.Weekday != nil {
		return fmt.Sprintf("wd%d", *r.Weekday)
	}
	return "?"
}

// ═══════════════════════════════════════════════════════════════════════════
// NORMALIZER
// ═══════════════════════════════════════════════════════════════════════════

// Normalize converts raw records into canonical Occurrences. Records whose
// kind cannot be determined, or whose period range is invalid, are dropped
// and reported as normalization warnings; nothing here is fatal. The
// function is pure and idempotent: the same input always yields the same
// occurrences, ids included.
func Normalize(records []RawRecord) ([]Occurrence, []Warning) {
	occurrences := make([]Occurrence, 0, len(records))
	var warnings []Warning

	for _, rec := range records {
		occ, warn, ok := normalizeOne(rec)
		if !ok {
			warnings = append(warnings, warn)
			continue
		}
		occurrences = append(occurrences, occ)
	}

	return occurrences, warnings
}

func normalizeOne(rec RawRecord) (Occurrence, Warning, bool) {
	kind, ok := inferKind(rec)
	if !ok {
		return Occurrence{}, normalizationWarning(rec.ID, "record kind could not be determined"), false
	}

	recurrence, reason := resolveRecurrence(rec, kind)
	if reason != "" {
		return Occurrence{}, normalizationWarning(rec.ID, reason), false
	}

	periods, reason := resolvePeriods(rec, kind)
	if reason != "" {
		return Occurrence{}, normalizationWarning(rec.ID, reason), false
	}

	occ := Occurrence{
		ID:              deriveID(rec, kind),
		Kind:            kind,
		Subject:         strings.TrimSpace(rec.Subject),
		Scope:           resolveScope(rec),
		Recurrence:      recurrence,
		Periods:         periods,
		LinkedRegularID: rec.LinkedRegularID,
	}
	return occ, Warning{}, true
}

// inferKind determines the occurrence kind. Precedence: explicit Kind
// column, then EventType, then the legacy boolean flags, then "weekly row
// with a weekday must be a regular class".
func inferKind(rec RawRecord) (Kind, bool) {
	if k := Kind(strings.ToLower(strings.TrimSpace(rec.Kind))); k.IsValid() {
		return k, true
	}

	switch strings.ToLower(strings.TrimSpace(rec.EventType)) {
	case "cancel", "cancellation":
		return KindCancel, true
	case "makeup", "make-up":
		return KindMakeup, true
	case "event":
		return KindEvent, true
	}

	switch {
	case rec.IsHoliday:
		return KindHoliday, true
	case rec.IsCancelled:
		return KindCancel, true
	case rec.IsMakeup:
		return KindMakeup, true
	case rec.IsSpecial:
		return KindSpecial, true
	}

	if rec.Weekday != nil {
		return KindRegular, true
	}

	return "", false
}

func resolveRecurrence(rec RawRecord, kind Kind) (Recurrence, string) {
	if kind.Recurs() {
		if rec.Weekday == nil {
			return Recurrence{}, "weekly record has no weekday"
		}
		weekday, err := shared.NewWeekday(*rec.Weekday)
		if err != nil {
			return Recurrence{}, fmt.Sprintf("invalid weekday %d", *rec.Weekday)
		}
		return WeeklyOn(weekday), ""
	}

	if rec.Date == "" {
		return Recurrence{}, "dated record has no date"
	}
	date, err := timeutil.ParseDate(rec.Date)
	if err != nil {
		return Recurrence{}, fmt.Sprintf("invalid date %q", rec.Date)
	}
	return On(date), ""
}

func resolvePeriods(rec RawRecord, kind Kind) (shared.PeriodRange, string) {
	// Holidays block the whole teaching day; most holiday rows carry no
	// periods at all.
	if kind == KindHoliday && rec.StartPeriod == 0 && rec.EndPeriod == 0 {
		return shared.FullDayRange(), ""
	}

	periods, err := shared.NewPeriodRange(rec.StartPeriod, rec.EndPeriod)
	if err != nil {
		return shared.PeriodRange{}, fmt.Sprintf("invalid period range %d-%d", rec.StartPeriod, rec.EndPeriod)
	}
	return periods, ""
}

func resolveScope(rec RawRecord) Scope {
	// An out-of-range grade is treated as "not recorded" rather than
	// dropping the record; grade-based scoping fails closed downstream.
	grade, err := shared.NewGrade(rec.Grade)
	if err != nil {
		grade = shared.GradeNone
	}

	semester, err := shared.NewSemester(rec.Semester)
	if err != nil {
		semester = ""
	}

	return Scope{
		Grade:          grade,
		Level:          shared.NewLevel(rec.Level),
		GroupLevel:     shared.GroupLevel(strings.TrimSpace(rec.GroupLevel)),
		ForeignerTrack: rec.ForeignerTrack,
		Semester:       semester,
	}
}

// deriveID returns the occurrence id. Source ids are kept as-is. When the
// source supplies none, the id is a digest of (kind, anchor, periods,
// subject) so that normalizing the same input twice yields the same id -
// never random.
func deriveID(rec RawRecord, kind Kind) string {
	if rec.ID != "" {
		return rec.ID
	}

	key := strings.Join([]string{
		string(kind),
		rec.anchor(),
		fmt.Sprintf("%d-%d", rec.StartPeriod, rec.EndPeriod),
		strings.ToLower(strings.TrimSpace(rec.Subject)),
	}, "|")

	sum := blake2b.Sum256([]byte(key))
	return string(kind) + "-" + hex.EncodeToString(sum[:8])
}
