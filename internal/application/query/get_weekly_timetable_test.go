package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type stubSource struct {
	mu       sync.Mutex
	calls    int
	regulars []schedule.RawRecord
	specials []schedule.RawRecord
	events   []schedule.RawRecord
	holidays []schedule.RawRecord
	err      error
}

func (s *stubSource) bump() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *stubSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubSource) RegularClasses(ctx context.Context, grade shared.Grade, semester shared.Semester) ([]schedule.RawRecord, error) {
	return s.regulars, s.bump()
}

func (s *stubSource) SpecialLectures(ctx context.Context, level shared.Level, group shared.GroupLevel, semester shared.Semester, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return s.specials, s.bump()
}

func (s *stubSource) PunctualEvents(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return s.events, s.bump()
}

func (s *stubSource) Holidays(ctx context.Context, window schedule.DateWindow) ([]schedule.RawRecord, error) {
	return s.holidays, s.bump()
}

type memCache struct {
	mu      sync.Mutex
	version int64
	store   map[string]schedule.Result
}

func newMemCache() *memCache {
	return &memCache{store: make(map[string]schedule.Result)}
}

func (c *memCache) key(view schedule.ViewScope, weekStart time.Time, version int64) string {
	return fmt.Sprintf("%d|%d|%s|%s", version, view.Grade, view.Level, weekStart.Format("2006-01-02"))
}

func (c *memCache) Version(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *memCache) Lookup(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64) (schedule.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.store[c.key(view, weekStart, version)]
	return r, ok
}

func (c *memCache) Store(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64, result schedule.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[c.key(view, weekStart, version)] = result
}

func intPtr(v int) *int { return &v }

// wednesday inside the week starting Monday 2024-06-03.
var anchor = timeutil.Date(2024, time.June, 5)

func regularMonday() schedule.RawRecord {
	return schedule.RawRecord{
		ID:          "reg-1",
		Kind:        "regular",
		Subject:     "Japanese Grammar",
		Grade:       2,
		Semester:    "2024-summer",
		Weekday:     intPtr(1),
		StartPeriod: 1,
		EndPeriod:   2,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestGetWeeklyTimetable_ComposesWeek(t *testing.T) {
	source := &stubSource{
		regulars: []schedule.RawRecord{regularMonday()},
		events: []schedule.RawRecord{{
			ID:              "cx-1",
			EventType:       "cancel",
			Subject:         "Japanese Grammar",
			Grade:           2,
			Date:            "2024-06-03",
			StartPeriod:     1,
			EndPeriod:       2,
			LinkedRegularID: "reg-1",
		}},
	}
	handler := NewGetWeeklyTimetableHandler(source, nil, nil)

	result, err := handler.Execute(context.Background(), GetWeeklyTimetableQuery{
		Grade:      2,
		Semester:   "2024-summer",
		WeekAnchor: anchor,
	})
	require.NoError(t, err)

	assert.Equal(t, timeutil.Date(2024, time.June, 3), result.WeekStart)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "cx-1", result.Entries[0].Occurrence.ID)
	assert.Equal(t, "reg-1", result.Entries[1].Occurrence.ID)
	assert.True(t, result.Entries[1].SuppressedByCancel)
	assert.Equal(t, 4, source.fetchCount())
}

func TestGetWeeklyTimetable_NoGradeSeesEveryRegular(t *testing.T) {
	source := &stubSource{regulars: []schedule.RawRecord{regularMonday()}}
	handler := NewGetWeeklyTimetableHandler(source, nil, nil)

	result, err := handler.Execute(context.Background(), GetWeeklyTimetableQuery{
		Semester:   "2024-summer",
		WeekAnchor: anchor,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "reg-1", result.Entries[0].Occurrence.ID)
}

func TestGetWeeklyTimetable_UngradedRegularHiddenFromGradeView(t *testing.T) {
	ungraded := regularMonday()
	ungraded.Grade = 0
	source := &stubSource{regulars: []schedule.RawRecord{ungraded}}
	handler := NewGetWeeklyTimetableHandler(source, nil, nil)

	result, err := handler.Execute(context.Background(), GetWeeklyTimetableQuery{
		Grade:      2,
		Semester:   "2024-summer",
		WeekAnchor: anchor,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
}

func TestGetWeeklyTimetable_InvalidGrade(t *testing.T) {
	handler := NewGetWeeklyTimetableHandler(&stubSource{}, nil, nil)

	_, err := handler.Execute(context.Background(), GetWeeklyTimetableQuery{Grade: 9})
	assert.Error(t, err)
}

func TestGetWeeklyTimetable_SourceErrorPropagates(t *testing.T) {
	source := &stubSource{err: fmt.Errorf("connection refused")}
	handler := NewGetWeeklyTimetableHandler(source, nil, nil)

	_, err := handler.Execute(context.Background(), GetWeeklyTimetableQuery{
		Grade:      2,
		Semester:   "2024-summer",
		WeekAnchor: anchor,
	})
	require.Error(t, err)
	assert.True(t, shared.IsExternalService(err))
}

func TestGetWeeklyTimetable_CacheHitSkipsSource(t *testing.T) {
	source := &stubSource{regulars: []schedule.RawRecord{regularMonday()}}
	cache := newMemCache()
	handler := NewGetWeeklyTimetableHandler(source, cache, nil)

	q := GetWeeklyTimetableQuery{Grade: 2, Semester: "2024-summer", WeekAnchor: anchor}

	first, err := handler.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 4, source.fetchCount())

	second, err := handler.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 4, source.fetchCount(), "second read must come from cache")
	assert.Equal(t, first, second)
}

func TestGetWeeklyTimetable_VersionBumpInvalidates(t *testing.T) {
	source := &stubSource{regulars: []schedule.RawRecord{regularMonday()}}
	cache := newMemCache()
	handler := NewGetWeeklyTimetableHandler(source, cache, nil)

	q := GetWeeklyTimetableQuery{Grade: 2, Semester: "2024-summer", WeekAnchor: anchor}

	_, err := handler.Execute(context.Background(), q)
	require.NoError(t, err)

	cache.mu.Lock()
	cache.version++
	cache.mu.Unlock()

	_, err = handler.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 8, source.fetchCount(), "bumped version must force a recompose")
}

func TestComposeWeek_NormalizesAnchorAndWindow(t *testing.T) {
	source := &stubSource{regulars: []schedule.RawRecord{regularMonday()}}
	handler := NewGetWeeklyTimetableHandler(source, nil, nil)

	view := schedule.ViewScope{Grade: 2}
	result, err := handler.ComposeWeek(context.Background(), view, anchor)
	require.NoError(t, err)

	assert.Equal(t, timeutil.Date(2024, time.June, 3), result.WeekStart)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, timeutil.Date(2024, time.June, 3), result.Entries[0].Date)
}
