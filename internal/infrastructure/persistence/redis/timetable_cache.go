package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/schedule"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// TIMETABLE CACHE
// ═══════════════════════════════════════════════════════════════════════════

// CacheKey identifies one composed weekly timetable: the viewing scope,
// the week, and the schedule version at composition time. The version is
// baked into the key, so bumping it orphans every stale entry instead of
// requiring explicit deletes.
type CacheKey struct {
	Grade          int
	Level          string
	GroupLevel     string
	ForeignerTrack string // "t", "f", or "" when unset
	WeekStart      time.Time
	SourceVersion  int64
}

// NewCacheKey builds the key for one view scope and week.
func NewCacheKey(view schedule.ViewScope, weekStart time.Time, version int64) CacheKey {
	track := ""
	if view.ForeignerTrack != nil {
		track = "f"
		if *view.ForeignerTrack {
			track = "t"
		}
	}
	return CacheKey{
		Grade:          int(view.Grade),
		Level:          strings.ToLower(view.Level.String()),
		GroupLevel:     strings.ToLower(view.GroupLevel.String()),
		ForeignerTrack: track,
		WeekStart:      timeutil.WeekStart(weekStart),
		SourceVersion:  version,
	}
}

// String renders the Redis key.
func (k CacheKey) String() string {
	return fmt.Sprintf("%sv%d:g%d:l%s:gl%s:ft%s:%s",
		PrefixTimetable,
		k.SourceVersion,
		k.Grade,
		k.Level,
		k.GroupLevel,
		k.ForeignerTrack,
		timeutil.FormatDate(k.WeekStart),
	)
}

// TimetableCache caches composed weekly timetables keyed by scope, week,
// and schedule version.
type TimetableCache struct {
	cache *Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewTimetableCache creates a timetable cache with the default TTL.
func NewTimetableCache(cache *Cache, log *logger.Logger) *TimetableCache {
	if log == nil {
		log = logger.Default()
	}
	return &TimetableCache{
		cache: cache,
		ttl:   TTLTimetable,
		log:   log.With(logger.Component("redis.timetable_cache")),
	}
}

// Version reads the current schedule version counter. A fresh deployment
// with no writes yet reads as version zero.
func (t *TimetableCache) Version(ctx context.Context) (int64, error) {
	return t.cache.GetInt64(ctx, PrefixScheduleVersion)
}

// BumpVersion increments the schedule version, orphaning all cached
// timetables composed under earlier versions.
func (t *TimetableCache) BumpVersion(ctx context.Context) (int64, error) {
	v, err := t.cache.Incr(ctx, PrefixScheduleVersion)
	if err != nil {
		return 0, err
	}
	t.log.Debug("schedule version bumped", logger.Int64("version", v))
	return v, nil
}

// Get returns the cached result for the key, or found=false on a miss.
// Cache errors degrade to a miss: the composition pipeline can always
// recompute.
func (t *TimetableCache) Get(ctx context.Context, key CacheKey) (schedule.Result, bool) {
	var result schedule.Result
	err := t.cache.Get(ctx, key.String(), &result)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			t.log.Warn("timetable cache read failed", logger.Err(err))
		}
		return schedule.Result{}, false
	}
	return result, true
}

// Put stores a composed result. Failures are logged, not returned: caching
// is best effort.
func (t *TimetableCache) Put(ctx context.Context, key CacheKey, result schedule.Result) {
	if err := t.cache.Set(ctx, key.String(), result, t.ttl); err != nil {
		t.log.Warn("timetable cache write failed", logger.Err(err))
	}
}

// Lookup is the view-scoped read used by the timetable query: it derives
// the cache key from the view and week and delegates to Get.
func (t *TimetableCache) Lookup(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64) (schedule.Result, bool) {
	return t.Get(ctx, NewCacheKey(view, weekStart, version))
}

// Store is the view-scoped counterpart of Lookup.
func (t *TimetableCache) Store(ctx context.Context, view schedule.ViewScope, weekStart time.Time, version int64, result schedule.Result) {
	t.Put(ctx, NewCacheKey(view, weekStart, version), result)
}

// Purge drops every cached timetable regardless of version. Used by
// operational tooling; normal invalidation goes through BumpVersion.
func (t *TimetableCache) Purge(ctx context.Context) error {
	return t.cache.DeleteByPattern(ctx, PrefixTimetable+"*")
}
