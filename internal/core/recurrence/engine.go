// Package recurrence parses human-readable recurrence expressions and
// computes their occurrences in a given timezone.
package recurrence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/example/nextaction/internal/core/zone"
)

// EngineConfig holds the bounds and cache settings of an Engine.
type EngineConfig struct {
	CacheEnabled bool
	CacheConfig  CacheConfig

	// Horizon is how far past the anchor occurrences are searched. A schedule
	// with nothing inside the horizon has no next occurrence.
	Horizon time.Duration
	// MaxCandidates caps rrule candidates examined per query.
	MaxCandidates int
	// MaxCount caps the number of occurrences one query returns.
	MaxCount int
}

// DefaultEngineConfig is used by the application.
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:  true,
	CacheConfig:   DefaultCacheConfig,
	Horizon:       30 * 366 * 24 * time.Hour,
	MaxCandidates: 2_000_000,
	MaxCount:      1000,
}

// Engine parses recurrence expressions and evaluates schedules. It holds no
// mutable state other than its parse cache, so one Engine serves every
// request concurrently.
type Engine struct {
	config EngineConfig
	cache  *ScheduleCache
	logger *slog.Logger
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.Horizon <= 0 {
		config.Horizon = DefaultEngineConfig.Horizon
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = DefaultEngineConfig.MaxCandidates
	}
	if config.MaxCount <= 0 {
		config.MaxCount = DefaultEngineConfig.MaxCount
	}

	var cache *ScheduleCache
	if config.CacheEnabled {
		cache = NewScheduleCache(config.CacheConfig)
	}
	return &Engine{
		config: config,
		cache:  cache,
		logger: slog.Default().With("component", "recurrence"),
	}
}

// WithLogger returns the engine with its logger replaced.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger.With("component", "recurrence")
	return e
}

// Parse returns the Schedule for expression, from cache when possible.
func (e *Engine) Parse(expression string) (*Schedule, error) {
	key := normalize(expression)
	if e.cache != nil {
		if s, ok := e.cache.Get(key); ok {
			return s, nil
		}
	}

	s, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	if s.Never() {
		e.logger.Debug("schedule has no occurrences", "expression", key)
	}
	if e.cache != nil {
		e.cache.Set(key, s)
	}
	return s, nil
}

// CacheStats reports parse cache usage. Zero when caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Next returns up to count occurrences at or after anchor, ascending and
// without duplicates. The anchor's location is the evaluation timezone and
// every returned instant is in that location. An empty result means the
// schedule has no further occurrence within the horizon.
func (e *Engine) Next(s *Schedule, count int, anchor time.Time) []time.Time {
	return e.scan(s, count, anchor, true)
}

// NextAfter is Next excluding the anchor itself. Completion uses it so a
// recurring chain always moves forward.
func (e *Engine) NextAfter(s *Schedule, count int, anchor time.Time) []time.Time {
	return e.scan(s, count, anchor, false)
}

// IsOccurrence reports whether t, compared at minute granularity in its own
// location, is an instant the schedule generates.
func (e *Engine) IsOccurrence(s *Schedule, t time.Time) bool {
	if s == nil || s.never {
		return false
	}
	t = t.Truncate(time.Minute)

	// A wall time skipped by a gap resolves forward, possibly onto the next
	// calendar day, so the rule's day may be the one before t's.
	day := floating(t)
	if !s.matchDay(day) && !s.matchDay(day.AddDate(0, 0, -1)) {
		return false
	}
	first := e.scan(s, 1, t, true)
	return len(first) == 1 && first[0].Equal(t)
}

// floating carries t's wall clock into UTC so calendar arithmetic ignores
// the offsets of t's zone.
func floating(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// scan expands the rules over wall-clock time and resolves each candidate in
// the anchor's location with zone.WallClock. Day filters see the rule's own
// calendar date, never the resolved instant, so a skipped midnight still
// counts as its day.
func (e *Engine) scan(s *Schedule, count int, anchor time.Time, inclusive bool) []time.Time {
	if s == nil || s.never || count <= 0 {
		return nil
	}
	if count > e.config.MaxCount {
		count = e.config.MaxCount
	}

	loc := anchor.Location()
	wall := floating(anchor)
	// Start a day early: a late wall time inside a gap can resolve onto the
	// anchor's day.
	dtstart := time.Date(wall.Year(), wall.Month(), wall.Day()-1, 0, 0, 0, 0, time.UTC)
	limit := anchor.Add(e.config.Horizon)
	wallLimit := floating(limit.In(loc)).Add(24 * time.Hour)

	set, err := s.ruleSet(dtstart, wallLimit)
	if err != nil {
		e.logger.Error("failed to compile schedule", "expression", s.expression, "error", err)
		return nil
	}

	out := make([]time.Time, 0, count)
	var batch []time.Time
	var batchDay int

	// Candidates are flushed per rule day: a wall time inside a gap resolves
	// forward and can land after later candidates of the same day.
	flush := func() bool {
		sort.Slice(batch, func(i, j int) bool { return batch[i].Before(batch[j]) })
		for _, c := range batch {
			if c.Before(anchor) || (!inclusive && c.Equal(anchor)) || c.After(limit) {
				continue
			}
			if n := len(out); n > 0 && !c.After(out[n-1]) {
				continue
			}
			out = append(out, c)
			if len(out) == count {
				return true
			}
		}
		batch = batch[:0]
		return false
	}

	next := set.Iterator()
	for i := 0; i < e.config.MaxCandidates; i++ {
		c, ok := next()
		if !ok || c.After(wallLimit) {
			break
		}
		if !s.matchDay(c) {
			continue
		}
		day := c.Year()*10000 + int(c.Month())*100 + c.Day()
		if day != batchDay && len(batch) > 0 {
			if flush() {
				return out
			}
		}
		batchDay = day
		batch = append(batch, zone.WallClock(c.Year(), c.Month(), c.Day(), c.Hour(), c.Minute(), loc))
	}
	flush()
	return out
}
