// Package checker provides background issue producers for the proofreading
// session. Each Cache runs one Checker over queued units on a worker pool.
package checker

import (
	"context"
	"fmt"
	"sync"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source is the unit text a checker reads. *document.Model satisfies it.
type Source interface {
	Len() int
	Text(unit int) string
	Language(unit int) string
	IsSingleUnit(unit int) bool
}

// Checker produces the issues of one unit.
type Checker interface {
	Name() string
	Check(ctx context.Context, src Source, unit int) ([]check.Issue, error)
}

type entry struct {
	issues []check.Issue
}

// Cache is an asynchronously populated check.Cache. Every Invalidate bumps
// the unit's generation; results computed for an older generation are
// dropped.
type Cache struct {
	checker Checker
	src     Source
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[int]entry
	gens    map[int]uint64
	queue   []int
	queued  map[int]struct{}
	wake    chan struct{}
}

// NewCache creates a cache for checker. Call Run to start processing.
func NewCache(src Source, checker Checker, log zerolog.Logger) *Cache {
	return &Cache{
		checker: checker,
		src:     src,
		log:     log.With().Str("checker", checker.Name()).Logger(),
		entries: make(map[int]entry),
		gens:    make(map[int]uint64),
		queued:  make(map[int]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Name returns the checker name.
func (c *Cache) Name() string {
	return c.checker.Name()
}

func (c *Cache) Get(unit int) ([]check.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[unit]
	return e.issues, ok
}

func (c *Cache) Invalidate(unit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[unit]++
	delete(c.entries, unit)
}

func (c *Cache) Enqueue(unit int) {
	c.mu.Lock()
	if _, ok := c.queued[unit]; ok {
		c.mu.Unlock()
		return
	}
	if _, ok := c.entries[unit]; ok {
		c.mu.Unlock()
		return
	}
	c.queued[unit] = struct{}{}
	c.queue = append(c.queue, unit)
	c.mu.Unlock()

	c.signal()
}

// EnqueueAll schedules every unit of the source.
func (c *Cache) EnqueueAll() {
	for unit := range c.src.Len() {
		c.Enqueue(unit)
	}
}

// Reset drops every entry and pending job.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for unit := range c.entries {
		c.gens[unit]++
	}
	for _, unit := range c.queue {
		c.gens[unit]++
	}
	c.entries = make(map[int]entry)
	c.queue = nil
	c.queued = make(map[int]struct{})
}

// Pending returns the number of queued units.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Run processes queued units with the given number of workers until ctx is
// done. A checker error is logged and leaves the unit unchecked; it does not
// stop the pool.
func (c *Cache) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			return c.work(ctx)
		})
	}
	return g.Wait()
}

func (c *Cache) work(ctx context.Context) error {
	for {
		unit, gen, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wake:
				continue
			}
		}

		issues, err := c.checker.Check(ctx, c.src, unit)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Err(err).Int("unit", unit).Msg("check failed")
			continue
		}
		c.store(unit, gen, issues)
	}
}

func (c *Cache) next() (int, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return 0, 0, false
	}
	unit := c.queue[0]
	c.queue = c.queue[1:]
	delete(c.queued, unit)
	if len(c.queue) > 0 {
		c.signal()
	}
	return unit, c.gens[unit], true
}

func (c *Cache) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cache) store(unit int, gen uint64, issues []check.Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[unit] != gen {
		c.log.Debug().Int("unit", unit).Msg("dropping stale result")
		return
	}
	if issues == nil {
		issues = []check.Issue{}
	}
	c.entries[unit] = entry{issues: issues}
}

// CheckNow runs the checker for unit synchronously and stores the result.
// It is used by non-interactive commands that do not start a worker pool.
func (c *Cache) CheckNow(ctx context.Context, unit int) error {
	c.mu.Lock()
	gen := c.gens[unit]
	c.mu.Unlock()

	issues, err := c.checker.Check(ctx, c.src, unit)
	if err != nil {
		return fmt.Errorf("%s: unit %d: %w", c.checker.Name(), unit, err)
	}
	c.store(unit, gen, issues)
	return nil
}

var _ check.Cache = (*Cache)(nil)
