// Package checktest provides in-memory caches and spell checkers for tests.
package checktest

import (
	"sync"

	"github.com/hay-kot/proofer/internal/core/check"
)

// Cache is a map-backed check.Cache that records every call. When Compute is
// set, Enqueue fills the entry synchronously with its result.
type Cache struct {
	mu          sync.Mutex
	entries     map[int][]check.Issue
	invalidated []int
	enqueued    []int
	gets        map[int]int
	Compute     func(unit int) []check.Issue
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[int][]check.Issue), gets: make(map[int]int)}
}

// Set stores the result for unit. Set with no issues marks the unit checked.
func (c *Cache) Set(unit int, issues ...check.Issue) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if issues == nil {
		issues = []check.Issue{}
	}
	c.entries[unit] = issues
	return c
}

func (c *Cache) Get(unit int) ([]check.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets[unit]++
	issues, ok := c.entries[unit]
	return issues, ok
}

func (c *Cache) Invalidate(unit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, unit)
	c.invalidated = append(c.invalidated, unit)
}

func (c *Cache) Enqueue(unit int) {
	c.mu.Lock()
	c.enqueued = append(c.enqueued, unit)
	compute := c.Compute
	c.mu.Unlock()

	if compute != nil {
		c.Set(unit, compute(unit)...)
	}
}

// Invalidated returns the units passed to Invalidate, in call order.
func (c *Cache) Invalidated() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.invalidated...)
}

// Enqueued returns the units passed to Enqueue, in call order.
func (c *Cache) Enqueued() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.enqueued...)
}

// Gets returns how often unit was looked up.
func (c *Cache) Gets(unit int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets[unit]
}

// Speller accepts exactly the words in its set.
type Speller map[string]bool

func (s Speller) IsCorrect(word, _ string) bool {
	return s[word]
}
