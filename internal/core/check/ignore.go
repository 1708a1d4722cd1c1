package check

import "sync"

type ignoreKey struct {
	start  int
	ruleID string
}

// Ignores records issues the user chose to ignore at one position.
type Ignores struct {
	mu    sync.RWMutex
	marks map[int]map[ignoreKey]struct{}
}

// NewIgnores returns an empty marker set.
func NewIgnores() *Ignores {
	return &Ignores{marks: make(map[int]map[ignoreKey]struct{})}
}

// Add marks the issue of ruleID at start in unit as ignored.
func (ig *Ignores) Add(unit, start int, ruleID string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	m, ok := ig.marks[unit]
	if !ok {
		m = make(map[ignoreKey]struct{})
		ig.marks[unit] = m
	}
	m[ignoreKey{start, ruleID}] = struct{}{}
}

// Remove drops a single marker.
func (ig *Ignores) Remove(unit, start int, ruleID string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	if m, ok := ig.marks[unit]; ok {
		delete(m, ignoreKey{start, ruleID})
		if len(m) == 0 {
			delete(ig.marks, unit)
		}
	}
}

// Has reports whether the issue is marked as ignored.
func (ig *Ignores) Has(unit, start int, ruleID string) bool {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	_, ok := ig.marks[unit][ignoreKey{start, ruleID}]
	return ok
}

// ClearUnit drops every marker of unit. Markers refer to offsets and become
// meaningless once the unit's text changes.
func (ig *Ignores) ClearUnit(unit int) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.marks, unit)
}

// Clear drops every marker.
func (ig *Ignores) Clear() {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.marks = make(map[int]map[ignoreKey]struct{})
}
