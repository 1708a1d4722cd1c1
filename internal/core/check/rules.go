package check

import (
	"fmt"
	"sort"
	"sync"
)

// RuleStore persists deactivated rules, keyed by language.
type RuleStore interface {
	SaveDeactivated(rules map[string][]string) error
}

// RuleState tracks rules ignored for the current session and rules
// deactivated persistently. Ignored rules apply to every language; deactivated
// rules are scoped to one language.
type RuleState struct {
	mu          sync.RWMutex
	ignored     map[string]struct{}
	deactivated map[string]map[string]struct{}
	store       RuleStore
}

// NewRuleState creates a RuleState seeded with previously deactivated rules.
// store may be nil.
func NewRuleState(deactivated map[string][]string, store RuleStore) *RuleState {
	rs := &RuleState{
		ignored:     make(map[string]struct{}),
		deactivated: make(map[string]map[string]struct{}),
		store:       store,
	}
	for lang, ids := range deactivated {
		for _, id := range ids {
			rs.set(lang, id)
		}
	}
	return rs
}

func (rs *RuleState) set(lang, ruleID string) {
	m, ok := rs.deactivated[lang]
	if !ok {
		m = make(map[string]struct{})
		rs.deactivated[lang] = m
	}
	m[ruleID] = struct{}{}
}

// IgnoreRule suppresses ruleID for the rest of the session.
func (rs *RuleState) IgnoreRule(ruleID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.ignored[ruleID] = struct{}{}
}

// UnignoreRule lifts a session suppression.
func (rs *RuleState) UnignoreRule(ruleID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.ignored, ruleID)
}

// Deactivate disables ruleID for lang and persists the change.
func (rs *RuleState) Deactivate(ruleID, lang string) error {
	rs.mu.Lock()
	rs.set(lang, ruleID)
	snapshot := rs.snapshot()
	rs.mu.Unlock()
	return rs.save(snapshot)
}

// Activate re-enables ruleID for lang and persists the change.
func (rs *RuleState) Activate(ruleID, lang string) error {
	rs.mu.Lock()
	if m, ok := rs.deactivated[lang]; ok {
		delete(m, ruleID)
		if len(m) == 0 {
			delete(rs.deactivated, lang)
		}
	}
	snapshot := rs.snapshot()
	rs.mu.Unlock()
	return rs.save(snapshot)
}

// Active reports whether issues of ruleID should be shown for lang.
func (rs *RuleState) Active(ruleID, lang string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if _, ok := rs.ignored[ruleID]; ok {
		return false
	}
	_, off := rs.deactivated[lang][ruleID]
	return !off
}

// Deactivated returns the sorted rule IDs deactivated for lang.
func (rs *RuleState) Deactivated(lang string) []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	ids := make([]string, 0, len(rs.deactivated[lang]))
	for id := range rs.deactivated[lang] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (rs *RuleState) snapshot() map[string][]string {
	out := make(map[string][]string, len(rs.deactivated))
	for lang, m := range rs.deactivated {
		ids := make([]string, 0, len(m))
		for id := range m {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[lang] = ids
	}
	return out
}

func (rs *RuleState) save(snapshot map[string][]string) error {
	if rs.store == nil {
		return nil
	}
	if err := rs.store.SaveDeactivated(snapshot); err != nil {
		return fmt.Errorf("save deactivated rules: %w", err)
	}
	return nil
}
