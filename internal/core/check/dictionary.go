package check

import (
	"fmt"
	"sort"
	"sync"
)

// WordStore persists the user dictionary.
type WordStore interface {
	SaveWords(words []string) error
}

// Dictionary holds words the user accepted: words ignored for the session and
// words added to the persistent user dictionary.
type Dictionary struct {
	mu      sync.RWMutex
	ignored map[string]struct{}
	added   map[string]struct{}
	store   WordStore
}

// NewDictionary creates a Dictionary seeded with the user's words. store may
// be nil.
func NewDictionary(words []string, store WordStore) *Dictionary {
	d := &Dictionary{
		ignored: make(map[string]struct{}),
		added:   make(map[string]struct{}, len(words)),
		store:   store,
	}
	for _, w := range words {
		d.added[w] = struct{}{}
	}
	return d
}

// IgnoreWord accepts word for the rest of the session.
func (d *Dictionary) IgnoreWord(word string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ignored[word] = struct{}{}
}

// UnignoreWord reverts IgnoreWord.
func (d *Dictionary) UnignoreWord(word string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.ignored, word)
}

// AddWord adds word to the user dictionary.
func (d *Dictionary) AddWord(word string) error {
	d.mu.Lock()
	d.added[word] = struct{}{}
	words := d.words()
	d.mu.Unlock()
	return d.save(words)
}

// RemoveWord removes word from the user dictionary.
func (d *Dictionary) RemoveWord(word string) error {
	d.mu.Lock()
	delete(d.added, word)
	words := d.words()
	d.mu.Unlock()
	return d.save(words)
}

// Known reports whether word was ignored or added by the user.
func (d *Dictionary) Known(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.ignored[word]; ok {
		return true
	}
	_, ok := d.added[word]
	return ok
}

// Words returns the sorted user dictionary.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.words()
}

func (d *Dictionary) words() []string {
	out := make([]string, 0, len(d.added))
	for w := range d.added {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func (d *Dictionary) save(words []string) error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveWords(words); err != nil {
		return fmt.Errorf("save user dictionary: %w", err)
	}
	return nil
}
