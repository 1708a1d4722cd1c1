// Package undo records reversible user actions and reverts them in LIFO order.
package undo

import (
	"fmt"

	"github.com/hay-kot/proofer/internal/core/edit"
)

// DefaultCapacity is the number of entries kept before the oldest is evicted.
const DefaultCapacity = 20

// Action identifies what an Entry reverts.
type Action string

const (
	ActionIgnoreOnce      Action = "ignore-once"
	ActionIgnoreAll       Action = "ignore-all"
	ActionDeactivateRule  Action = "deactivate-rule"
	ActionActivateRule    Action = "activate-rule"
	ActionChangeLanguage  Action = "change-language"
	ActionEdit            Action = "edit"
	ActionAddToDictionary Action = "add-to-dictionary"
)

// Entry is one undoable action. X and Y are the position the scan resumes at
// after the entry is undone.
//
// Field use per action:
//   - ignore-once: RuleID at (X, Y).
//   - ignore-all: Word for an ignored word, otherwise RuleID.
//   - deactivate-rule, activate-rule: RuleID and Lang.
//   - change-language: Lang is the previous language of Span in unit Y.
//   - edit: Offsets holds, per unit, where Replacement now stands in the
//     updated text; undo writes Word back at each of them.
//   - add-to-dictionary: Word.
type Entry struct {
	Action      Action
	X           int
	Y           int
	RuleID      string
	Word        string
	Replacement string
	Lang        string
	Span        edit.Span
	Offsets     map[int][]int
}

func (e Entry) String() string {
	switch e.Action {
	case ActionEdit:
		return fmt.Sprintf("%s %q -> %q", e.Action, e.Word, e.Replacement)
	case ActionIgnoreAll, ActionAddToDictionary:
		if e.Word != "" {
			return fmt.Sprintf("%s %q", e.Action, e.Word)
		}
	case ActionChangeLanguage:
		return fmt.Sprintf("%s unit %d", e.Action, e.Y)
	}
	return fmt.Sprintf("%s %s", e.Action, e.RuleID)
}

// Log is a bounded LIFO of entries. It is not safe for concurrent use.
type Log struct {
	capacity int
	entries  []Entry
}

// NewLog returns an empty log. A capacity below 1 uses DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Push appends e, evicting the oldest entry when the log is full.
func (l *Log) Push(e Entry) {
	if len(l.entries) >= l.capacity {
		l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.capacity+1:]...)
	}
	l.entries = append(l.entries, e)
}

// Pop removes and returns the newest entry.
func (l *Log) Pop() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return e, true
}

// Peek returns the newest entry without removing it.
func (l *Log) Peek() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Cap returns the capacity.
func (l *Log) Cap() int {
	return l.capacity
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = nil
}

// Entries returns the entries oldest first.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}
