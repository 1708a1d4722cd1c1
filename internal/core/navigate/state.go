package navigate

import (
	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/document"
)

// State is the state of the navigation state machine after a step.
type State string

const (
	StateIdle             State = "idle"
	StateScanning         State = "scanning"
	StateFound            State = "found"
	StateExhaustedForward State = "exhausted-forward"
	StateExhaustedAll     State = "exhausted-all"
	StateRangeExhausted   State = "range-exhausted"
)

// Terminal reports whether s ends a scan without an issue.
func (s State) Terminal() bool {
	return s == StateExhaustedAll || s == StateRangeExhausted
}

// CheckType selects which issue types navigation reports.
type CheckType string

const (
	CheckAll      CheckType = "all"
	CheckSpelling CheckType = "spelling"
	CheckGrammar  CheckType = "grammar"
)

// IsValid reports whether t is a known check type.
func (t CheckType) IsValid() bool {
	switch t {
	case CheckAll, CheckSpelling, CheckGrammar:
		return true
	}
	return false
}

// Range bounds a scan to [Start, End), in characters counted from the start
// of the anchor unit. Each unit boundary counts as one character.
type Range struct {
	Start int
	End   int
}

// Cursor is the scan position. Anchor is the unit the current pass began
// at, or -1 before the first step of a fresh scan. Wrapped is set once the
// pass continued from unit 0 after reaching the end of the document.
type Cursor struct {
	X       int
	Y       int
	Anchor  int
	Wrapped bool
	Range   *Range
}

// Outcome is the result of FindNext. Issue, Unit and Locator are only set
// when State is StateFound. Pending reports that some units had incomplete
// results when the scan ended.
type Outcome struct {
	State   State
	Issue   check.Issue
	Unit    int
	Locator document.Locator
	Pending bool
}
