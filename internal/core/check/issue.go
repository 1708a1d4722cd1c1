// Package check merges the per-category result caches populated by
// background checkers into one ordered issue list per unit.
package check

// Type classifies an issue.
type Type int

const (
	TypeGrammar Type = iota
	TypeSpelling
	TypeStyle
)

func (t Type) String() string {
	switch t {
	case TypeSpelling:
		return "spelling"
	case TypeStyle:
		return "style"
	default:
		return "grammar"
	}
}

// Issue is one detected problem in a unit's text. Start and Length count
// runes. Issues are immutable once produced.
type Issue struct {
	RuleID       string
	Type         Type
	Start        int
	Length       int
	Message      string
	ShortMessage string
	Suggestions  []string
	Color        string // display color, e.g. "#3465a4"; empty for the default
	URL          string // "more information" link
}

// Key identifies an issue within a unit.
type Key struct {
	Start  int
	Length int
	RuleID string
}

// Key returns the identity of the issue within its unit.
func (i Issue) Key() Key {
	return Key{Start: i.Start, Length: i.Length, RuleID: i.RuleID}
}

// End returns the offset just past the issue.
func (i Issue) End() int {
	return i.Start + i.Length
}

// IsSpelling reports whether the issue is a spelling issue.
func (i Issue) IsSpelling() bool {
	return i.Type == TypeSpelling
}
