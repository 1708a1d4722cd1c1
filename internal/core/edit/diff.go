package edit

// Span describes the single contiguous change between two texts. Offsets
// count runes. [Start, OldEnd) in the original was replaced by
// [Start, NewEnd) in the edited text.
type Span struct {
	Start    int
	OldEnd   int
	NewEnd   int
	Removed  string
	Inserted string
}

// Empty reports whether the span changes nothing.
func (s Span) Empty() bool {
	return s.OldEnd == s.Start && s.NewEnd == s.Start
}

// Diff computes the span between the common prefix and the common suffix of
// original and edited. The suffix never overlaps the prefix, so Start <= OldEnd
// and Start <= NewEnd always hold.
func Diff(original, edited string) Span {
	a, b := []rune(original), []rune(edited)

	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}

	limit := min(len(a), len(b)) - p
	s := 0
	for s < limit && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}

	return Span{
		Start:    p,
		OldEnd:   len(a) - s,
		NewEnd:   len(b) - s,
		Removed:  string(a[p : len(a)-s]),
		Inserted: string(b[p : len(b)-s]),
	}
}
