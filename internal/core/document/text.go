package document

import "unicode/utf8"

// Len returns the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Slice returns the runes of s in [start, end). Bounds are clamped.
func Slice(s string, start, end int) string {
	r := []rune(s)
	start = clamp(start, 0, len(r))
	end = clamp(end, start, len(r))
	return string(r[start:end])
}

// Splice replaces length runes of s at start with replacement.
func Splice(s string, start, length int, replacement string) string {
	r := []rune(s)
	start = clamp(start, 0, len(r))
	end := clamp(start+length, start, len(r))
	return string(r[:start]) + replacement + string(r[end:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
