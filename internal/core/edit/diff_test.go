package edit

import (
	"testing"

	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     Span
	}{
		{
			name:     "replace word",
			original: "the cat sat",
			edited:   "the dog sat",
			want:     Span{Start: 4, OldEnd: 7, NewEnd: 7, Removed: "cat", Inserted: "dog"},
		},
		{
			name:     "insert",
			original: "abc",
			edited:   "abXc",
			want:     Span{Start: 2, OldEnd: 2, NewEnd: 3, Removed: "", Inserted: "X"},
		},
		{
			name:     "delete",
			original: "abXc",
			edited:   "abc",
			want:     Span{Start: 2, OldEnd: 3, NewEnd: 2, Removed: "X", Inserted: ""},
		},
		{
			name:     "repeated letters do not overlap",
			original: "aaa",
			edited:   "aaaa",
			want:     Span{Start: 3, OldEnd: 3, NewEnd: 4, Removed: "", Inserted: "a"},
		},
		{
			name:     "suffix limited by prefix",
			original: "abab",
			edited:   "ab",
			want:     Span{Start: 2, OldEnd: 4, NewEnd: 2, Removed: "ab", Inserted: ""},
		},
		{
			name:     "runes",
			original: "naïve café",
			edited:   "naive café",
			want:     Span{Start: 2, OldEnd: 3, NewEnd: 3, Removed: "ï", Inserted: "i"},
		},
		{
			name:     "everything",
			original: "abc",
			edited:   "xyz",
			want:     Span{Start: 0, OldEnd: 3, NewEnd: 3, Removed: "abc", Inserted: "xyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.original, tt.edited)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiff_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"", "x"},
		{"x", ""},
		{"hello world", "hello, world"},
		{"mississippi", "missippi"},
		{"ab", "ba"},
		{"über", "uber"},
		{"aaaa", "aa"},
	}

	for _, p := range pairs {
		span := Diff(p[0], p[1])

		assert.LessOrEqual(t, span.Start, span.OldEnd, "%q -> %q", p[0], p[1])
		assert.LessOrEqual(t, span.Start, span.NewEnd, "%q -> %q", p[0], p[1])

		got := document.Splice(p[0], span.Start, span.OldEnd-span.Start, span.Inserted)
		assert.Equal(t, p[1], got, "%q -> %q", p[0], p[1])
	}
}
