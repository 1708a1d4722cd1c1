package checker

import "unicode"

// token is a word with rune offsets into its unit.
type token struct {
	Text  string
	Start int
	End   int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\''
}

// words splits text into letter runs. Apostrophes inside a word are kept.
func words(text string) []token {
	var (
		out   []token
		runes = []rune(text)
		start = -1
	)

	flush := func(end int) {
		if start < 0 {
			return
		}
		// trim quotes around the word
		s, e := start, end
		for s < e && runes[s] == '\'' {
			s++
		}
		for e > s && runes[e-1] == '\'' {
			e--
		}
		if s < e {
			out = append(out, token{Text: string(runes[s:e]), Start: s, End: e})
		}
		start = -1
	}

	for i, r := range runes {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(runes))
	return out
}
