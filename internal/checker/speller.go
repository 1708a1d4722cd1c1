package checker

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// RuleSpelling is the rule ID of spelling issues.
const RuleSpelling = "MORFOLOGIK_RULE"

// maxSuggestions bounds the suggestions attached to a spelling issue.
const maxSuggestions = 5

//go:embed typos.txt
var typosFile string

// Speller checks words against a known-word list and a table of common
// typos. Without a word list every word that is not a known typo is correct.
type Speller struct {
	known  map[string]struct{}
	list   []string
	typos  map[string]string
	user   *check.Dictionary
	minLen int
}

// NewSpeller creates a Speller. user may be nil.
func NewSpeller(user *check.Dictionary, minWordLength int) *Speller {
	return &Speller{
		known:  make(map[string]struct{}),
		typos:  parseTypos(typosFile),
		user:   user,
		minLen: max(minWordLength, 1),
	}
}

// LoadWords reads a word list, one word per line. Lines starting with # are
// comments.
func (s *Speller) LoadWords(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		w = strings.ToLower(w)
		if _, ok := s.known[w]; ok {
			continue
		}
		s.known[w] = struct{}{}
		s.list = append(s.list, w)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read word list: %w", err)
	}
	sort.Strings(s.list)
	return nil
}

// LoadWordsFile reads the word list at path.
func (s *Speller) LoadWordsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return s.LoadWords(f)
}

// IsCorrect implements check.SpellChecker.
func (s *Speller) IsCorrect(word, _ string) bool {
	if utf8.RuneCountInString(word) < s.minLen || hasDigit(word) {
		return true
	}
	if s.user != nil && s.user.Known(word) {
		return true
	}

	lower := strings.ToLower(word)
	if _, typo := s.typos[lower]; typo {
		return false
	}
	if len(s.known) == 0 {
		return true
	}
	_, ok := s.known[lower]
	return ok
}

// Suggest returns replacement candidates for word, best first.
func (s *Speller) Suggest(word string) []string {
	lower := strings.ToLower(word)

	var out []string
	if fix, ok := s.typos[lower]; ok {
		out = append(out, fix)
	}

	ranks := fuzzy.RankFindFold(lower, s.list)
	sort.Sort(ranks)
	for _, r := range ranks {
		if len(out) >= maxSuggestions {
			break
		}
		if r.Target != lower && !slices.Contains(out, r.Target) {
			out = append(out, r.Target)
		}
	}

	if len(s.list) > 0 && len(out) < maxSuggestions {
		for _, cand := range s.nearby(lower) {
			if len(out) >= maxSuggestions {
				break
			}
			if !slices.Contains(out, cand) {
				out = append(out, cand)
			}
		}
	}

	for i, cand := range out {
		out[i] = matchCase(word, cand)
	}
	return out
}

// nearby returns list words one edit (deletion, transposition or
// substitution) away from word.
func (s *Speller) nearby(word string) []string {
	r := []rune(word)
	seen := make(map[string]struct{})
	var out []string
	add := func(cand string) {
		if _, ok := s.known[cand]; !ok {
			return
		}
		if _, dup := seen[cand]; dup || cand == word {
			return
		}
		seen[cand] = struct{}{}
		out = append(out, cand)
	}

	for i := range r {
		add(string(r[:i]) + string(r[i+1:]))
		if i+1 < len(r) {
			t := append([]rune(nil), r...)
			t[i], t[i+1] = t[i+1], t[i]
			add(string(t))
		}
	}
	for i := range r {
		for c := 'a'; c <= 'z'; c++ {
			if c == r[i] {
				continue
			}
			t := append([]rune(nil), r...)
			t[i] = c
			add(string(t))
		}
	}
	sort.Strings(out)
	return out
}

// SpellingChecker reports every misspelled word of a unit.
type SpellingChecker struct {
	speller *Speller
}

// NewSpellingChecker wraps speller as a Checker.
func NewSpellingChecker(speller *Speller) *SpellingChecker {
	return &SpellingChecker{speller: speller}
}

func (c *SpellingChecker) Name() string { return "spelling" }

func (c *SpellingChecker) Check(ctx context.Context, src Source, unit int) ([]check.Issue, error) {
	text := src.Text(unit)
	lang := src.Language(unit)
	return spellingIssues(ctx, c.speller, text, lang)
}

func spellingIssues(ctx context.Context, sp *Speller, text, lang string) ([]check.Issue, error) {
	var out []check.Issue
	for _, tok := range words(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sp.IsCorrect(tok.Text, lang) {
			continue
		}
		out = append(out, check.Issue{
			RuleID:       RuleSpelling,
			Type:         check.TypeSpelling,
			Start:        tok.Start,
			Length:       tok.End - tok.Start,
			Message:      fmt.Sprintf("Possible spelling mistake found: %q.", tok.Text),
			ShortMessage: "Spelling mistake",
			Suggestions:  sp.Suggest(tok.Text),
			Color:        ColorSpelling,
		})
	}
	return out, nil
}

func parseTypos(data string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		typo, fix, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(typo)] = strings.TrimSpace(fix)
	}
	return out
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func matchCase(model, word string) string {
	r := []rune(model)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return word
	}
	if strings.ToUpper(model) == model && len(r) > 1 {
		return strings.ToUpper(word)
	}
	w := []rune(word)
	w[0] = unicode.ToUpper(w[0])
	return string(w)
}
