package checker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/proofer/internal/core/check"
)

// Rule IDs of the built-in rules.
const (
	RuleDuplicateWord     = "ENGLISH_WORD_REPEAT_RULE"
	RuleWhitespace        = "WHITESPACE_RULE"
	RuleUppercaseStart    = "UPPERCASE_SENTENCE_START"
	RuleRepeatedBeginning = "PARAGRAPH_REPEAT_BEGINNING_RULE"
	RuleLongSentence      = "TOO_LONG_SENTENCE"
)

// Display colors by issue type.
const (
	ColorSpelling = "#e01b24"
	ColorGrammar  = "#3584e4"
	ColorStyle    = "#33d17a"
)

// Rule checks the text of a single unit.
type Rule interface {
	ID() string
	Match(text string) []check.Issue
}

// Rules returns the built-in single-unit grammar rules.
func Rules() []Rule {
	return []Rule{duplicateWord{}, whitespace{}, uppercaseStart{}}
}

// GrammarChecker runs the grammar rules and, when a speller is set, also
// reports spelling issues. It backs a Mixed category.
type GrammarChecker struct {
	rules   []Rule
	speller *Speller
}

// NewGrammarChecker creates a GrammarChecker. speller may be nil.
func NewGrammarChecker(rules []Rule, speller *Speller) *GrammarChecker {
	return &GrammarChecker{rules: rules, speller: speller}
}

func (c *GrammarChecker) Name() string { return "grammar" }

func (c *GrammarChecker) Check(ctx context.Context, src Source, unit int) ([]check.Issue, error) {
	text := src.Text(unit)

	var out []check.Issue
	for _, r := range c.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, r.Match(text)...)
	}

	if c.speller != nil {
		spelling, err := spellingIssues(ctx, c.speller, text, src.Language(unit))
		if err != nil {
			return nil, err
		}
		out = append(out, spelling...)
	}
	return out, nil
}

type duplicateWord struct{}

func (duplicateWord) ID() string { return RuleDuplicateWord }

func (duplicateWord) Match(text string) []check.Issue {
	var out []check.Issue
	toks := words(text)
	runes := []rune(text)
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if !strings.EqualFold(prev.Text, cur.Text) {
			continue
		}
		if strings.TrimSpace(string(runes[prev.End:cur.Start])) != "" {
			continue
		}
		out = append(out, check.Issue{
			RuleID:       RuleDuplicateWord,
			Type:         check.TypeGrammar,
			Start:        prev.Start,
			Length:       cur.End - prev.Start,
			Message:      "Possible typo: you repeated a word.",
			ShortMessage: "Word repetition",
			Suggestions:  []string{prev.Text},
			Color:        ColorGrammar,
		})
	}
	return out
}

type whitespace struct{}

func (whitespace) ID() string { return RuleWhitespace }

func (whitespace) Match(text string) []check.Issue {
	var out []check.Issue
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] != ' ' {
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		if j-i > 1 && i > 0 {
			out = append(out, check.Issue{
				RuleID:       RuleWhitespace,
				Type:         check.TypeStyle,
				Start:        i,
				Length:       j - i,
				Message:      "Possible typo: you repeated a whitespace.",
				ShortMessage: "Repeated whitespace",
				Suggestions:  []string{" "},
				Color:        ColorStyle,
			})
		}
		i = j
	}
	return out
}

type uppercaseStart struct{}

func (uppercaseStart) ID() string { return RuleUppercaseStart }

func (uppercaseStart) Match(text string) []check.Issue {
	var out []check.Issue
	runes := []rune(text)
	atStart := true
	for i, r := range runes {
		switch {
		case r == '.' || r == '!' || r == '?':
			atStart = true
		case unicode.IsLetter(r):
			if atStart && unicode.IsLower(r) && (i == 0 || unicode.IsSpace(runes[i-1])) {
				tok := wordAt(runes, i)
				out = append(out, check.Issue{
					RuleID:       RuleUppercaseStart,
					Type:         check.TypeGrammar,
					Start:        i,
					Length:       len([]rune(tok)),
					Message:      "This sentence does not start with an uppercase letter.",
					ShortMessage: "Uppercase",
					Suggestions:  []string{matchCase("A", tok)},
					Color:        ColorGrammar,
				})
			}
			atStart = false
		case !unicode.IsSpace(r) && r != '"' && r != '(':
			atStart = false
		}
	}
	return out
}

func wordAt(runes []rune, i int) string {
	j := i
	for j < len(runes) && isWordRune(runes[j]) {
		j++
	}
	return string(runes[i:j])
}

// LongSentenceChecker flags sentences with more words than a limit.
type LongSentenceChecker struct {
	MaxWords int
}

func (c LongSentenceChecker) Name() string { return "style" }

func (c LongSentenceChecker) Check(ctx context.Context, src Source, unit int) ([]check.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := c.MaxWords
	if limit < 1 {
		limit = 40
	}

	var out []check.Issue
	runes := []rune(src.Text(unit))
	start, count := -1, 0
	for _, tok := range words(string(runes)) {
		if start < 0 {
			start = tok.Start
		}
		count++
		end := tok.End
		if end < len(runes) && strings.ContainsRune(".!?", runes[end]) {
			if count > limit {
				out = append(out, longSentence(start, end+1, count, limit))
			}
			start, count = -1, 0
		}
	}
	if start >= 0 && count > limit {
		out = append(out, longSentence(start, len(runes), count, limit))
	}
	return out, nil
}

func longSentence(start, end, count, limit int) check.Issue {
	return check.Issue{
		RuleID:       RuleLongSentence,
		Type:         check.TypeStyle,
		Start:        start,
		Length:       end - start,
		Message:      fmt.Sprintf("This sentence has %d words, more than the %d recommended.", count, limit),
		ShortMessage: "Long sentence",
		Color:        ColorStyle,
	}
}

// ParagraphChecker reports body paragraphs that begin with the same word as
// the previous one. Its category is MultiUnit.
type ParagraphChecker struct{}

func (ParagraphChecker) Name() string { return "paragraph" }

func (ParagraphChecker) Check(ctx context.Context, src Source, unit int) ([]check.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if unit == 0 || src.IsSingleUnit(unit) || src.IsSingleUnit(unit-1) {
		return nil, nil
	}

	cur := words(src.Text(unit))
	prev := words(src.Text(unit - 1))
	if len(cur) == 0 || len(prev) == 0 || !strings.EqualFold(cur[0].Text, prev[0].Text) {
		return nil, nil
	}

	first := cur[0]
	return []check.Issue{{
		RuleID:       RuleRepeatedBeginning,
		Type:         check.TypeStyle,
		Start:        first.Start,
		Length:       first.End - first.Start,
		Message:      fmt.Sprintf("Two successive paragraphs begin with %q.", first.Text),
		ShortMessage: "Repeated beginning",
		Color:        ColorStyle,
	}}, nil
}
