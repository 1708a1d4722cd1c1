package check

import (
	"context"
	"sort"
	"time"

	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/rs/zerolog"
)

// Default polling bounds for units whose result is not cached yet.
const (
	DefaultPollAttempts = 10
	DefaultPollDelay    = 50 * time.Millisecond
)

// Units exposes the cached unit data the merger needs. *document.Model
// satisfies it.
type Units interface {
	Text(unit int) string
	Language(unit int) string
	IsSingleUnit(unit int) bool
}

// Result is the merged issue list of one unit. Pending is set when at least
// one category had no result for the unit; Issues then holds what was
// available.
type Result struct {
	Issues  []Issue
	Pending bool
}

// MergerOptions bounds the wait for missing cache entries.
type MergerOptions struct {
	PollAttempts int
	PollDelay    time.Duration
}

// Merger combines the category caches of a unit into one ordered list.
type Merger struct {
	units      Units
	categories []Category
	spell      SpellChecker
	attempts   int
	delay      time.Duration
	log        zerolog.Logger
}

// NewMerger creates a Merger. Categories are consulted in priority order;
// spell may be nil when no category is Mixed.
func NewMerger(units Units, categories []Category, spell SpellChecker, opts MergerOptions, log zerolog.Logger) *Merger {
	if opts.PollAttempts < 1 {
		opts.PollAttempts = DefaultPollAttempts
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = DefaultPollDelay
	}
	return &Merger{
		units:      units,
		categories: categories,
		spell:      spell,
		attempts:   opts.PollAttempts,
		delay:      opts.PollDelay,
		log:        log,
	}
}

// Categories returns the configured categories in priority order.
func (m *Merger) Categories() []Category {
	return m.categories
}

// Merge returns the merged issues of unit, polling a bounded number of times
// for categories that have not produced a result yet. Categories still
// missing after the bound are asked to check the unit and the result is
// flagged Pending. A canceled ctx ends the poll at once with Pending set and
// nothing enqueued.
func (m *Merger) Merge(ctx context.Context, unit int) Result {
	for attempt := 1; ; attempt++ {
		lists, missing := m.collect(unit)
		if len(missing) == 0 {
			return Result{Issues: m.combine(unit, lists)}
		}

		if attempt >= m.attempts {
			for _, i := range missing {
				m.categories[i].Cache.Enqueue(unit)
			}
			m.log.Debug().
				Int("unit", unit).
				Int("missing", len(missing)).
				Msg("merging incomplete result")
			return Result{Issues: m.combine(unit, lists), Pending: true}
		}

		if !m.wait(ctx) {
			return Result{Issues: m.combine(unit, lists), Pending: true}
		}
	}
}

// Peek merges whatever is cached for unit without waiting or scheduling.
func (m *Merger) Peek(unit int) Result {
	lists, missing := m.collect(unit)
	return Result{Issues: m.combine(unit, lists), Pending: len(missing) > 0}
}

func (m *Merger) wait(ctx context.Context) bool {
	t := time.NewTimer(m.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (m *Merger) collect(unit int) ([][]Issue, []int) {
	lists := make([][]Issue, len(m.categories))
	var missing []int

	single := m.units.IsSingleUnit(unit)
	for i, c := range m.categories {
		if c.MultiUnit && single {
			continue
		}
		issues, ok := c.Cache.Get(unit)
		if !ok {
			missing = append(missing, i)
			continue
		}
		lists[i] = issues
	}
	return lists, missing
}

func (m *Merger) combine(unit int, lists [][]Issue) []Issue {
	var (
		text   string
		lang   string
		loaded bool
	)

	seen := make(map[Key]struct{})
	out := make([]Issue, 0)

	for i, issues := range lists {
		mixed := m.categories[i].Mixed && m.spell != nil
		for _, is := range issues {
			if is.Length <= 0 {
				continue
			}
			if _, dup := seen[is.Key()]; dup {
				continue
			}
			if mixed && is.IsSpelling() {
				if !loaded {
					text, lang, loaded = m.units.Text(unit), m.units.Language(unit), true
				}
				if m.spell.IsCorrect(document.Slice(text, is.Start, is.End()), lang) {
					continue
				}
			}
			seen[is.Key()] = struct{}{}
			out = append(out, is)
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Start < out[b].Start
	})
	return out
}
