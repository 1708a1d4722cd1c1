package checker

import (
	"context"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PoolOptions configures the standard checker set.
type PoolOptions struct {
	Workers          int
	MaxSentenceWords int
}

// Pool owns one Cache per category and runs them together.
type Pool struct {
	caches     []*Cache
	categories []check.Category
	workers    int
}

// NewPool builds the standard categories in priority order: grammar (mixed
// with spelling), style, and the multi-unit paragraph checks.
func NewPool(src Source, speller *Speller, opts PoolOptions, log zerolog.Logger) *Pool {
	grammar := NewCache(src, NewGrammarChecker(Rules(), speller), log)
	style := NewCache(src, LongSentenceChecker{MaxWords: opts.MaxSentenceWords}, log)
	paragraph := NewCache(src, ParagraphChecker{}, log)

	return &Pool{
		caches: []*Cache{grammar, style, paragraph},
		categories: []check.Category{
			{Name: grammar.Name(), Cache: grammar, Mixed: true},
			{Name: style.Name(), Cache: style},
			{Name: paragraph.Name(), Cache: paragraph, MultiUnit: true},
		},
		workers: max(opts.Workers, 1),
	}
}

// Categories returns the categories for check.NewMerger.
func (p *Pool) Categories() []check.Category {
	return p.categories
}

// EnqueueAll schedules every unit with every category.
func (p *Pool) EnqueueAll() {
	for _, c := range p.caches {
		c.EnqueueAll()
	}
}

// Reset drops all results, for example after the document was rebound.
func (p *Pool) Reset() {
	for _, c := range p.caches {
		c.Reset()
	}
}

// Pending returns the number of queued jobs over all categories.
func (p *Pool) Pending() int {
	n := 0
	for _, c := range p.caches {
		n += c.Pending()
	}
	return n
}

// Run starts the workers of every cache and blocks until ctx is done.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range p.caches {
		g.Go(func() error {
			return c.Run(ctx, p.workers)
		})
	}
	return g.Wait()
}

// CheckAll checks every unit synchronously with every category.
func (p *Pool) CheckAll(ctx context.Context, units int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, c := range p.caches {
		for unit := range units {
			g.Go(func() error {
				return c.CheckNow(ctx, unit)
			})
		}
	}
	return g.Wait()
}
