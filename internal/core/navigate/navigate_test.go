package navigate

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/check/checktest"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/document/doctest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc   *doctest.Doc
	model *document.Model
	cache *checktest.Cache
	nav   *Navigator
}

func newFixture(t *testing.T, doc *doctest.Doc, supp Suppressions, opts Options) *fixture {
	t.Helper()

	model, err := document.Load(doc)
	require.NoError(t, err)

	cache := checktest.NewCache()
	merger := check.NewMerger(model, []check.Category{{Name: "all", Cache: cache}}, nil,
		check.MergerOptions{PollAttempts: 1, PollDelay: time.Millisecond}, zerolog.Nop())

	if opts.MaxPasses == 0 {
		opts.MaxPasses = 3
	}
	opts.PollDelay = time.Millisecond

	return &fixture{
		doc:   doc,
		model: model,
		cache: cache,
		nav:   New(model, merger, supp, opts, zerolog.Nop()),
	}
}

func grammar(rule string, start, length int) check.Issue {
	return check.Issue{RuleID: rule, Type: check.TypeGrammar, Start: start, Length: length}
}

func spelling(start, length int) check.Issue {
	return check.Issue{RuleID: "SPELL", Type: check.TypeSpelling, Start: start, Length: length}
}

func TestFindNext_WrapsToAnchor(t *testing.T) {
	f := newFixture(t, doctest.New("aa bb", "cc dd", "ee ff"), Suppressions{}, Options{})
	f.cache.Set(0, grammar("A", 0, 2)).Set(1).Set(2, grammar("C", 3, 2))
	require.NoError(t, f.doc.SetCursorPosition(1, 0))

	ctx := context.Background()

	out, err := f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, 2, out.Unit)
	assert.Equal(t, "C", out.Issue.RuleID)

	y, x, err := f.doc.CursorPosition()
	require.NoError(t, err)
	assert.Equal(t, 2, y)
	assert.Equal(t, 3, x)

	f.nav.Skip()
	out, err = f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, 0, out.Unit)
	assert.True(t, f.nav.Cursor().Wrapped)

	f.nav.Skip()
	out, err = f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StateExhaustedAll, out.State)
	assert.Equal(t, -1, f.nav.Cursor().Anchor)
}

func TestFindNext_ResumeReturnsSameIssueUntilSkipped(t *testing.T) {
	f := newFixture(t, doctest.New("aa bb"), Suppressions{}, Options{})
	f.cache.Set(0, grammar("A", 0, 2), grammar("B", 3, 2))

	ctx := context.Background()
	first, err := f.nav.FindNext(ctx, true)
	require.NoError(t, err)

	again, err := f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first.Issue, again.Issue)

	f.nav.Skip()
	next, err := f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "B", next.Issue.RuleID)
}

func TestFindNext_VisitsEachUnitAtMostTwice(t *testing.T) {
	tests := []struct {
		name   string
		cursor int
	}{
		{name: "from start", cursor: 0},
		{name: "from middle", cursor: 2},
		{name: "from last", cursor: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, doctest.New("a", "b", "c", "d"), Suppressions{}, Options{})
			for i := range 4 {
				f.cache.Set(i)
			}
			require.NoError(t, f.doc.SetCursorPosition(tt.cursor, 0))

			out, err := f.nav.FindNext(context.Background(), true)
			require.NoError(t, err)
			assert.Equal(t, StateExhaustedAll, out.State)

			for i := range 4 {
				assert.LessOrEqual(t, f.cache.Gets(i), 2, "unit %d", i)
				assert.Positive(t, f.cache.Gets(i), "unit %d", i)
			}
		})
	}
}

func TestFindNext_RangeStopsAtEnd(t *testing.T) {
	f := newFixture(t, doctest.New("abcdefghijklmnopqrst", "more text"), Suppressions{}, Options{})
	f.cache.
		Set(0, grammar("BEFORE", 1, 1), grammar("INSIDE", 5, 2), grammar("AFTER", 12, 2)).
		Set(1, grammar("NEXT", 0, 4))

	require.NoError(t, f.nav.SelectRange(0, 3, 10))

	ctx := context.Background()
	out, err := f.nav.FindNext(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, "INSIDE", out.Issue.RuleID)

	f.nav.Skip()
	out, err = f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StateRangeExhausted, out.State)
	assert.Zero(t, f.cache.Gets(1), "unit 1 must not be visited")
	assert.Nil(t, f.nav.Cursor().Range)
}

func TestSelectRange_Invalid(t *testing.T) {
	f := newFixture(t, doctest.New("abc"), Suppressions{}, Options{})

	assert.ErrorIs(t, f.nav.SelectRange(0, 5, 5), ErrInvalidRange)
	assert.ErrorIs(t, f.nav.SelectRange(3, 0, 1), ErrInvalidRange)
}

func TestFindNext_RetriesPendingPasses(t *testing.T) {
	f := newFixture(t, doctest.New("teh cat"), Suppressions{}, Options{})
	f.cache.Compute = func(int) []check.Issue {
		return []check.Issue{spelling(0, 3)}
	}

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, []int{0}, f.cache.Enqueued())
}

func TestFindNext_PendingAfterMaxPasses(t *testing.T) {
	f := newFixture(t, doctest.New("teh cat"), Suppressions{}, Options{MaxPasses: 2})

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StateExhaustedAll, out.State)
	assert.True(t, out.Pending)
	assert.Len(t, f.cache.Enqueued(), 2)
}

func TestFindNext_SkipsAutoGeneratedUnits(t *testing.T) {
	doc := doctest.NewUnits(
		doctest.Unit{Text: "Table of contents", Lang: "en-US", Kind: document.KindBody, Auto: true},
		doctest.Unit{Text: "body text", Lang: "en-US", Kind: document.KindBody},
	)
	f := newFixture(t, doc, Suppressions{}, Options{})
	f.cache.Set(0, grammar("TOC", 0, 5)).Set(1, grammar("BODY", 0, 4))

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Unit)
	assert.Zero(t, f.cache.Gets(0))
}

func TestFindNext_Filters(t *testing.T) {
	tests := []struct {
		name  string
		kind  document.Kind
		opts  Options
		want  string
		state State
	}{
		{name: "all", kind: document.KindBody, opts: Options{}, want: "G", state: StateFound},
		{name: "spelling only", kind: document.KindBody, opts: Options{CheckType: CheckSpelling}, want: "SPELL", state: StateFound},
		{name: "grammar only", kind: document.KindBody, opts: Options{CheckType: CheckGrammar}, want: "G", state: StateFound},
		{name: "shape spelling only", kind: document.KindShape, opts: Options{}, want: "SPELL", state: StateFound},
		{name: "shape included", kind: document.KindShape, opts: Options{IncludeShapes: true}, want: "G", state: StateFound},
		{name: "shape grammar only", kind: document.KindShape, opts: Options{CheckType: CheckGrammar}, state: StateExhaustedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := doctest.NewUnits(doctest.Unit{Text: "Its a tset", Lang: "en-US", Kind: tt.kind})
			f := newFixture(t, doc, Suppressions{}, tt.opts)
			f.cache.Set(0, grammar("G", 0, 3), spelling(6, 4))

			out, err := f.nav.FindNext(context.Background(), true)
			require.NoError(t, err)
			assert.Equal(t, tt.state, out.State)
			if tt.state == StateFound {
				assert.Equal(t, tt.want, out.Issue.RuleID)
			}
		})
	}
}

func TestFindNext_Suppressions(t *testing.T) {
	ignores := check.NewIgnores()
	ignores.Add(0, 0, "ONCE")

	rules := check.NewRuleState(map[string][]string{"en-US": {"OFF"}}, nil)
	rules.IgnoreRule("SESSION")

	words := check.NewDictionary([]string{"teh"}, nil)

	f := newFixture(t, doctest.New("one teh two three"), Suppressions{Ignores: ignores, Rules: rules, Words: words}, Options{})
	f.cache.Set(0,
		grammar("ONCE", 0, 3),
		spelling(4, 3),
		grammar("OFF", 8, 3),
		grammar("SESSION", 8, 3),
		grammar("SHOWN", 12, 5),
	)

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, "SHOWN", out.Issue.RuleID)
}

func TestFindNext_Languages(t *testing.T) {
	doc := doctest.NewUnits(
		doctest.Unit{Text: "Guten Tag", Lang: "de-DE", Kind: document.KindBody},
		doctest.Unit{Text: "no language", Lang: UnknownLanguage, Kind: document.KindBody},
	)
	f := newFixture(t, doc, Suppressions{}, Options{Languages: []string{"en-US"}, DefaultLanguage: "en-US"})
	f.cache.Set(0, grammar("DE", 0, 5)).Set(1, grammar("EN", 0, 2))

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Unit)
	assert.Equal(t, "EN", out.Issue.RuleID)
	assert.Zero(t, f.cache.Gets(0))
}

func TestFindNext_Canceled(t *testing.T) {
	f := newFixture(t, doctest.New("abc"), Suppressions{}, Options{})
	f.cache.Set(0, grammar("A", 0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.nav.FindNext(ctx, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, f.nav.State())
	assert.Equal(t, -1, f.nav.Cursor().Anchor)
}

func TestFindNext_SessionLost(t *testing.T) {
	f := newFixture(t, doctest.New("abc"), Suppressions{}, Options{})
	f.doc.Fail = true

	_, err := f.nav.FindNext(context.Background(), true)
	require.ErrorIs(t, err, document.ErrSessionLost)
}

func TestSeek(t *testing.T) {
	f := newFixture(t, doctest.New("aa bb", "cc dd"), Suppressions{}, Options{})
	f.cache.Set(0, grammar("A", 0, 2)).Set(1, grammar("B", 0, 2), grammar("C", 3, 2))

	f.nav.Seek(3, 1)
	out, err := f.nav.FindNext(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "C", out.Issue.RuleID)
	assert.Equal(t, 1, f.nav.Cursor().Anchor)
}

func TestFindNext_RevisitsUnitsPendingBeforeFoundIssue(t *testing.T) {
	f := newFixture(t, doctest.New("aa", "bb", "cc"), Suppressions{}, Options{})
	f.cache.Set(0).Set(2, grammar("C", 0, 2))

	ctx := context.Background()
	out, err := f.nav.FindNext(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, 2, out.Unit)
	assert.True(t, out.Pending)

	f.cache.Set(1, grammar("B", 0, 2))
	f.nav.Skip()

	out, err = f.nav.FindNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StateFound, out.State)
	assert.Equal(t, 1, out.Unit)
	assert.Equal(t, "B", out.Issue.RuleID)
	assert.False(t, out.Pending)
}

func TestFindNext_RangeDoesNotRetryPending(t *testing.T) {
	f := newFixture(t, doctest.New("abcdefghij", "klmnopqrst"), Suppressions{}, Options{MaxPasses: 5})
	f.cache.Set(0)

	require.NoError(t, f.nav.SelectRange(0, 0, 15))

	out, err := f.nav.FindNext(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, StateRangeExhausted, out.State)
	assert.True(t, out.Pending)
	assert.Equal(t, []int{1}, f.cache.Enqueued())
}
