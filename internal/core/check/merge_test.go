package check_test

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

func newModel(t *testing.T, doc document.Document) *document.Model {
	t.Helper()
	m, err := document.Load(doc)
	require.NoError(t, err)
	return m
}

func issue(rule string, start, length int) check.Issue {
	return check.Issue{RuleID: rule, Start: start, Length: length}
}

func fastOpts() check.MergerOptions {
	return check.MergerOptions{PollAttempts: 3, PollDelay: time.Millisecond}
}

func TestMerger_OrdersAndDeduplicates(t *testing.T) {
	model := newModel(t, doctest.New("the the cat sat on teh mat"))

	grammar := checktest.NewCache().Set(0, issue("DUP", 4, 3), issue("CASE", 0, 3))
	style := checktest.NewCache().Set(0, issue("DUP", 4, 3), issue("LONG", 4, 7), issue("WS", 19, 3))

	m := check.NewMerger(model, []check.Category{
		{Name: "grammar", Cache: grammar},
		{Name: "style", Cache: style},
	}, nil, fastOpts(), zerolog.Nop())

	res := m.Merge(context.Background(), 0)
	assert.False(t, res.Pending)

	var keys []check.Key
	for _, is := range res.Issues {
		keys = append(keys, is.Key())
	}
	assert.Equal(t, []check.Key{
		{Start: 0, Length: 3, RuleID: "CASE"},
		{Start: 4, Length: 3, RuleID: "DUP"},
		{Start: 4, Length: 7, RuleID: "LONG"},
		{Start: 19, Length: 3, RuleID: "WS"},
	}, keys)
}

func TestMerger_CompleteWhenAllCached(t *testing.T) {
	model := newModel(t, doctest.New("alpha beta", "gamma"))

	a := checktest.NewCache().Set(0, issue("A", 0, 5)).Set(1)
	b := checktest.NewCache().Set(0, issue("B", 6, 4)).Set(1, issue("B", 0, 5))

	m := check.NewMerger(model, []check.Category{{Name: "a", Cache: a}, {Name: "b", Cache: b}}, nil, fastOpts(), zerolog.Nop())

	for unit := range 2 {
		res := m.Merge(context.Background(), unit)
		require.False(t, res.Pending)

		var want []check.Issue
		for _, c := range []*checktest.Cache{a, b} {
			got, _ := c.Get(unit)
			want = append(want, got...)
		}
		assert.ElementsMatch(t, want, res.Issues)
	}
}

func TestMerger_PendingEnqueuesMissing(t *testing.T) {
	model := newModel(t, doctest.New("some text"))

	ready := checktest.NewCache().Set(0, issue("R", 0, 4))
	missing := checktest.NewCache()

	m := check.NewMerger(model, []check.Category{{Name: "ready", Cache: ready}, {Name: "missing", Cache: missing}}, nil, fastOpts(), zerolog.Nop())

	res := m.Merge(context.Background(), 0)
	assert.True(t, res.Pending)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "R", res.Issues[0].RuleID)
	assert.Equal(t, []int{0}, missing.Enqueued())
	assert.Empty(t, ready.Enqueued())
}

func TestMerger_MultiUnitSkippedForSingleUnits(t *testing.T) {
	model := newModel(t, doctest.NewUnits(
		doctest.Unit{Text: "A footnote", Kind: document.KindFootnote},
	))

	sentence := checktest.NewCache().Set(0)
	paragraph := checktest.NewCache()

	m := check.NewMerger(model, []check.Category{
		{Name: "sentence", Cache: sentence},
		{Name: "paragraph", Cache: paragraph, MultiUnit: true},
	}, nil, fastOpts(), zerolog.Nop())

	res := m.Merge(context.Background(), 0)
	assert.False(t, res.Pending)
	assert.Empty(t, res.Issues)
	assert.Empty(t, paragraph.Enqueued())
}

func TestMerger_RevalidatesSpellingInMixedCategory(t *testing.T) {
	model := newModel(t, doctest.New("colour and teh"))

	spelling := func(start, length int) check.Issue {
		is := issue("SPELL", start, length)
		is.Type = check.TypeSpelling
		return is
	}
	mixed := checktest.NewCache().Set(0, spelling(0, 6), spelling(11, 3))
	plain := checktest.NewCache().Set(0, spelling(0, 6))

	speller := checktest.Speller{"colour": true}

	t.Run("mixed drops words now spelled correctly", func(t *testing.T) {
		m := check.NewMerger(model, []check.Category{{Name: "mixed", Cache: mixed, Mixed: true}}, speller, fastOpts(), zerolog.Nop())
		res := m.Merge(context.Background(), 0)
		require.Len(t, res.Issues, 1)
		assert.Equal(t, 11, res.Issues[0].Start)
	})

	t.Run("non mixed keeps spelling issues", func(t *testing.T) {
		m := check.NewMerger(model, []check.Category{{Name: "plain", Cache: plain}}, speller, fastOpts(), zerolog.Nop())
		res := m.Merge(context.Background(), 0)
		assert.Len(t, res.Issues, 1)
	})
}

func TestMerger_CancelReturnsPendingImmediately(t *testing.T) {
	model := newModel(t, doctest.New("text"))
	missing := checktest.NewCache()

	m := check.NewMerger(model, []check.Category{{Name: "missing", Cache: missing}}, nil,
		check.MergerOptions{PollAttempts: 10, PollDelay: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan check.Result, 1)
	go func() { done <- m.Merge(ctx, 0) }()

	cancel()

	select {
	case res := <-done:
		assert.True(t, res.Pending)
		assert.Empty(t, missing.Enqueued())
	case <-time.After(5 * time.Second):
		t.Fatal("Merge did not return after cancel")
	}
}

func TestMerger_Peek(t *testing.T) {
	model := newModel(t, doctest.New("text"))
	missing := checktest.NewCache()
	ready := checktest.NewCache().Set(0, issue("R", 0, 4))

	m := check.NewMerger(model, []check.Category{{Name: "r", Cache: ready}, {Name: "m", Cache: missing}}, nil, fastOpts(), zerolog.Nop())

	res := m.Peek(0)
	assert.True(t, res.Pending)
	assert.Len(t, res.Issues, 1)
	assert.Empty(t, missing.Enqueued())
}
