// Package edit applies user corrections to document units and keeps the
// issue caches consistent with the written text.
package edit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/rs/zerolog"
)

var (
	// ErrNotEditable is returned for auto-generated units.
	ErrNotEditable = errors.New("unit is not editable")
	// ErrNoChange is returned when an edit would not change the text.
	ErrNoChange = errors.New("no change")
	// ErrOutOfRange is returned when the target lies outside the unit text.
	ErrOutOfRange = errors.New("out of range")
)

// Editor writes edits through the document handlers and invalidates the
// caches of every touched unit.
type Editor struct {
	model   *document.Model
	merger  *check.Merger
	ignores *check.Ignores
	log     zerolog.Logger
}

// New creates an Editor. ignores may be nil.
func New(model *document.Model, merger *check.Merger, ignores *check.Ignores, log zerolog.Logger) *Editor {
	return &Editor{model: model, merger: merger, ignores: ignores, log: log}
}

// Replace replaces length runes at start of unit with replacement.
func (e *Editor) Replace(ctx context.Context, unit, start, length int, replacement string) (Span, error) {
	if err := ctx.Err(); err != nil {
		return Span{}, err
	}
	span, err := e.write(unit, start, length, replacement)
	if err != nil {
		return Span{}, err
	}
	e.Recheck(unit)
	return span, nil
}

// ApplyText replaces the text of unit with edited, writing only the span
// that differs.
func (e *Editor) ApplyText(ctx context.Context, unit int, edited string) (Span, error) {
	u, ok := e.model.Unit(unit)
	if !ok {
		return Span{}, fmt.Errorf("unit %d: %w", unit, ErrOutOfRange)
	}
	if u.Text == edited {
		return Span{}, ErrNoChange
	}

	span := Diff(u.Text, edited)
	return e.Replace(ctx, unit, span.Start, span.OldEnd-span.Start, span.Inserted)
}

// ApplySuggestion replaces the text flagged by is with replacement.
func (e *Editor) ApplySuggestion(ctx context.Context, unit int, is check.Issue, replacement string) (Span, error) {
	u, ok := e.model.Unit(unit)
	if !ok {
		return Span{}, fmt.Errorf("unit %d: %w", unit, ErrOutOfRange)
	}
	if document.Slice(u.Text, is.Start, is.End()) == replacement {
		return Span{}, ErrNoChange
	}
	return e.Replace(ctx, unit, is.Start, is.Length, replacement)
}

// Replaced is the result of ReplaceAll. Offsets holds the replaced start
// offsets per unit, ascending and counted in the updated text. Pending lists
// the units whose results were incomplete, so occurrences in them may have
// been missed.
type Replaced struct {
	Offsets map[int][]int
	Pending []int
}

// ReplaceAll replaces word with replacement wherever ruleID flagged exactly
// that word. Occurrences that no longer fit the unit text are skipped.
func (e *Editor) ReplaceAll(ctx context.Context, word, ruleID, replacement string) (Replaced, error) {
	if word == "" || replacement == "" || word == replacement {
		return Replaced{}, ErrNoChange
	}

	wordLen := document.Len(word)
	delta := document.Len(replacement) - wordLen
	out := Replaced{Offsets: make(map[int][]int)}

	for unit := range e.model.Len() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		u, ok := e.model.Unit(unit)
		if !ok || u.AutoGenerated {
			continue
		}

		res := e.merger.Peek(unit)
		if res.Pending {
			out.Pending = append(out.Pending, unit)
		}

		var starts []int
		for _, is := range res.Issues {
			if is.Length != wordLen || is.RuleID != ruleID {
				continue
			}
			if document.Slice(u.Text, is.Start, is.End()) != word {
				continue
			}
			starts = append(starts, is.Start)
		}
		if len(starts) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(starts)))

		var done []int
		for _, start := range starts {
			if _, err := e.write(unit, start, wordLen, replacement); err != nil {
				if errors.Is(err, ErrOutOfRange) {
					e.log.Debug().Int("unit", unit).Int("start", start).Msg("skipping stale occurrence")
					continue
				}
				if len(done) > 0 {
					e.Recheck(unit)
				}
				return out, err
			}
			done = append(done, start)
		}
		if len(done) == 0 {
			continue
		}

		// done is descending in original offsets; occurrence k (ascending)
		// moved by k*delta.
		sort.Ints(done)
		for k := range done {
			done[k] += k * delta
		}
		out.Offsets[unit] = done
		e.Recheck(unit)
	}

	e.log.Info().Str("rule", ruleID).Int("units", len(out.Offsets)).Int("pending", len(out.Pending)).Msg("bulk replace")
	return out, nil
}

// ReplaceEach replaces length runes at every start of unit with replacement,
// working from the last start backwards so earlier starts stay valid. The
// unit is rechecked once.
func (e *Editor) ReplaceEach(ctx context.Context, unit int, starts []int, length int, replacement string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := append([]int(nil), starts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	written := 0
	defer func() {
		if written > 0 {
			e.Recheck(unit)
		}
	}()

	for _, start := range sorted {
		if _, err := e.write(unit, start, length, replacement); err != nil {
			return err
		}
		written++
	}
	return nil
}

// Recheck invalidates unit in every category, drops its ignore markers and
// schedules it again.
func (e *Editor) Recheck(unit int) {
	cats := e.merger.Categories()
	check.Invalidate(cats, unit)
	if e.ignores != nil {
		e.ignores.ClearUnit(unit)
	}
	check.Enqueue(cats, unit)
}

func (e *Editor) write(unit, start, length int, replacement string) (Span, error) {
	u, ok := e.model.Unit(unit)
	if !ok {
		return Span{}, fmt.Errorf("unit %d: %w", unit, ErrOutOfRange)
	}
	if u.AutoGenerated {
		return Span{}, fmt.Errorf("unit %d: %w", unit, ErrNotEditable)
	}
	if start < 0 || length < 0 || start+length > document.Len(u.Text) {
		return Span{}, fmt.Errorf("unit %d [%d, %d): %w", unit, start, start+length, ErrOutOfRange)
	}

	h := document.HandlerFor(u.Kind)
	if err := h.Replace(e.model.Document(), unit, u.Text, start, length, replacement); err != nil {
		return Span{}, fmt.Errorf("write unit %d: %w", unit, err)
	}
	e.model.SetText(unit, document.Splice(u.Text, start, length, replacement))

	return Span{
		Start:    start,
		OldEnd:   start + length,
		NewEnd:   start + document.Len(replacement),
		Removed:  document.Slice(u.Text, start, start+length),
		Inserted: replacement,
	}, nil
}
