// Package navigate walks a document unit by unit to find the next issue the
// user should review.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/rs/zerolog"
)

// UnknownLanguage marks text with no language set.
const UnknownLanguage = "zxx"

// DefaultMaxPasses bounds how often a pass with pending results is retried.
const DefaultMaxPasses = 20

// ErrInvalidRange is returned by SelectRange for an empty or misplaced range.
var ErrInvalidRange = errors.New("invalid range")

// Options configures a Navigator.
type Options struct {
	CheckType       CheckType
	IncludeShapes   bool
	Languages       []string // empty means every language is checked
	DefaultLanguage string
	MaxPasses       int
	PollDelay       time.Duration
}

// Suppressions holds the user's decisions that hide issues. Any field may be
// nil.
type Suppressions struct {
	Ignores *check.Ignores
	Rules   *check.RuleState
	Words   *check.Dictionary
}

// Navigator owns the scan cursor and finds issues in document order.
// It is not safe for concurrent use.
type Navigator struct {
	model  *document.Model
	merger *check.Merger
	supp   Suppressions
	opts   Options
	log    zerolog.Logger

	cursor Cursor
	state  State
	last   *check.Issue

	// pendingLeft survives found issues until a pass from the anchor sees
	// every unit checked.
	pendingLeft bool
}

// New creates a Navigator in the idle state.
func New(model *document.Model, merger *check.Merger, supp Suppressions, opts Options, log zerolog.Logger) *Navigator {
	if opts.CheckType == "" {
		opts.CheckType = CheckAll
	}
	if opts.MaxPasses < 1 {
		opts.MaxPasses = DefaultMaxPasses
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = check.DefaultPollDelay
	}
	return &Navigator{
		model:  model,
		merger: merger,
		supp:   supp,
		opts:   opts,
		log:    log,
		cursor: Cursor{Anchor: -1},
		state:  StateIdle,
	}
}

// Cursor returns a copy of the scan cursor.
func (n *Navigator) Cursor() Cursor {
	c := n.cursor
	if c.Range != nil {
		r := *c.Range
		c.Range = &r
	}
	return c
}

// State returns the state reached by the last step.
func (n *Navigator) State() State {
	return n.state
}

// Current returns the issue of the last StateFound outcome.
func (n *Navigator) Current() (check.Issue, int, bool) {
	if n.state != StateFound || n.last == nil {
		return check.Issue{}, 0, false
	}
	return *n.last, n.cursor.Y, true
}

// Reset clears the cursor, the anchor and any range.
func (n *Navigator) Reset() {
	n.cursor = Cursor{Anchor: -1}
	n.state = StateIdle
	n.last = nil
	n.pendingLeft = false
}

// SelectRange limits the following scan to [start, end) counted from the
// start of unit. The scan does not wrap.
func (n *Navigator) SelectRange(unit, start, end int) error {
	if unit < 0 || unit >= n.model.Len() || start < 0 || end <= start {
		return fmt.Errorf("unit %d [%d, %d): %w", unit, start, end, ErrInvalidRange)
	}
	n.cursor = Cursor{X: start, Y: unit, Anchor: unit, Range: &Range{Start: start, End: end}}
	n.state = StateIdle
	n.last = nil
	n.pendingLeft = false
	return nil
}

// Skip moves the cursor past the current issue.
func (n *Navigator) Skip() {
	if n.state == StateFound && n.last != nil {
		n.cursor.X = n.last.Start + 1
	}
	n.last = nil
	n.state = StateScanning
}

// Seek moves the cursor to offset x of unit y and starts a new pass there.
// A range scan keeps its anchor.
func (n *Navigator) Seek(x, y int) {
	n.cursor.X, n.cursor.Y = max(x, 0), max(y, 0)
	n.cursor.Wrapped = false
	if n.cursor.Range == nil {
		n.cursor.Anchor = n.cursor.Y
	}
	n.last = nil
	n.state = StateScanning
}

// FindNext returns the next issue at or after the cursor. A fresh scan starts
// at the document's cursor position; otherwise the scan resumes where the
// last one stopped. Exhaustion is reported through Outcome.State. Errors come
// from the document or from ctx; in both cases the cursor is left unchanged.
func (n *Navigator) FindNext(ctx context.Context, startAtBeginning bool) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	changed, err := n.model.Refresh()
	if err != nil {
		return Outcome{}, err
	}
	if changed && n.cursor.Range == nil {
		n.log.Debug().Int("units", n.model.Len()).Msg("unit count changed, restarting scan")
		startAtBeginning = true
	}

	start := n.cursor
	if n.cursor.Range != nil {
		if startAtBeginning {
			start.X, start.Y, start.Wrapped = n.cursor.Range.Start, n.cursor.Anchor, false
			n.pendingLeft = false
		}
	} else if startAtBeginning || n.cursor.Anchor < 0 {
		doc := n.model.Document()
		y, x, err := doc.CursorPosition()
		if err != nil {
			return Outcome{}, fmt.Errorf("cursor position: %w", err)
		}
		if y < 0 || y >= n.model.Len() {
			x, y = 0, 0
		}
		start = Cursor{X: max(x, 0), Y: y, Anchor: y}
		n.pendingLeft = false
	}

	var out Outcome
	for pass := 1; ; pass++ {
		var (
			end     Cursor
			pending bool
		)
		out, end, pending, err = n.pass(ctx, start)
		if err != nil {
			return Outcome{}, err
		}
		n.pendingLeft = n.pendingLeft || pending
		out.Pending = n.pendingLeft

		// A range scan ends at its first exhaustion.
		if out.State == StateFound || !n.pendingLeft || start.Range != nil || pass >= n.opts.MaxPasses {
			n.finish(out, end)
			break
		}

		n.log.Debug().Int("pass", pass).Int("anchor", start.Anchor).Msg("units pending, retrying from anchor")
		if !sleep(ctx, n.opts.PollDelay) {
			return Outcome{}, ctx.Err()
		}
		start = Cursor{Y: start.Anchor, Anchor: start.Anchor}
		n.pendingLeft = false
	}

	if out.State == StateFound {
		doc := n.model.Document()
		if err := doc.SetCursorPosition(out.Unit, out.Issue.Start); err != nil {
			return out, fmt.Errorf("set cursor: %w", err)
		}
	}
	return out, nil
}

func (n *Navigator) finish(out Outcome, end Cursor) {
	n.state = out.State
	switch out.State {
	case StateFound:
		n.cursor = end
		is := out.Issue
		n.last = &is
	case StateExhaustedAll, StateRangeExhausted:
		n.cursor = Cursor{Anchor: -1}
		n.last = nil
		n.pendingLeft = false
	}
}

// pass walks forward from start once and returns the first visible issue,
// the cursor at that issue and whether any merge was pending.
func (n *Navigator) pass(ctx context.Context, start Cursor) (Outcome, Cursor, bool, error) {
	cur := start
	pending := false
	total := n.model.Len()

	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, cur, pending, err
		}

		if cur.Range != nil {
			if cur.Y >= total {
				return Outcome{State: StateRangeExhausted}, cur, pending, nil
			}
			if n.model.Offset(cur.Anchor, cur.Y) >= cur.Range.End {
				return Outcome{State: StateRangeExhausted}, cur, pending, nil
			}
			if cur.Y == cur.Anchor {
				cur.X = max(cur.X, cur.Range.Start)
			}
		} else {
			if !cur.Wrapped && cur.Y >= total {
				n.log.Debug().Int("anchor", cur.Anchor).Str("state", string(StateExhaustedForward)).Msg("wrapping to start")
				cur.Wrapped, cur.X, cur.Y = true, 0, 0
				continue
			}
			if cur.Wrapped && cur.Y >= cur.Anchor {
				return Outcome{State: StateExhaustedAll}, cur, pending, nil
			}
		}

		is, ok, unitPending := n.scanUnit(ctx, cur)
		if err := ctx.Err(); err != nil {
			return Outcome{}, cur, pending, err
		}
		pending = pending || unitPending
		if ok {
			cur.X = is.Start
			loc, _ := n.model.Locate(cur.Y)
			return Outcome{State: StateFound, Issue: is, Unit: cur.Y, Locator: loc}, cur, pending, nil
		}

		cur.Y++
		cur.X = 0
	}
}

// scanUnit returns the first visible issue of unit cur.Y at or after cur.X.
func (n *Navigator) scanUnit(ctx context.Context, cur Cursor) (check.Issue, bool, bool) {
	u, ok := n.model.Unit(cur.Y)
	if !ok || u.AutoGenerated {
		return check.Issue{}, false, false
	}

	lang := n.language(u.Language)
	if len(n.opts.Languages) > 0 && !slices.Contains(n.opts.Languages, lang) {
		return check.Issue{}, false, false
	}

	res := n.merger.Merge(ctx, cur.Y)
	limit := -1
	if cur.Range != nil {
		limit = cur.Range.End - n.model.Offset(cur.Anchor, cur.Y)
	}

	for _, is := range res.Issues {
		if is.Start < cur.X {
			continue
		}
		if limit >= 0 && is.Start >= limit {
			break
		}
		if !n.visible(cur.Y, u, lang, is) {
			continue
		}
		return is, true, res.Pending
	}
	return check.Issue{}, false, res.Pending
}

func (n *Navigator) language(lang string) string {
	if (lang == "" || lang == UnknownLanguage) && n.opts.DefaultLanguage != "" {
		return n.opts.DefaultLanguage
	}
	return lang
}

func (n *Navigator) visible(unit int, u document.Unit, lang string, is check.Issue) bool {
	switch n.opts.CheckType {
	case CheckSpelling:
		if !is.IsSpelling() {
			return false
		}
	case CheckGrammar:
		if is.IsSpelling() {
			return false
		}
	}

	if u.Kind == document.KindShape && !n.opts.IncludeShapes && !is.IsSpelling() {
		return false
	}

	if n.supp.Ignores != nil && n.supp.Ignores.Has(unit, is.Start, is.RuleID) {
		return false
	}
	if n.supp.Rules != nil && !n.supp.Rules.Active(is.RuleID, lang) {
		return false
	}
	if is.IsSpelling() && n.supp.Words != nil {
		if n.supp.Words.Known(document.Slice(u.Text, is.Start, is.End())) {
			return false
		}
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
