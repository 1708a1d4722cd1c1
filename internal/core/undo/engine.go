package undo

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/edit"
	"github.com/rs/zerolog"
)

// ErrUndoUnavailable is returned when the log is empty.
var ErrUndoUnavailable = errors.New("nothing to undo")

// Targets are the components an undo writes back to. Ignores, Rules and
// Words may be nil when the matching actions are never recorded.
type Targets struct {
	Model   *document.Model
	Editor  *edit.Editor
	Ignores *check.Ignores
	Rules   *check.RuleState
	Words   *check.Dictionary
}

// Result reports the undone entry. Applied is false when the entry referred
// to a unit that no longer exists and was discarded.
type Result struct {
	Entry   Entry
	Applied bool
}

// Engine reverts the newest entry of a Log.
type Engine struct {
	log     *Log
	targets Targets
	logger  zerolog.Logger
}

// NewEngine creates an Engine over l.
func NewEngine(l *Log, targets Targets, logger zerolog.Logger) *Engine {
	return &Engine{log: l, targets: targets, logger: logger}
}

// Log returns the underlying log.
func (e *Engine) Log() *Log {
	return e.log
}

// Undo pops the newest entry and reverts it. The entry is consumed even when
// reverting fails. The model is refreshed first so an entry pointing past the
// end of a shrunken document is discarded instead of written.
func (e *Engine) Undo(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if e.log.Len() == 0 {
		return Result{}, ErrUndoUnavailable
	}
	if _, err := e.targets.Model.Refresh(); err != nil {
		return Result{}, err
	}

	entry, ok := e.log.Pop()
	if !ok {
		return Result{}, ErrUndoUnavailable
	}

	if !e.exists(entry) {
		e.logger.Warn().Str("entry", entry.String()).Msg("undo target no longer exists, discarding")
		return Result{Entry: entry}, nil
	}

	if err := e.revert(ctx, entry); err != nil {
		if errors.Is(err, edit.ErrOutOfRange) {
			e.logger.Warn().Err(err).Str("entry", entry.String()).Msg("undo target changed, discarding")
			return Result{Entry: entry}, nil
		}
		return Result{Entry: entry}, fmt.Errorf("undo %s: %w", entry.Action, err)
	}

	e.logger.Debug().Str("entry", entry.String()).Msg("undone")
	return Result{Entry: entry, Applied: true}, nil
}

func (e *Engine) exists(entry Entry) bool {
	n := e.targets.Model.Len()
	switch entry.Action {
	case ActionEdit:
		for unit := range entry.Offsets {
			if unit < 0 || unit >= n {
				return false
			}
		}
		return true
	case ActionIgnoreAll, ActionAddToDictionary:
		return true
	}
	return entry.Y >= 0 && entry.Y < n
}

func (e *Engine) revert(ctx context.Context, entry Entry) error {
	t := e.targets

	switch entry.Action {
	case ActionIgnoreOnce:
		t.Ignores.Remove(entry.Y, entry.X, entry.RuleID)

	case ActionIgnoreAll:
		if entry.Word != "" {
			t.Words.UnignoreWord(entry.Word)
		} else {
			t.Rules.UnignoreRule(entry.RuleID)
		}

	case ActionDeactivateRule:
		if err := t.Rules.Activate(entry.RuleID, entry.Lang); err != nil {
			return err
		}
		t.Editor.Recheck(entry.Y)

	case ActionActivateRule:
		if err := t.Rules.Deactivate(entry.RuleID, entry.Lang); err != nil {
			return err
		}
		t.Editor.Recheck(entry.Y)

	case ActionChangeLanguage:
		return e.restoreLanguage(entry)

	case ActionEdit:
		length := document.Len(entry.Replacement)
		for unit, offsets := range entry.Offsets {
			if err := t.Editor.ReplaceEach(ctx, unit, offsets, length, entry.Word); err != nil {
				return err
			}
		}

	case ActionAddToDictionary:
		return t.Words.RemoveWord(entry.Word)

	default:
		return fmt.Errorf("unsupported action %q", entry.Action)
	}
	return nil
}

func (e *Engine) restoreLanguage(entry Entry) error {
	t := e.targets
	span := entry.Span
	length := span.OldEnd - span.Start

	doc := t.Model.Document()
	if err := doc.SetUnitLanguage(entry.Y, span.Start, length, entry.Lang); err != nil {
		return err
	}
	lang, err := doc.UnitLanguage(entry.Y)
	if err != nil {
		return err
	}
	t.Model.SetLanguage(entry.Y, lang)
	t.Editor.Recheck(entry.Y)
	return nil
}
