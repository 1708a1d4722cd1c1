// Package proofer owns the interactive proofreading session: one document,
// its scan cursor, its undo log and the components acting on them.
package proofer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/edit"
	"github.com/hay-kot/proofer/internal/core/logging"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/core/undo"
	"github.com/rs/zerolog"
)

var (
	// ErrSessionClosed is returned by every call after Close or after the
	// document was lost.
	ErrSessionClosed = errors.New("session closed")
	// ErrNoIssue is returned by actions that need a current issue when the
	// last scan did not stop at one.
	ErrNoIssue = errors.New("no current issue")
)

// AutoCorrector records replacement pairs the user wants applied
// automatically in the future.
type AutoCorrector interface {
	AddCorrection(word, replacement, lang string) error
}

// Options configures a Session.
type Options struct {
	Navigate     navigate.Options
	Merge        check.MergerOptions
	UndoCapacity int
}

// Deps are the collaborators shared with the background checkers. Rules and
// Words are created empty when nil; AutoCorrect may be nil.
type Deps struct {
	Categories  []check.Category
	Spell       check.SpellChecker
	Rules       *check.RuleState
	Words       *check.Dictionary
	AutoCorrect AutoCorrector
}

// Session serializes every operation on one bound document.
type Session struct {
	mu     sync.Mutex
	id     string
	closed bool

	model   *document.Model
	merger  *check.Merger
	ignores *check.Ignores
	rules   *check.RuleState
	words   *check.Dictionary
	auto    AutoCorrector
	nav     *navigate.Navigator
	editor  *edit.Editor
	history *undo.Engine
	opts    Options

	base zerolog.Logger
	log  zerolog.Logger
}

// New starts a session over model.
func New(model *document.Model, deps Deps, opts Options, log zerolog.Logger) *Session {
	if deps.Rules == nil {
		deps.Rules = check.NewRuleState(nil, nil)
	}
	if deps.Words == nil {
		deps.Words = check.NewDictionary(nil, nil)
	}

	id := uuid.NewString()
	base := log
	log = logging.Session(base, id, model.Document().ID())

	s := &Session{
		id:      id,
		base:    base,
		model:   model,
		ignores: check.NewIgnores(),
		rules:   deps.Rules,
		words:   deps.Words,
		auto:    deps.AutoCorrect,
		opts:    opts,
		log:     log,
	}

	s.merger = check.NewMerger(model, deps.Categories, deps.Spell, opts.Merge, log.With().Str("cmp", "merge").Logger())
	s.nav = navigate.New(model, s.merger, navigate.Suppressions{
		Ignores: s.ignores,
		Rules:   s.rules,
		Words:   s.words,
	}, opts.Navigate, log.With().Str("cmp", "navigate").Logger())
	s.editor = edit.New(model, s.merger, s.ignores, log.With().Str("cmp", "edit").Logger())
	s.history = undo.NewEngine(undo.NewLog(opts.UndoCapacity), undo.Targets{
		Model:   model,
		Editor:  s.editor,
		Ignores: s.ignores,
		Rules:   s.rules,
		Words:   s.words,
	}, log.With().Str("cmp", "undo").Logger())

	log.Info().Int("units", model.Len()).Msg("session started")
	return s
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Context annotates ctx with the session and document IDs for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = logging.WithSessionID(ctx, s.id)
	return logging.WithDocumentID(ctx, s.model.Document().ID())
}

// Closed reports whether the session was closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Unit returns the cached unit at index i.
func (s *Session) Unit(i int) (document.Unit, bool) {
	return s.model.Unit(i)
}

// Units returns the number of units.
func (s *Session) Units() int {
	return s.model.Len()
}

// Cursor returns the scan cursor.
func (s *Session) Cursor() navigate.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Cursor()
}

// Progress returns how many units have complete results.
func (s *Session) Progress() (checked, total int) {
	total = s.model.Len()
	for unit := range total {
		if !s.merger.Peek(unit).Pending {
			checked++
		}
	}
	return checked, total
}

// FindNext moves to the next issue. With startAtBeginning the scan restarts
// at the document cursor.
func (s *Session) FindNext(ctx context.Context, startAtBeginning bool) (navigate.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return navigate.Outcome{}, err
	}

	out, err := s.nav.FindNext(ctx, startAtBeginning)
	if err != nil {
		return navigate.Outcome{}, s.fail(err)
	}
	if out.State.Terminal() {
		s.log.Info().Str("state", string(out.State)).Bool("pending", out.Pending).Msg("check complete")
	}
	return out, nil
}

// Skip leaves the current issue as is and moves to the next one.
func (s *Session) Skip(ctx context.Context) (navigate.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return navigate.Outcome{}, err
	}

	s.nav.Skip()
	out, err := s.nav.FindNext(ctx, false)
	if err != nil {
		return navigate.Outcome{}, s.fail(err)
	}
	return out, nil
}

// Current returns the issue the scan stopped at.
func (s *Session) Current() (check.Issue, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

// SelectRange limits the next scan to [start, end) counted from the start
// of unit.
func (s *Session) SelectRange(unit, start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	return s.nav.SelectRange(unit, start, end)
}

// ApplyEdit replaces the text of unit with edited.
func (s *Session) ApplyEdit(ctx context.Context, unit int, edited string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	span, err := s.editor.ApplyText(ctx, unit, edited)
	if err != nil {
		return s.fail(err)
	}
	s.pushEdit(unit, span)
	return nil
}

// ApplySuggestion replaces the current issue's text with replacement.
func (s *Session) ApplySuggestion(ctx context.Context, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok {
		return ErrNoIssue
	}

	span, err := s.editor.ApplySuggestion(ctx, unit, is, replacement)
	if err != nil {
		return s.fail(err)
	}
	s.pushEdit(unit, span)
	return nil
}

func (s *Session) pushEdit(unit int, span edit.Span) {
	s.history.Log().Push(undo.Entry{
		Action:      undo.ActionEdit,
		X:           span.Start,
		Y:           unit,
		Word:        span.Removed,
		Replacement: span.Inserted,
		Offsets:     map[int][]int{unit: {span.Start}},
	})
}

// BulkResult reports a bulk edit. Pending counts units that were still being
// checked and may hold occurrences that were not replaced.
type BulkResult struct {
	Units   int
	Pending int
}

// ApplyBulkEdit replaces word everywhere ruleID flagged it. All replacements
// are undone together.
func (s *Session) ApplyBulkEdit(ctx context.Context, word, ruleID, replacement string) (BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return BulkResult{}, err
	}
	return s.bulkEdit(ctx, word, ruleID, replacement)
}

func (s *Session) bulkEdit(ctx context.Context, word, ruleID, replacement string) (BulkResult, error) {
	replaced, err := s.editor.ReplaceAll(ctx, word, ruleID, replacement)
	offsets := replaced.Offsets
	res := BulkResult{Units: len(offsets), Pending: len(replaced.Pending)}
	if len(offsets) > 0 {
		cur := s.nav.Cursor()
		s.history.Log().Push(undo.Entry{
			Action:      undo.ActionEdit,
			X:           cur.X,
			Y:           cur.Y,
			RuleID:      ruleID,
			Word:        word,
			Replacement: replacement,
			Offsets:     offsets,
		})
	}
	if err != nil {
		return res, s.fail(err)
	}
	return res, nil
}

// AutoCorrect applies a bulk edit and remembers the pair for future
// documents in the current issue's language.
func (s *Session) AutoCorrect(ctx context.Context, word, ruleID, replacement string) (BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return BulkResult{}, err
	}

	res, err := s.bulkEdit(ctx, word, ruleID, replacement)
	if err != nil {
		return res, err
	}

	if s.auto != nil {
		lang := s.opts.Navigate.DefaultLanguage
		if _, unit, ok := s.nav.Current(); ok {
			lang = s.language(unit)
		}
		if err := s.auto.AddCorrection(word, replacement, lang); err != nil {
			return res, fmt.Errorf("record auto correction: %w", err)
		}
	}
	return res, nil
}

// IgnoreOnce hides the current issue at its position.
func (s *Session) IgnoreOnce() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok {
		return ErrNoIssue
	}

	s.ignores.Add(unit, is.Start, is.RuleID)
	s.history.Log().Push(undo.Entry{Action: undo.ActionIgnoreOnce, X: is.Start, Y: unit, RuleID: is.RuleID})
	return nil
}

// IgnoreAll hides the current issue everywhere for the rest of the session:
// the misspelled word for spelling issues, otherwise the rule.
func (s *Session) IgnoreAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok {
		return ErrNoIssue
	}

	entry := undo.Entry{Action: undo.ActionIgnoreAll, X: is.Start, Y: unit, RuleID: is.RuleID}
	if is.IsSpelling() {
		entry.Word = s.word(unit, is)
		s.words.IgnoreWord(entry.Word)
	} else {
		s.rules.IgnoreRule(is.RuleID)
	}
	s.history.Log().Push(entry)
	return nil
}

// DeactivateRule turns the current issue's rule off for the unit language.
func (s *Session) DeactivateRule() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok {
		return ErrNoIssue
	}

	lang := s.language(unit)
	if err := s.rules.Deactivate(is.RuleID, lang); err != nil {
		return err
	}
	s.history.Log().Push(undo.Entry{Action: undo.ActionDeactivateRule, X: is.Start, Y: unit, RuleID: is.RuleID, Lang: lang})
	return nil
}

// ActivateRule turns a deactivated rule back on for lang.
func (s *Session) ActivateRule(ruleID, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.rules.Activate(ruleID, lang); err != nil {
		return err
	}

	cur := s.nav.Cursor()
	y := max(cur.Y, 0)
	if y < s.model.Len() {
		s.editor.Recheck(y)
	}
	s.history.Log().Push(undo.Entry{Action: undo.ActionActivateRule, X: cur.X, Y: y, RuleID: ruleID, Lang: lang})
	return nil
}

// DeactivatedRules returns the rules deactivated for lang.
func (s *Session) DeactivatedRules(lang string) []string {
	return s.rules.Deactivated(lang)
}

// ChangeLanguage sets lang on the current issue's text, or on the whole unit
// when wholeUnit is set, and rechecks the unit.
func (s *Session) ChangeLanguage(ctx context.Context, lang string, wholeUnit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok {
		return ErrNoIssue
	}

	u, _ := s.model.Unit(unit)
	start, length := is.Start, is.Length
	if wholeUnit {
		start, length = 0, document.Len(u.Text)
	}

	doc := s.model.Document()
	if err := doc.SetUnitLanguage(unit, start, length, lang); err != nil {
		return s.fail(fmt.Errorf("set language: %w", err))
	}
	// The document decides how far a span change reaches.
	got, err := doc.UnitLanguage(unit)
	if err != nil {
		return s.fail(fmt.Errorf("read language: %w", err))
	}
	s.model.SetLanguage(unit, got)
	s.editor.Recheck(unit)

	s.history.Log().Push(undo.Entry{
		Action: undo.ActionChangeLanguage,
		X:      is.Start,
		Y:      unit,
		Lang:   u.Language,
		Span:   edit.Span{Start: start, OldEnd: start + length, NewEnd: start + length},
	})
	return nil
}

// AddToDictionary adds the current misspelled word to the user dictionary.
func (s *Session) AddToDictionary() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	is, unit, ok := s.nav.Current()
	if !ok || !is.IsSpelling() {
		return ErrNoIssue
	}

	word := s.word(unit, is)
	if err := s.words.AddWord(word); err != nil {
		return err
	}
	s.history.Log().Push(undo.Entry{Action: undo.ActionAddToDictionary, X: is.Start, Y: unit, Word: word})
	return nil
}

// CanUndo reports whether Undo has an entry to revert.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.Log().Len() > 0
}

// Undo reverts the newest action. When it applied, the next FindNext
// resumes at the position recorded with the action.
func (s *Session) Undo(ctx context.Context) (undo.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return undo.Result{}, err
	}

	units := s.model.Len()
	res, err := s.history.Undo(ctx)
	if err != nil {
		return res, s.fail(err)
	}
	if n := s.model.Len(); n != units {
		s.log.Debug().Int("units", n).Msg("unit count changed during undo, rechecking")
		for unit := range n {
			s.editor.Recheck(unit)
		}
		s.nav.Reset()
	}
	if res.Applied {
		s.nav.Seek(res.Entry.X, res.Entry.Y)
	}
	return res, nil
}

// Rebind attaches the session to doc, for example after the host reopened
// the document. The undo log is only cleared when the document identity
// changed. Rebind reopens a closed session; after a lost document the undo
// log survives, after Close it is already empty.
func (s *Session) Rebind(doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.model.Document().ID()
	if err := s.model.Bind(doc); err != nil {
		return fmt.Errorf("bind document: %w", err)
	}

	if doc.ID() != prev {
		s.history.Log().Clear()
		s.ignores.Clear()
		s.log = logging.Session(s.base, s.id, doc.ID())
		s.log.Info().Str("previous", prev).Msg("document changed, undo cleared")
	}

	for unit := range s.model.Len() {
		s.editor.Recheck(unit)
	}
	s.nav.Reset()
	s.closed = false
	return nil
}

// Close ends the session and clears the undo log.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Log().Clear()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.nav.Reset()
	s.log.Info().Msg("session closed")
}

func (s *Session) ready() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// fail closes the session when err reports a lost document.
func (s *Session) fail(err error) error {
	if errors.Is(err, document.ErrSessionLost) {
		s.log.Error().Err(err).Msg("document lost")
		s.closeLocked()
	}
	return err
}

func (s *Session) language(unit int) string {
	lang := s.model.Language(unit)
	if (lang == "" || lang == navigate.UnknownLanguage) && s.opts.Navigate.DefaultLanguage != "" {
		return s.opts.Navigate.DefaultLanguage
	}
	return lang
}

func (s *Session) word(unit int, is check.Issue) string {
	return document.Slice(s.model.Text(unit), is.Start, is.End())
}
