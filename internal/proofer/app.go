package proofer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/proofer/internal/checker"
	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/config"
	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/data/stores"
	"github.com/hay-kot/proofer/internal/data/textdoc"
)

// App is the central entry point for proofreading operations.
// Commands and the TUI consume App instead of wiring components themselves.
type App struct {
	Config *config.Config
	Prefs  *stores.PrefsStore
	Rules  *check.RuleState
	Words  *check.Dictionary

	log zerolog.Logger
}

// NewApp loads persisted preferences and builds the shared rule and word
// state.
func NewApp(cfg *config.Config, prefs *stores.PrefsStore, log zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Prefs:  prefs,
		Rules:  check.NewRuleState(prefs.Deactivated(), prefs),
		Words:  check.NewDictionary(prefs.Words(), prefs),
		log:    log,
	}
}

// Options maps the configuration onto session options.
func (a *App) Options() Options {
	c := a.Config.Check
	return Options{
		Navigate: navigate.Options{
			CheckType:       navigate.CheckType(c.CheckType),
			IncludeShapes:   c.IncludeShapes,
			Languages:       c.Languages,
			DefaultLanguage: c.DefaultLanguage,
			MaxPasses:       c.MaxPasses,
			PollDelay:       c.PollDelay,
		},
		Merge: check.MergerOptions{
			PollAttempts: c.PollAttempts,
			PollDelay:    c.PollDelay,
		},
		UndoCapacity: a.Config.Undo.Capacity,
	}
}

// Speller builds the spelling checker, loading the configured word list.
func (a *App) Speller() (*checker.Speller, error) {
	sp := checker.NewSpeller(a.Words, a.Config.Checker.MinWordLength)
	if path := a.Config.Checker.Dictionary; path != "" {
		if err := sp.LoadWordsFile(path); err != nil {
			return nil, err
		}
	}
	return sp, nil
}

// Open loads the file at path and prepares a session over it. Call Start on
// the returned Workspace to run the background checkers.
func (a *App) Open(path string) (*Workspace, error) {
	doc, err := textdoc.Load(path, a.Config.Check.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	model, err := document.Load(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	sp, err := a.Speller()
	if err != nil {
		return nil, err
	}

	pool := checker.NewPool(model, sp, checker.PoolOptions{
		Workers:          a.Config.Checker.Workers,
		MaxSentenceWords: a.Config.Checker.MaxSentenceWords,
	}, a.log)

	sess := New(model, Deps{
		Categories:  pool.Categories(),
		Spell:       sp,
		Rules:       a.Rules,
		Words:       a.Words,
		AutoCorrect: a.Prefs,
	}, a.Options(), a.log)

	return &Workspace{
		Doc:     doc,
		Model:   model,
		Pool:    pool,
		Session: sess,
		lang:    a.Config.Check.DefaultLanguage,
		log:     a.log,
	}, nil
}

// Workspace is one opened file with its checkers and session.
type Workspace struct {
	Doc     *textdoc.Doc
	Model   *document.Model
	Pool    *checker.Pool
	Session *Session

	lang string
	log  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs the background checkers until Close. Every unit is queued.
func (w *Workspace) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.Pool.EnqueueAll()

	go func() {
		defer close(w.done)
		if err := w.Pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Msg("checker pool stopped")
		}
	}()
}

// CheckAll fills every cache synchronously. Used by the non-interactive
// commands instead of Start.
func (w *Workspace) CheckAll(ctx context.Context) error {
	return w.Pool.CheckAll(ctx, w.Model.Len())
}

// Reload re-reads the file after another program changed it and rebinds the
// session. Unsaved edits are lost.
func (w *Workspace) Reload() error {
	doc, err := textdoc.Load(w.Doc.Path(), w.lang)
	if err != nil {
		return err
	}
	return w.rebind(doc)
}

// rebind moves the session to doc. The current document stays bound and open
// when that fails.
func (w *Workspace) rebind(doc *textdoc.Doc) error {
	w.Pool.Reset()
	if err := w.Session.Rebind(doc); err != nil {
		doc.Close()
		w.Pool.EnqueueAll()
		return err
	}
	w.Doc.Close()
	w.Doc = doc
	return nil
}

// Close stops the checkers and ends the session.
func (w *Workspace) Close() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	w.Session.Close()
}
