// Package tui implements the interactive check view: one issue at a time
// with its suggestions and the actions that resolve it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/core/validate"
	"github.com/hay-kot/proofer/internal/proofer"
)

const progressInterval = 250 * time.Millisecond

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeReplaceAll
	modeAutoCorrect
	modeLanguage
)

// Options configures the check view.
type Options struct {
	Workspace *proofer.Workspace
	// Changes receives a value when the file changed on disk. May be nil.
	Changes <-chan struct{}
	Logger  zerolog.Logger
}

// Model is the bubbletea model of the check view.
type Model struct {
	ws      *proofer.Workspace
	sess    *proofer.Session
	ctx     context.Context
	changes <-chan struct{}
	log     zerolog.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model
	mode  mode

	width  int
	height int

	outcome  navigate.Outcome
	found    bool
	selected int
	busy     bool
	stale    bool
	quitArm  bool
	status   string
	err      error
	lost     bool

	renderer      *glamour.TermRenderer
	rendererWidth int
	detail        string
}

type outcomeMsg struct {
	out  navigate.Outcome
	err  error
	note string
}

type progressMsg struct{}

type fileChangedMsg struct{}

type savedMsg struct {
	err error
}

type reloadedMsg struct {
	err error
}

// New creates the check view.
func New(ctx context.Context, opts Options) Model {
	in := textinput.New()
	in.CharLimit = 256

	return Model{
		ws:      opts.Workspace,
		sess:    opts.Workspace.Session,
		ctx:     ctx,
		changes: opts.Changes,
		log:     opts.Logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   in,
		width:   80,
		busy:    true,
	}
}

// Lost reports whether the view ended because the document went away.
func (m Model) Lost() bool {
	return m.lost
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.find(true), tickProgress(), m.waitForChange())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-20, 10)
		m.detail = m.renderDetail()
		return m, nil

	case outcomeMsg:
		return m.handleOutcome(msg)

	case progressMsg:
		checked, total := m.sess.Progress()
		if checked < total {
			return m, tickProgress()
		}
		if m.outcome.Pending && !m.found && !m.busy {
			m.busy = true
			return m, m.find(false)
		}
		return m, nil

	case fileChangedMsg:
		changed, err := m.ws.Doc.ChangedOnDisk()
		if err != nil {
			m.log.Warn().Err(err).Msg("check file on disk")
		}
		if changed {
			m.stale = true
			m.status = "file changed on disk: R reloads, w overwrites"
		}
		return m, m.waitForChange()

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.stale = false
		m.status = "saved " + m.ws.Doc.Path()
		return m, nil

	case reloadedMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		m.stale = false
		return m, m.find(true)

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if errors.Is(msg.err, document.ErrSessionLost) || errors.Is(msg.err, proofer.ErrSessionClosed) {
			m.lost = true
			m.status = "the document is no longer available"
			return m, tea.Quit
		}
		m.err = msg.err
		return m, nil
	}

	m.err = nil
	m.outcome = msg.out
	m.found = msg.out.State == navigate.StateFound
	m.selected = 0
	m.status = msg.note
	m.detail = m.renderDetail()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.ws.Doc.Dirty() && !m.quitArm {
			m.quitArm = true
			m.status = "unsaved changes: press q again to quit, w to save"
			return m, nil
		}
		return m, tea.Quit
	}
	m.quitArm = false

	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.found && m.selected < len(m.outcome.Issue.Suggestions)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.busy = true
		return m, m.save()

	case key.Matches(msg, m.keys.Reload):
		if !m.stale {
			return m, nil
		}
		m.busy = true
		return m, m.reload()

	case key.Matches(msg, m.keys.Undo):
		m.busy = true
		return m, m.undo()
	}

	if !m.found {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Apply):
		if s, ok := m.suggestion(); ok {
			m.busy = true
			return m, m.act("applied", func() error {
				return m.sess.ApplySuggestion(m.ctx, s)
			})
		}
		return m.prompt(modeEdit, "Replace with: ", m.issueText())

	case key.Matches(msg, m.keys.Skip):
		m.busy = true
		return m, m.skip()

	case key.Matches(msg, m.keys.IgnoreOnce):
		m.busy = true
		return m, m.act("ignored once", m.sess.IgnoreOnce)

	case key.Matches(msg, m.keys.IgnoreAll):
		m.busy = true
		return m, m.act("ignored everywhere", m.sess.IgnoreAll)

	case key.Matches(msg, m.keys.Deactivate):
		m.busy = true
		return m, m.act("rule "+m.outcome.Issue.RuleID+" deactivated", m.sess.DeactivateRule)

	case key.Matches(msg, m.keys.AddWord):
		m.busy = true
		return m, m.act("added to dictionary", m.sess.AddToDictionary)

	case key.Matches(msg, m.keys.Edit):
		return m.prompt(modeEdit, "Replace with: ", m.issueText())

	case key.Matches(msg, m.keys.ReplaceAll):
		s, _ := m.suggestion()
		return m.prompt(modeReplaceAll, "Replace all with: ", s)

	case key.Matches(msg, m.keys.AutoCorrect):
		s, _ := m.suggestion()
		return m.prompt(modeAutoCorrect, "Always correct to: ", s)

	case key.Matches(msg, m.keys.Language):
		u, _ := m.sess.Unit(m.outcome.Unit)
		return m.prompt(modeLanguage, "Language: ", u.Language)
	}

	return m, nil
}

func (m Model) prompt(md mode, label, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		md := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		return m.submit(md, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(md mode, value string) (tea.Model, tea.Cmd) {
	is := m.outcome.Issue
	word := m.issueText()

	switch md {
	case modeEdit:
		m.busy = true
		return m, m.act("edited", func() error {
			return m.sess.ApplySuggestion(m.ctx, value)
		})

	case modeReplaceAll, modeAutoCorrect:
		m.busy = true
		auto := md == modeAutoCorrect
		return m, func() tea.Msg {
			bulk := m.sess.ApplyBulkEdit
			if auto {
				bulk = m.sess.AutoCorrect
			}
			res, err := bulk(m.ctx, word, is.RuleID, value)
			if err != nil {
				return outcomeMsg{err: err}
			}
			note := fmt.Sprintf("replaced %q in %d units", word, res.Units)
			if res.Pending > 0 {
				note += fmt.Sprintf(", %d units still being checked", res.Pending)
			}
			out, err := m.sess.FindNext(m.ctx, false)
			return outcomeMsg{out: out, err: err, note: note}
		}

	case modeLanguage:
		if err := validate.LanguageTag(value); err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		return m, m.act("language set to "+value, func() error {
			return m.sess.ChangeLanguage(m.ctx, value, false)
		})
	}

	return m, nil
}

func (m Model) suggestion() (string, bool) {
	s := m.outcome.Issue.Suggestions
	if !m.found || m.selected >= len(s) {
		return "", false
	}
	return s[m.selected], true
}

// issueText returns the flagged text of the current issue.
func (m Model) issueText() string {
	if !m.found {
		return ""
	}
	u, ok := m.sess.Unit(m.outcome.Unit)
	if !ok {
		return ""
	}
	_, mid, _ := splitIssue(u.Text, m.outcome.Issue)
	return mid
}

func (m Model) find(startAtBeginning bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.sess.FindNext(m.ctx, startAtBeginning)
		return outcomeMsg{out: out, err: err}
	}
}

func (m Model) skip() tea.Cmd {
	return func() tea.Msg {
		out, err := m.sess.Skip(m.ctx)
		return outcomeMsg{out: out, err: err}
	}
}

// act runs fn and moves on to the next issue.
func (m Model) act(note string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return outcomeMsg{err: err}
		}
		out, err := m.sess.FindNext(m.ctx, false)
		return outcomeMsg{out: out, err: err, note: note}
	}
}

func (m Model) undo() tea.Cmd {
	return func() tea.Msg {
		res, err := m.sess.Undo(m.ctx)
		if err != nil {
			return outcomeMsg{err: err}
		}
		note := "undid " + string(res.Entry.Action)
		if !res.Applied {
			note = "discarded " + string(res.Entry.Action) + ": its text is gone"
		}
		out, err := m.sess.FindNext(m.ctx, false)
		return outcomeMsg{out: out, err: err, note: note}
	}
}

func (m Model) save() tea.Cmd {
	doc := m.ws.Doc
	return func() tea.Msg {
		return savedMsg{err: doc.Save()}
	}
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{err: m.ws.Reload()}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func tickProgress() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressMsg{}
	})
}
