package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/core/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch {
	case m.found:
		b.WriteString(m.issueView())
	case m.busy:
		b.WriteString(styles.StatusStyle.Render("checking..."))
	default:
		b.WriteString(m.doneView())
	}
	b.WriteString("\n")

	if m.mode != modeBrowse {
		b.WriteString("\n")
		b.WriteString(styles.InputStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header() string {
	name := filepath.Base(m.ws.Doc.Path())
	if m.ws.Doc.Dirty() {
		name += " *"
	}

	checked, total := m.sess.Progress()
	parts := []string{
		styles.TitleStyle.Render("proofer"),
		name,
		styles.MutedStyle.Render(fmt.Sprintf("checked %d/%d", checked, total)),
	}
	if m.stale {
		parts = append(parts, styles.WarningStyle.Render("changed on disk"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) issueView() string {
	is := m.outcome.Issue
	u, _ := m.sess.Unit(m.outcome.Unit)

	before, mid, after := splitIssue(u.Text, is)
	text := before + styles.IssueStyle(is.Color).Render(mid) + after

	loc := m.outcome.Locator
	label := styles.MutedStyle.Render(fmt.Sprintf("%s %d · %s", loc.Kind, loc.Ordinal+1, u.Language))

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(styles.UnitStyle.Width(max(m.width-4, 20)).Render(text))
	b.WriteString("\n")
	b.WriteString(m.detail)
	b.WriteString("\n")

	if len(is.Suggestions) == 0 {
		b.WriteString(styles.MutedStyle.Render("no suggestions: e edits the text"))
		return b.String()
	}
	for i, s := range is.Suggestions {
		if i == m.selected {
			b.WriteString(styles.SelectedStyle.Render("> " + s))
		} else {
			b.WriteString(styles.SuggestionStyle.Render("  " + s))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) doneView() string {
	var msg string
	switch m.outcome.State {
	case navigate.StateRangeExhausted:
		msg = "No more issues in the selection."
	default:
		msg = "No more issues in the document."
	}
	out := styles.SuccessStyle.Render(msg)
	if m.outcome.Pending {
		out += "\n" + styles.WarningStyle.Render("Some text is still being checked; waiting for results.")
	}
	return out
}

// renderDetail renders the message of the current issue as markdown.
func (m *Model) renderDetail() string {
	if !m.found {
		return ""
	}
	md := detailMarkdown(m.outcome.Issue)

	width := max(m.width-4, 20)
	if m.renderer == nil || m.rendererWidth != width {
		style := styles.GlamourStyle()
		noMargin := uint(0)
		style.Document.Margin = &noMargin

		r, err := glamour.NewTermRenderer(
			glamour.WithStyles(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
			return md
		}
		m.renderer, m.rendererWidth = r, width
	}

	out, err := m.renderer.Render(md)
	if err != nil {
		m.log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		return md
	}
	return strings.Trim(out, "\n")
}

func detailMarkdown(is check.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", is.Message)
	fmt.Fprintf(&b, "`%s` %s", is.RuleID, is.Type)
	if is.URL != "" {
		fmt.Fprintf(&b, " · [more information](%s)", is.URL)
	}
	b.WriteString("\n")
	return b.String()
}

// splitIssue cuts text around the issue span. Offsets count runes and are
// clamped to the text.
func splitIssue(text string, is check.Issue) (before, mid, after string) {
	r := []rune(text)
	start := min(max(is.Start, 0), len(r))
	end := min(max(is.End(), start), len(r))
	return string(r[:start]), string(r[start:end]), string(r[end:])
}
