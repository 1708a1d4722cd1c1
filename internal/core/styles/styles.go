// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// currentTheme is the name passed to the last SetTheme call.
var currentTheme string

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	SuccessStyle       lipgloss.Style
	WarningStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style

	// TUI styles.
	TitleStyle      lipgloss.Style
	UnitStyle       lipgloss.Style
	SelectedStyle   lipgloss.Style
	SuggestionStyle lipgloss.Style
	StatusStyle     lipgloss.Style
	InputStyle      lipgloss.Style
	BannerStyle     lipgloss.Style
)

// SetTheme activates the named theme and rebuilds all global styles.
// Unknown names fall back to the default theme.
func SetTheme(name string) {
	p, ok := themes[name]
	if !ok {
		name = DefaultTheme
		p = themes[name]
	}
	currentTheme = name
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	MutedStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	UnitStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 1)
	SelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	SuggestionStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)
	BannerStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(DefaultTheme)
}

// IssueStyle returns the highlight for an issue drawn in color, a hex string.
// The color is blended into the background so the text stays readable; when
// either color is unknown the text is shown reversed.
func IssueStyle(color string) lipgloss.Style {
	if color == "" {
		color = string(ColorError)
	}

	base := lipgloss.NewStyle().Underline(true)
	fg, err := colorful.Hex(color)
	if err != nil {
		return base.Reverse(true)
	}
	bg, err := colorful.Hex(string(ColorBackground))
	if err != nil {
		return base.Reverse(true)
	}

	return base.
		Background(lipgloss.Color(Blend(fg, bg, 0.6))).
		Foreground(lipgloss.Color(fg.Clamped().Hex()))
}

// Blend mixes a into b in Lab space. t is the share of b.
func Blend(a, b colorful.Color, t float64) string {
	return a.BlendLab(b, t).Clamped().Hex()
}

func colorHexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	switch currentTheme {
	case "mono":
		return glamourstyles.NoTTYStyleConfig
	case "light":
		return themed(glamourstyles.LightStyleConfig)
	default:
		return themed(glamourstyles.DarkStyleConfig)
	}
}

func themed(cfg ansi.StyleConfig) ansi.StyleConfig {
	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}

// FormTheme returns a huh theme matching the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorSecondary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}
