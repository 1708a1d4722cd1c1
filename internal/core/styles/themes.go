package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette. Colors are hex strings;
// an empty color means the terminal default.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "default"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"default": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"light": {
		Primary:    lipgloss.Color("#2e7de9"),
		Secondary:  lipgloss.Color("#007197"),
		Foreground: lipgloss.Color("#3760bf"),
		Muted:      lipgloss.Color("#848cb5"),
		Background: lipgloss.Color("#e1e2e7"),
		Surface:    lipgloss.Color("#c4c8da"),
		Success:    lipgloss.Color("#587539"),
		Warning:    lipgloss.Color("#8c6c3e"),
		Error:      lipgloss.Color("#f52a65"),
	},
	"mono": {},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}
