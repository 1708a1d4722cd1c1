package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the check view.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Apply       key.Binding
	Skip        key.Binding
	IgnoreOnce  key.Binding
	IgnoreAll   key.Binding
	Deactivate  key.Binding
	AddWord     key.Binding
	Edit        key.Binding
	ReplaceAll  key.Binding
	AutoCorrect key.Binding
	Language    key.Binding
	Undo        key.Binding
	Save        key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "tab"),
			key.WithHelp("↓/j", "next suggestion"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n", "s"),
			key.WithHelp("n", "skip"),
		),
		IgnoreOnce: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "ignore once"),
		),
		IgnoreAll: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "ignore all"),
		),
		Deactivate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "deactivate rule"),
		),
		AddWord: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "add to dictionary"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		ReplaceAll: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replace all"),
		),
		AutoCorrect: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "auto correct"),
		),
		Language: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "language"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "undo"),
		),
		Save: key.NewBinding(
			key.WithKeys("w", "ctrl+s"),
			key.WithHelp("w", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Skip, k.IgnoreOnce, k.Undo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Apply, k.Edit, k.Skip},
		{k.IgnoreOnce, k.IgnoreAll, k.Deactivate, k.AddWord},
		{k.ReplaceAll, k.AutoCorrect, k.Language, k.Undo},
		{k.Save, k.Reload, k.Help, k.Quit},
	}
}
