package tui

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeyMap defines the key bindings for the console.
type ConsoleKeyMap struct {
	Submit   key.Binding
	History  key.Binding
	Forward  key.Binding
	NextPane key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ConsoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.History, k.NextPane, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ConsoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.History, k.Forward},
		{k.NextPane, k.Quit},
	}
}

// DefaultConsoleKeyMap returns default key bindings.
// Letters are reserved for the input line.
func DefaultConsoleKeyMap() ConsoleKeyMap {
	return ConsoleKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		History: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous"),
		),
		Forward: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "objects/points"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}
