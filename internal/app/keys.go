package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the app-level keyboard bindings. The checklist screen
// handles its own step-specific keys.
type KeyMap struct {
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
	// ForceQuit works on every screen, including ones where plain
	// letters are being typed into an input.
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
