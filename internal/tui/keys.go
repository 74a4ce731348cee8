package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Yes     key.Binding
	No      key.Binding
	Confirm key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "right"),
			key.WithHelp("y/→", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "left"),
			key.WithHelp("n/←", "no"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "confirm"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.No, k.Yes, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.No, k.Yes}, {k.Confirm, k.Reset, k.Quit}}
}
