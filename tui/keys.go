package tui

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	toggle key.Binding
	skip   key.Binding
	back   key.Binding
	detach key.Binding
}

var defaultKeymap = keymap{
	toggle: key.NewBinding(
		key.WithKeys(" ", "p", "enter"),
		key.WithHelp("space", "start/pause/resume"),
	),
	skip: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "skip stage"),
	),
	back: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q", "leave"),
	),
	detach: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "detach"),
	),
}
