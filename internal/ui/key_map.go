package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the checkpoint prompt.
type keyMap struct {
	left     key.Binding
	right    key.Binding
	choose   key.Binding
	cont     key.Binding
	skip     key.Binding
	stop     key.Binding
	showHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left:     key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "previous")),
		right:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next")),
		choose:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose")),
		cont:     key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "continue")),
		skip:     key.NewBinding(key.WithKeys("s", "n"), key.WithHelp("s", "skip")),
		stop:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "stop")),
		showHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.choose, k.cont, k.skip, k.stop, k.showHelp}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.choose},
		{k.cont, k.skip, k.stop},
		{k.showHelp},
	}
}
