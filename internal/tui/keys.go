package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	enter   key.Binding
	esc     key.Binding
	quit    key.Binding
	commit  key.Binding
	remove  key.Binding
	copy    key.Binding
	restore key.Binding
	discard key.Binding
	yes     key.Binding
	no      key.Binding
}

var keys = keyMap{
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	commit:  key.NewBinding(key.WithKeys("ctrl+s")),
	remove:  key.NewBinding(key.WithKeys("ctrl+d")),
	copy:    key.NewBinding(key.WithKeys("ctrl+y")),
	restore: key.NewBinding(key.WithKeys("r")),
	discard: key.NewBinding(key.WithKeys("d")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n")),
}
