package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for prompts.
type keyMap struct {
	submit    key.Binding
	cancel    key.Binding
	interrupt key.Binding
	yes       key.Binding
	no        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
		yes:       key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.cancel, k.interrupt},
		{k.yes, k.no},
	}
}
