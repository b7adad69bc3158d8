package menu

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the reserved [key.Binding] set. Reserved keys win over entry shortcuts.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	choose    key.Binding
	jump      key.Binding
	quit      key.Binding
	interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s/j", "down")),
		choose:    key.NewBinding(key.WithKeys("enter", "space", "right"), key.WithHelp("enter", "select")),
		jump:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "direct select")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.choose, k.jump, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.choose},
		{k.jump, k.quit, k.interrupt},
	}
}

// reserved reports whether r is bound by the engine and therefore unusable as a shortcut.
func (k keyMap) reserved(r rune) bool {
	ev := Key(r)
	for _, b := range []key.Binding{k.up, k.down, k.choose, k.jump, k.quit} {
		if key.Matches(ev, b) {
			return true
		}
	}
	return false
}

func keyMatches(ev KeyEvent, b key.Binding) bool {
	return ev.String() != "" && key.Matches(ev, b)
}
