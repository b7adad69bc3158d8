package menu

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	marker      = "▶"
	separator   = "─"
)

// Styles is the stylesheet a [Menu] renders with.
type Styles struct {
	Title    lipgloss.Style
	Cursor   lipgloss.Style
	Item     lipgloss.Style
	Disabled lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Warn     lipgloss.Style
}

// DefaultStyles returns the colored stylesheet.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).MarginBottom(1),
		Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Item:     lipgloss.NewStyle(),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		Warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
}

// PlainStyles renders without any color or decoration.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:    plain.MarginBottom(1),
		Cursor:   plain,
		Item:     plain,
		Disabled: plain,
		Hint:     plain,
		Error:    plain,
		Warn:     plain,
	}
}

// frame builds one full screen: title, entries, pending notice and the key legend.
func (m *Menu) frame() string {
	var b strings.Builder

	if m.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")

	for i, e := range m.entries {
		b.WriteString(m.line(i, e))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	b.WriteString("\n")
	return b.String()
}

func (m *Menu) line(i int, e Entry) string {
	if e.separator {
		return "    " + m.styles.Disabled.Render(e.Label)
	}

	number := "  "
	if i < 9 {
		number = fmt.Sprintf("%d.", i+1)
	}

	label := e.Label
	if e.Shortcut != 0 {
		label = fmt.Sprintf("%s [%c]", label, e.Shortcut)
	}

	var line string
	switch {
	case !e.Enabled:
		line = "    " + m.styles.Disabled.Render(number+" "+label)
	case i == m.cursor:
		line = "  " + m.styles.Cursor.Render(marker+" "+number+" "+label)
	default:
		line = "    " + m.styles.Item.Render(number+" "+label)
	}

	if e.Hint != "" {
		line += "  " + m.styles.Hint.Render(e.Hint)
	}
	return line
}

func (m *Menu) render(w io.Writer) error {
	if _, err := io.WriteString(w, m.frame()); err != nil {
		return fmt.Errorf("failed to render menu: %w", err)
	}
	return nil
}

func newHelp() help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	return h
}
