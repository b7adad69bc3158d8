package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/muzik/internal/menu"
)

// Styles is the application palette.
var Styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	muted lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		muted: NewStyle(h),
	}
}

// Plain is a palette that renders text unchanged, used when colors are disabled.
func Plain() *Palette {
	plain := lipgloss.NewStyle()
	return &Palette{title: plain.MarginBottom(1), ok: plain, err: plain, warn: plain, help: plain, muted: plain}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// MenuStyles converts the palette into a [menu.Styles] stylesheet.
func (p *Palette) MenuStyles() menu.Styles {
	return menu.Styles{
		Title:    p.title,
		Cursor:   p.ok,
		Item:     lipgloss.NewStyle(),
		Disabled: p.muted,
		Hint:     p.help,
		Error:    p.err,
		Warn:     p.warn,
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
