package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/log"
)

// ErrInterrupted signals a user interrupt. It unwinds every nested [Menu.Run] untouched.
var ErrInterrupted = errors.New("interrupted")

// Action is invoked when its entry is selected. Returning an error other than [ErrInterrupted]
// reports it inline and keeps the menu running.
type Action func(ctx context.Context) error

// Entry is one row of a [Menu].
type Entry struct {
	Label    string
	Hint     string
	Shortcut rune
	Enabled  bool

	separator bool
	action    Action
}

// EntryOption configures an entry added with [Menu.AddEntry].
type EntryOption func(*Entry)

// WithHint sets secondary text shown after the label.
func WithHint(hint string) EntryOption {
	return func(e *Entry) { e.Hint = hint }
}

// WithShortcut binds r to the entry. Reserved navigation keys are ignored as shortcuts.
func WithShortcut(r rune) EntryOption {
	return func(e *Entry) { e.Shortcut = r }
}

// Disabled renders the entry but makes it unselectable.
func Disabled() EntryOption {
	return func(e *Entry) { e.Enabled = false }
}

type outcome int

const (
	outcomeContinue outcome = iota
	outcomeStop
	outcomeInterrupted
)

// Menu is a titled, keyboard-driven list of entries.
type Menu struct {
	title   string
	entries []Entry
	cursor  int
	active  bool
	notice  string
	clear   bool

	out    io.Writer
	input  KeyReader
	keys   keyMap
	help   help.Model
	styles Styles
	logger *log.Logger
}

// Option configures a [Menu].
type Option func(*Menu)

// WithOutput sets where frames are written. Defaults to [os.Stdout].
func WithOutput(w io.Writer) Option {
	return func(m *Menu) { m.out = w }
}

// WithKeyReader sets the key source. Defaults to [NewKeyReader] over [os.Stdin].
func WithKeyReader(r KeyReader) Option {
	return func(m *Menu) { m.input = r }
}

// WithStyles overrides the stylesheet.
func WithStyles(s Styles) Option {
	return func(m *Menu) { m.styles = s }
}

// WithLogger records action failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Menu) { m.logger = l }
}

// WithoutClear stops each frame from clearing the screen first.
func WithoutClear() Option {
	return func(m *Menu) { m.clear = false }
}

// New creates an active, empty menu.
func New(title string, opts ...Option) *Menu {
	m := &Menu{
		title:  title,
		active: true,
		clear:  true,
		keys:   newKeyMap(),
		help:   newHelp(),
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	if m.input == nil {
		m.input = NewKeyReader(os.Stdin)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// AddEntry appends a selectable entry. A nil action makes the entry a no-op.
func (m *Menu) AddEntry(label string, action Action, opts ...EntryOption) *Menu {
	e := Entry{Label: label, Enabled: true, action: action}
	for _, opt := range opts {
		opt(&e)
	}
	if e.Shortcut != 0 && m.keys.reserved(e.Shortcut) {
		m.logger.Debug("ignoring reserved shortcut", "entry", label, "key", string(e.Shortcut))
		e.Shortcut = 0
	}
	m.push(e)
	return m
}

// AddSeparator appends a disabled divider line.
func (m *Menu) AddSeparator() *Menu {
	m.push(Entry{Label: strings.Repeat(separator, 40), separator: true})
	return m
}

// AddBack appends an entry that stops this menu, returning control to the caller.
func (m *Menu) AddBack(label string) *Menu {
	return m.AddEntry(label, func(context.Context) error {
		m.RequestStop()
		return nil
	})
}

func (m *Menu) push(e Entry) {
	m.entries = append(m.entries, e)
	if e.Enabled && !m.entries[m.cursor].Enabled {
		m.cursor = len(m.entries) - 1
	}
}

// RequestStop ends the loop after the current dispatch.
func (m *Menu) RequestStop() { m.active = false }

func (m *Menu) Active() bool { return m.active }

func (m *Menu) Cursor() int { return m.cursor }

func (m *Menu) Len() int { return len(m.entries) }

func (m *Menu) Title() string { return m.title }

// Entries returns a copy of the menu rows.
func (m *Menu) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Run renders and dispatches keys until the menu stops. It returns nil on quit, end of input or
// [Menu.RequestStop], and [ErrInterrupted] on Ctrl-C or a cancelled ctx.
func (m *Menu) Run(ctx context.Context) error {
	if len(m.entries) == 0 {
		_, err := fmt.Fprintln(m.out, m.styles.Warn.Render("No menu items to display"))
		return err
	}

	for m.active {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		if err := m.render(m.out); err != nil {
			return err
		}
		m.notice = ""

		ev, err := m.input.ReadKey()
		if errors.Is(err, io.EOF) {
			m.active = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		switch m.dispatch(ctx, ev) {
		case outcomeStop:
			m.active = false
		case outcomeInterrupted:
			return ErrInterrupted
		}
	}
	return nil
}

// dispatch applies one key. Reserved bindings are checked before entry shortcuts.
func (m *Menu) dispatch(ctx context.Context, ev KeyEvent) outcome {
	switch {
	case ev.Code == KeyInterrupt:
		return outcomeInterrupted
	case keyMatches(ev, m.keys.quit):
		return outcomeStop
	case keyMatches(ev, m.keys.up):
		m.move(-1)
	case keyMatches(ev, m.keys.down):
		m.move(1)
	case keyMatches(ev, m.keys.choose):
		return m.execute(ctx)
	case keyMatches(ev, m.keys.jump):
		n, _ := ev.Digit()
		return m.jump(ctx, n-1)
	case ev.Code == KeyRune:
		for i, e := range m.entries {
			if e.Enabled && e.Shortcut == ev.Rune {
				return m.jump(ctx, i)
			}
		}
	}
	return outcomeContinue
}

// move steps the cursor to the next enabled entry in dir, wrapping at both ends.
func (m *Menu) move(dir int) {
	n := len(m.entries)
	for step := 1; step <= n; step++ {
		i := ((m.cursor+dir*step)%n + n) % n
		if m.entries[i].Enabled {
			m.cursor = i
			return
		}
	}
}

// jump moves the cursor to index i and runs it. Out-of-range and disabled targets are ignored.
func (m *Menu) jump(ctx context.Context, i int) outcome {
	if i < 0 || i >= len(m.entries) || !m.entries[i].Enabled {
		return outcomeContinue
	}
	m.cursor = i
	return m.execute(ctx)
}

func (m *Menu) execute(ctx context.Context) outcome {
	if m.cursor >= len(m.entries) {
		return outcomeContinue
	}
	e := m.entries[m.cursor]
	if !e.Enabled || e.action == nil {
		return outcomeContinue
	}

	err := e.action(ctx)
	switch {
	case errors.Is(err, ErrInterrupted), ctx.Err() != nil:
		return outcomeInterrupted
	case err != nil:
		m.logger.Warn("menu action failed", "entry", e.Label, "error", err)
		m.notice = fmt.Sprintf("Error executing %s: %v", e.Label, err)
	}
	return outcomeContinue
}
