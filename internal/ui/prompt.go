package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/muzik/internal/menu"
)

// ErrCancelled is returned when the user backs out of a prompt with Esc.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter reads one line of free text from the user.
type Prompter interface {
	Prompt(ctx context.Context, label, placeholder string) (string, error)
}

var (
	_ Prompter = (*TextPrompt)(nil)
	_ Prompter = (*LinePrompt)(nil)
	_ tea.Model = promptModel{}
)

// NewPrompter picks [TextPrompt] when the menu reads from a real terminal and [LinePrompt] otherwise.
func NewPrompter(keys menu.KeyReader, in io.Reader, out io.Writer, palette *Palette) Prompter {
	if _, ok := keys.(*menu.TerminalReader); ok {
		return &TextPrompt{in: in, out: out, palette: palette}
	}
	return &LinePrompt{keys: keys, out: out, palette: palette}
}

// TextPrompt runs a single bubbles textinput as its own bubbletea program.
type TextPrompt struct {
	in      io.Reader
	out     io.Writer
	palette *Palette
}

func NewTextPrompt(in io.Reader, out io.Writer, palette *Palette) *TextPrompt {
	return &TextPrompt{in: in, out: out, palette: palette}
}

func (p *TextPrompt) Prompt(ctx context.Context, label, placeholder string) (string, error) {
	program := tea.NewProgram(
		newPromptModel(label, placeholder, p.palette),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if ctx.Err() != nil {
		return "", menu.ErrInterrupted
	}
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok {
		return "", fmt.Errorf("prompt failed: unexpected model %T", final)
	}
	return m.value, m.err
}

// promptModel is the bubbletea model behind [TextPrompt].
type promptModel struct {
	label   string
	input   textinput.Model
	keys    keyMap
	help    help.Model
	palette *Palette
	value   string
	err     error
	done    bool
}

func newPromptModel(label, placeholder string, palette *Palette) promptModel {
	if palette == nil {
		palette = Plain()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = placeholder
	input.CharLimit = 256
	input.Focus()

	return promptModel{
		label:   label,
		input:   input,
		keys:    newKeyMap(),
		help:    help.New(),
		palette: palette,
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.interrupt):
			m.err, m.done = menu.ErrInterrupted, true
			return m, tea.Quit
		case key.Matches(km, m.keys.cancel):
			m.err, m.done = ErrCancelled, true
			return m, tea.Quit
		case key.Matches(km, m.keys.submit):
			m.value, m.done = strings.TrimSpace(m.input.Value()), true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n", m.palette.Title(m.label), m.input.View(), m.help.View(m.keys))
}

// LinePrompt assembles a line from [menu.KeyReader] events, echoing as it goes.
type LinePrompt struct {
	keys    menu.KeyReader
	out     io.Writer
	palette *Palette
}

func NewLinePrompt(keys menu.KeyReader, out io.Writer, palette *Palette) *LinePrompt {
	return &LinePrompt{keys: keys, out: out, palette: palette}
}

// Prompt returns the trimmed line once Enter is read. End of input with nothing typed is [io.EOF].
func (p *LinePrompt) Prompt(ctx context.Context, label, placeholder string) (string, error) {
	palette := p.palette
	if palette == nil {
		palette = Plain()
	}

	header := label
	if placeholder != "" {
		header += " " + palette.Help("("+placeholder+")")
	}
	if _, err := fmt.Fprintf(p.out, "%s\n> ", header); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	var line []rune
	for {
		if ctx.Err() != nil {
			return "", menu.ErrInterrupted
		}

		ev, err := p.keys.ReadKey()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			if len(line) == 0 {
				return "", io.EOF
			}
			return strings.TrimSpace(string(line)), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}

		switch ev.Code {
		case menu.KeyInterrupt:
			fmt.Fprintln(p.out)
			return "", menu.ErrInterrupted
		case menu.KeyEscape:
			fmt.Fprintln(p.out)
			return "", ErrCancelled
		case menu.KeyEnter:
			fmt.Fprintln(p.out)
			return strings.TrimSpace(string(line)), nil
		case menu.KeyBackspace:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(p.out, "\b \b")
			}
		case menu.KeySpace:
			line = append(line, ' ')
			fmt.Fprint(p.out, " ")
		case menu.KeyRune:
			line = append(line, ev.Rune)
			fmt.Fprint(p.out, string(ev.Rune))
		}
	}
}
