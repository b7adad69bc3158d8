package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"

	"github.com/desertthunder/muzik/internal/menu"
)

// Confirm asks a yes/no question and waits for y or n.
//
// Enter and end of input pick def. Ctrl-C and a cancelled ctx return [menu.ErrInterrupted].
func Confirm(ctx context.Context, keys menu.KeyReader, out io.Writer, question string, def bool) (bool, error) {
	choices := "[y/N]"
	if def {
		choices = "[Y/n]"
	}
	if _, err := fmt.Fprintf(out, "%s %s ", question, choices); err != nil {
		return false, fmt.Errorf("confirm failed: %w", err)
	}

	bindings := newKeyMap()
	for {
		if ctx.Err() != nil {
			return false, menu.ErrInterrupted
		}

		ev, err := keys.ReadKey()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return def, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read key: %w", err)
		}

		switch {
		case ev.Code == menu.KeyInterrupt:
			fmt.Fprintln(out)
			return false, menu.ErrInterrupted
		case ev.Code == menu.KeyEnter:
			fmt.Fprintln(out)
			return def, nil
		case key.Matches(ev, bindings.yes):
			fmt.Fprintln(out, "y")
			return true, nil
		case key.Matches(ev, bindings.no):
			fmt.Fprintln(out, "n")
			return false, nil
		}
	}
}
