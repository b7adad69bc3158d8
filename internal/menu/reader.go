package menu

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// KeyReader yields one keypress per call. End of input is reported as [io.EOF].
type KeyReader interface {
	ReadKey() (KeyEvent, error)
}

// StreamReader decodes keys from a plain byte stream such as a pipe or a test fixture.
type StreamReader struct {
	r *bufio.Reader
}

// NewStreamReader wraps r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r)}
}

func (s *StreamReader) ReadKey() (KeyEvent, error) {
	return decodeKey(s.r)
}

// TerminalReader reads single keypresses from a terminal, holding raw mode only while blocked on a read.
type TerminalReader struct {
	fd int
	r  *bufio.Reader
}

// NewTerminalReader wraps a terminal file such as [os.Stdin].
func NewTerminalReader(f *os.File) *TerminalReader {
	return &TerminalReader{fd: int(f.Fd()), r: bufio.NewReader(f)}
}

// ReadKey puts the terminal in raw, no-echo mode, reads one key and restores the previous mode.
func (t *TerminalReader) ReadKey() (ev KeyEvent, err error) {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return KeyEvent{}, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if rerr := term.Restore(t.fd, state); rerr != nil && err == nil {
			err = fmt.Errorf("failed to restore terminal: %w", rerr)
		}
	}()

	return decodeKey(t.r)
}

// NewKeyReader picks the raw terminal reader when f is a TTY, and a stream reader otherwise.
func NewKeyReader(f *os.File) KeyReader {
	if term.IsTerminal(int(f.Fd())) {
		return NewTerminalReader(f)
	}
	return NewStreamReader(f)
}

// WaitForKey prints prompt and blocks for any key. Ctrl-C returns [ErrInterrupted]; end of input returns nil.
func WaitForKey(keys KeyReader, out io.Writer, prompt string) error {
	if prompt != "" {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}
	}

	ev, err := keys.ReadKey()
	fmt.Fprintln(out)
	switch {
	case err == io.EOF:
		return nil
	case err != nil:
		return err
	case ev.Code == KeyInterrupt:
		return ErrInterrupted
	}
	return nil
}
