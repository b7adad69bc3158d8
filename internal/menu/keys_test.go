package menu

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDecodeKey(t *testing.T) {
	t.Run("Sequences", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
			want  []KeyEvent
		}{
			{"ANSI Arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []KeyEvent{{Code: KeyUp}, {Code: KeyDown}, {Code: KeyRight}, {Code: KeyLeft}}},
			{"Application Arrows", "\x1bOA\x1bOB", []KeyEvent{{Code: KeyUp}, {Code: KeyDown}}},
			{"Console Arrows", "\xe0H\xe0P\x00M\x00K", []KeyEvent{{Code: KeyUp}, {Code: KeyDown}, {Code: KeyRight}, {Code: KeyLeft}}},
			{"Enter Variants", "\r\n\n\r", []KeyEvent{{Code: KeyEnter}, {Code: KeyEnter}, {Code: KeyEnter}}},
			{"Space And Letters", " qj", []KeyEvent{{Code: KeySpace}, Key('q'), Key('j')}},
			{"Digits", "19", []KeyEvent{Key('1'), Key('9')}},
			{"Interrupt", "\x03", []KeyEvent{{Code: KeyInterrupt}}},
			{"Unicode", "é", []KeyEvent{Key('é')}},
			{"Unknown CSI", "\x1b[3~j", []KeyEvent{{}, Key('j')}},
			{"Lone Escape", "\x1b", []KeyEvent{{Code: KeyEscape}}},
			{"Control Bytes", "\x01\x02", []KeyEvent{{}, {}}},
			{"Backspace", "\x7f\x08", []KeyEvent{{Code: KeyBackspace}, {Code: KeyBackspace}}},
			{"Three Byte Rune With E0 Lead", "ठ", []KeyEvent{Key('ठ')}},
			{"Thai And Tibetan", "กༀ", []KeyEvent{Key('ก'), Key('ༀ')}},
			{"Four Byte Rune", "🎵q", []KeyEvent{Key('🎵'), Key('q')}},
			{"Malformed Sequence Keeps Next Key", "\xe0j\xe2\x82q", []KeyEvent{{}, Key('j'), {}, Key('q')}},
			{"Truncated Sequence At End", "\xe0", []KeyEvent{{}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := NewStreamReader(strings.NewReader(tt.input))
				for i, want := range tt.want {
					got, err := r.ReadKey()
					if err != nil {
						t.Fatalf("key %d: unexpected error: %v", i, err)
					}
					if got != want {
						t.Errorf("key %d: expected %+v, got %+v", i, want, got)
					}
				}
				if _, err := r.ReadKey(); !errors.Is(err, io.EOF) {
					t.Errorf("expected EOF after sequence, got %v", err)
				}
			})
		}
	})

	t.Run("Ctrl-D Is End Of Input", func(t *testing.T) {
		r := NewStreamReader(strings.NewReader("\x04j"))
		if _, err := r.ReadKey(); !errors.Is(err, io.EOF) {
			t.Errorf("expected EOF, got %v", err)
		}
	})

	t.Run("Binding Names", func(t *testing.T) {
		tests := []struct {
			ev   KeyEvent
			want string
		}{
			{KeyEvent{Code: KeyUp}, "up"},
			{KeyEvent{Code: KeyEnter}, "enter"},
			{KeyEvent{Code: KeySpace}, "space"},
			{KeyEvent{Code: KeyInterrupt}, "ctrl+c"},
			{Key('w'), "w"},
			{KeyEvent{}, ""},
		}
		for _, tt := range tests {
			if got := tt.ev.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		}
	})

	t.Run("Digits", func(t *testing.T) {
		if n, ok := Key('7').Digit(); !ok || n != 7 {
			t.Errorf("expected 7, got %d %v", n, ok)
		}
		for _, r := range []rune{'0', 'a'} {
			if _, ok := Key(r).Digit(); ok {
				t.Errorf("expected %q not to be a jump digit", r)
			}
		}
	})
}

func TestKeyMap(t *testing.T) {
	km := newKeyMap()
	for _, r := range []rune{'w', 'k', 's', 'j', 'q', '1', '9'} {
		if !km.reserved(r) {
			t.Errorf("expected %q to be reserved", r)
		}
	}
	for _, r := range []rune{'x', '/', '0'} {
		if km.reserved(r) {
			t.Errorf("expected %q to be free", r)
		}
	}
}

func TestWaitForKey(t *testing.T) {
	t.Run("Any Key", func(t *testing.T) {
		var out bytes.Buffer
		if err := WaitForKey(NewStreamReader(strings.NewReader("x")), &out, "Press any key"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "Press any key") {
			t.Errorf("expected prompt, got %q", out.String())
		}
	})

	t.Run("Interrupt", func(t *testing.T) {
		var out bytes.Buffer
		err := WaitForKey(NewStreamReader(strings.NewReader("\x03")), &out, "")
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("expected ErrInterrupted, got %v", err)
		}
	})

	t.Run("End Of Input", func(t *testing.T) {
		var out bytes.Buffer
		if err := WaitForKey(NewStreamReader(strings.NewReader("")), &out, ""); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}
