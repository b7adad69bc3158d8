package menu

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// KeyCode classifies a decoded keypress.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
	KeyEscape
	KeyBackspace
	KeyInterrupt
)

// KeyEvent is one platform-independent keypress.
type KeyEvent struct {
	Code KeyCode
	Rune rune // set when Code is KeyRune
}

// Key builds a [KeyRune] event.
func Key(r rune) KeyEvent {
	return KeyEvent{Code: KeyRune, Rune: r}
}

// String names the key the way [key.Binding] expects ("up", "enter", "ctrl+c", "j", ...).
func (k KeyEvent) String() string {
	switch k.Code {
	case KeyRune:
		return string(k.Rune)
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyEnter:
		return "enter"
	case KeySpace:
		return "space"
	case KeyEscape:
		return "esc"
	case KeyBackspace:
		return "backspace"
	case KeyInterrupt:
		return "ctrl+c"
	}
	return ""
}

// Digit returns the value of a 1-9 key.
func (k KeyEvent) Digit() (int, bool) {
	if k.Code != KeyRune || k.Rune < '1' || k.Rune > '9' {
		return 0, false
	}
	return int(k.Rune - '0'), true
}

const (
	ctrlC = 0x03
	ctrlD = 0x04
	esc   = 0x1b
)

// consoleArrows maps the second byte of a Windows console extended key (0x00/0xE0 prefix).
var consoleArrows = map[byte]KeyCode{
	'H': KeyUp,
	'P': KeyDown,
	'K': KeyLeft,
	'M': KeyRight,
}

// csiArrows maps the final byte of "ESC [ x" and "ESC O x" sequences.
var csiArrows = map[byte]KeyCode{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
}

// decodeKey consumes exactly one keypress from r. Ctrl-D is reported as [io.EOF].
//
// Multi-byte sequences are only decoded from bytes already buffered, so a lone ESC never
// blocks waiting for a follow-up byte.
func decodeKey(r *bufio.Reader) (KeyEvent, error) {
	b, err := r.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}

	switch b {
	case ctrlC:
		return KeyEvent{Code: KeyInterrupt}, nil
	case ctrlD:
		return KeyEvent{}, io.EOF
	case '\r':
		if next, ok := peek(r); ok && next == '\n' {
			_, _ = r.ReadByte()
		}
		return KeyEvent{Code: KeyEnter}, nil
	case '\n':
		return KeyEvent{Code: KeyEnter}, nil
	case ' ':
		return KeyEvent{Code: KeySpace}, nil
	case 0x08, 0x7f:
		return KeyEvent{Code: KeyBackspace}, nil
	case esc:
		return decodeEscape(r), nil
	case 0x00, 0xe0:
		if next, ok := peek(r); ok {
			if code, found := consoleArrows[next]; found {
				_, _ = r.ReadByte()
				return KeyEvent{Code: code}, nil
			}
		}
		if b == 0x00 {
			return KeyEvent{}, nil
		}
	}

	if b < utf8.RuneSelf {
		if b < 0x20 {
			return KeyEvent{}, nil
		}
		return Key(rune(b)), nil
	}

	ru, ok := decodeRune(r, b)
	if !ok {
		return KeyEvent{}, nil
	}
	return Key(ru), nil
}

// decodeRune completes the UTF-8 sequence that starts with lead. Only continuation bytes
// are consumed, so a malformed sequence never swallows the following key.
func decodeRune(r *bufio.Reader, lead byte) (rune, bool) {
	buf := []byte{lead}
	for !utf8.FullRune(buf) {
		next, err := r.Peek(1)
		if err != nil || utf8.RuneStart(next[0]) {
			return utf8.RuneError, false
		}
		buf = append(buf, next[0])
		if _, err := r.ReadByte(); err != nil {
			return utf8.RuneError, false
		}
	}

	ru, size := utf8.DecodeRune(buf)
	if ru == utf8.RuneError && size <= 1 {
		return utf8.RuneError, false
	}
	return ru, true
}

func decodeEscape(r *bufio.Reader) KeyEvent {
	intro, ok := peek(r)
	if !ok {
		return KeyEvent{Code: KeyEscape}
	}
	_, _ = r.ReadByte()
	if intro != '[' && intro != 'O' {
		return KeyEvent{Code: KeyEscape}
	}

	for {
		final, ok := peek(r)
		if !ok {
			return KeyEvent{Code: KeyEscape}
		}
		_, _ = r.ReadByte()
		if code, found := csiArrows[final]; found {
			return KeyEvent{Code: code}
		}
		// parameters and intermediates precede the final byte (0x40-0x7e)
		if final >= 0x40 && final <= 0x7e {
			return KeyEvent{}
		}
	}
}

// peek returns the next buffered byte without blocking.
func peek(r *bufio.Reader) (byte, bool) {
	if r.Buffered() == 0 {
		return 0, false
	}
	next, err := r.Peek(1)
	if err != nil {
		return 0, false
	}
	return next[0], true
}
