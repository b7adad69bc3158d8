// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/muzik/internal/menu"
)

// KeyScript is a [menu.KeyReader] that replays a fixed key sequence, then reports [io.EOF].
type KeyScript struct {
	keys []menu.KeyEvent
	read int
}

// NewKeyScript builds a script from events.
func NewKeyScript(keys ...menu.KeyEvent) *KeyScript {
	return &KeyScript{keys: keys}
}

// Keys builds a script from plain characters, one rune per keypress.
func Keys(s string) *KeyScript {
	script := &KeyScript{}
	for _, r := range s {
		script.keys = append(script.keys, menu.Key(r))
	}
	return script
}

// Then appends more events to the script.
func (k *KeyScript) Then(keys ...menu.KeyEvent) *KeyScript {
	k.keys = append(k.keys, keys...)
	return k
}

func (k *KeyScript) ReadKey() (menu.KeyEvent, error) {
	if k.read >= len(k.keys) {
		return menu.KeyEvent{}, io.EOF
	}
	ev := k.keys[k.read]
	k.read++
	return ev, nil
}

// Remaining reports how many scripted keys were never consumed.
func (k *KeyScript) Remaining() int { return len(k.keys) - k.read }

var (
	Up        = menu.KeyEvent{Code: menu.KeyUp}
	Down      = menu.KeyEvent{Code: menu.KeyDown}
	Enter     = menu.KeyEvent{Code: menu.KeyEnter}
	Interrupt = menu.KeyEvent{Code: menu.KeyInterrupt}
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
