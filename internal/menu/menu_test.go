package menu_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/desertthunder/muzik/internal/menu"
	tu "github.com/desertthunder/muzik/internal/testing"
)

func newTestMenu(keys menu.KeyReader, out *bytes.Buffer) *menu.Menu {
	return menu.New("Test", menu.WithKeyReader(keys), menu.WithOutput(out), menu.WithStyles(menu.PlainStyles()))
}

func counter(n *int) menu.Action {
	return func(context.Context) error {
		*n++
		return nil
	}
}

func TestMenuNavigation(t *testing.T) {
	t.Run("Separator Is Skipped And Down Wraps", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(tu.Down), &out)
		m.AddEntry("Search", nil).AddSeparator().AddEntry("Back", nil)

		if m.Cursor() != 0 {
			t.Fatalf("expected cursor on Search, got %d", m.Cursor())
		}
		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 2 {
			t.Errorf("expected cursor on Back after one down, got %d", m.Cursor())
		}

		m = newTestMenu(tu.NewKeyScript(tu.Down, tu.Down), &out)
		m.AddEntry("Search", nil).AddSeparator().AddEntry("Back", nil)
		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 0 {
			t.Errorf("expected cursor to wrap to Search, got %d", m.Cursor())
		}
	})

	t.Run("Cursor Starts At First Enabled Entry", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(), &out)
		m.AddSeparator().AddEntry("Off", nil, menu.Disabled()).AddEntry("On", nil)

		if m.Cursor() != 2 {
			t.Errorf("expected cursor 2, got %d", m.Cursor())
		}
	})

	t.Run("Up Wraps To Last Enabled Entry", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(tu.Up), &out)
		m.AddEntry("A", nil).AddEntry("B", nil).AddEntry("C", nil, menu.Disabled())

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 1 {
			t.Errorf("expected cursor 1, got %d", m.Cursor())
		}
	})

	t.Run("Letter Aliases", func(t *testing.T) {
		tests := []struct {
			keys string
			want int
		}{
			{"j", 1},
			{"s", 1},
			{"jk", 0},
			{"sw", 0},
			{"jjj", 0},
			{"w", 2},
		}

		for _, tt := range tests {
			var out bytes.Buffer
			m := newTestMenu(tu.Keys(tt.keys), &out)
			m.AddEntry("A", nil).AddEntry("B", nil).AddEntry("C", nil)
			if err := m.Run(context.Background()); err != nil {
				t.Fatalf("%q: unexpected error: %v", tt.keys, err)
			}
			if m.Cursor() != tt.want {
				t.Errorf("%q: expected cursor %d, got %d", tt.keys, tt.want, m.Cursor())
			}
		}
	})

	t.Run("Cursor Always Lands On Enabled Entry", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		for trial := range 50 {
			var out bytes.Buffer
			var m *menu.Menu
			var keys []menu.KeyEvent

			for range 1 + rng.Intn(20) {
				if rng.Intn(2) == 0 {
					keys = append(keys, tu.Up)
				} else {
					keys = append(keys, tu.Down)
				}
			}
			moves := len(keys)

			read, start, end := 0, -1, -1
			reader := readerFunc(func() (menu.KeyEvent, error) {
				entries := m.Entries()
				if !entries[m.Cursor()].Enabled {
					t.Fatalf("trial %d: cursor %d on disabled entry", trial, m.Cursor())
				}
				if read == moves {
					start = m.Cursor()
				}
				if read == len(keys) {
					end = m.Cursor()
					return menu.KeyEvent{}, io.EOF
				}
				read++
				return keys[read-1], nil
			})

			m = newTestMenu(reader, &out)
			enabled := 0
			for range 1 + rng.Intn(10) {
				if rng.Intn(3) == 0 {
					m.AddEntry("off", nil, menu.Disabled())
					continue
				}
				m.AddEntry("on", nil)
				enabled++
			}
			if enabled == 0 {
				m.AddEntry("on", nil)
				enabled++
			}
			for range enabled {
				keys = append(keys, tu.Down)
			}

			if err := m.Run(context.Background()); err != nil {
				t.Fatalf("trial %d: unexpected error: %v", trial, err)
			}
			if start != end {
				t.Errorf("trial %d: %d downs over %d enabled entries moved cursor from %d to %d", trial, enabled, enabled, start, end)
			}
		}
	})

	t.Run("All Entries Disabled", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(tu.Down, tu.Up, tu.Enter), &out)
		m.AddSeparator().AddEntry("Off", nil, menu.Disabled())

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 0 {
			t.Errorf("expected cursor to stay at 0, got %d", m.Cursor())
		}
	})
}

type readerFunc func() (menu.KeyEvent, error)

func (f readerFunc) ReadKey() (menu.KeyEvent, error) { return f() }

func TestMenuSelection(t *testing.T) {
	t.Run("Select Keys Run The Entry Under The Cursor", func(t *testing.T) {
		for _, ev := range []menu.KeyEvent{tu.Enter, {Code: menu.KeySpace}, {Code: menu.KeyRight}} {
			var out bytes.Buffer
			var a, b int
			m := newTestMenu(tu.NewKeyScript(tu.Down, ev), &out)
			m.AddEntry("A", counter(&a)).AddEntry("B", counter(&b))

			if err := m.Run(context.Background()); err != nil {
				t.Fatalf("%v: unexpected error: %v", ev, err)
			}
			if a != 0 || b != 1 {
				t.Errorf("%v: expected only B to run, got a=%d b=%d", ev, a, b)
			}
		}
	})

	t.Run("Digit Jumps And Executes", func(t *testing.T) {
		var out bytes.Buffer
		var a, b int
		m := newTestMenu(tu.Keys("2"), &out)
		m.AddEntry("A", counter(&a)).AddEntry("B", counter(&b))

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 1 || b != 1 || a != 0 {
			t.Errorf("expected cursor 1 and B run once, got cursor=%d a=%d b=%d", m.Cursor(), a, b)
		}
	})

	t.Run("Out Of Range Digit Changes Nothing", func(t *testing.T) {
		var out bytes.Buffer
		var a, b int
		m := newTestMenu(tu.Keys("j90"), &out)
		m.AddEntry("A", counter(&a)).AddEntry("B", counter(&b))

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 1 || a+b != 0 {
			t.Errorf("expected no state change, got cursor=%d a=%d b=%d", m.Cursor(), a, b)
		}
	})

	t.Run("Digit Onto Disabled Entry Is Ignored", func(t *testing.T) {
		var out bytes.Buffer
		var a int
		m := newTestMenu(tu.Keys("2"), &out)
		m.AddEntry("A", counter(&a)).AddSeparator()

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Cursor() != 0 || a != 0 {
			t.Errorf("expected no state change, got cursor=%d a=%d", m.Cursor(), a)
		}
	})

	t.Run("Disabled Entries Never Run", func(t *testing.T) {
		var out bytes.Buffer
		var a int
		m := newTestMenu(tu.NewKeyScript(tu.Enter), &out)
		m.AddEntry("A", counter(&a), menu.Disabled())

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 0 {
			t.Errorf("expected disabled action to be skipped, ran %d times", a)
		}
	})

	t.Run("Shortcuts", func(t *testing.T) {
		var out bytes.Buffer
		var first, second, reserved int
		m := newTestMenu(tu.Keys("xjx"), &out)
		m.AddEntry("Reserved", counter(&reserved), menu.WithShortcut('j')).
			AddEntry("First", counter(&first), menu.WithShortcut('x')).
			AddEntry("Second", counter(&second), menu.WithShortcut('x'))

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != 2 || second != 0 {
			t.Errorf("expected first match to win twice, got first=%d second=%d", first, second)
		}
		if reserved != 0 {
			t.Errorf("expected reserved key to navigate, not run, got %d", reserved)
		}
		if m.Entries()[0].Shortcut != 0 {
			t.Errorf("expected reserved shortcut to be dropped")
		}
	})

	t.Run("Other Keys Are Ignored", func(t *testing.T) {
		var out bytes.Buffer
		var a int
		m := newTestMenu(tu.Keys("zx!"), &out)
		m.AddEntry("A", counter(&a))

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 0 || m.Cursor() != 0 {
			t.Errorf("expected no state change, got a=%d cursor=%d", a, m.Cursor())
		}
	})
}

func TestMenuRun(t *testing.T) {
	t.Run("Empty Menu Returns Without Reading", func(t *testing.T) {
		var out bytes.Buffer
		script := tu.Keys("jjj")
		m := newTestMenu(script, &out)

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if script.Remaining() != 3 {
			t.Errorf("expected no keys consumed, %d remain", script.Remaining())
		}
		if !strings.Contains(out.String(), "No menu items to display") {
			t.Errorf("expected warning, got %q", out.String())
		}
	})

	t.Run("Quit Stops Before Remaining Keys", func(t *testing.T) {
		var out bytes.Buffer
		script := tu.Keys("qjj")
		m := newTestMenu(script, &out)
		m.AddEntry("A", nil)

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Active() {
			t.Error("expected menu to be inactive")
		}
		if script.Remaining() != 2 {
			t.Errorf("expected 2 keys left, got %d", script.Remaining())
		}
	})

	t.Run("End Of Input Is A Quit", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(), &out)
		m.AddEntry("A", nil)

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Active() {
			t.Error("expected menu to be inactive")
		}
	})

	t.Run("Back Entry Stops Only Its Own Menu", func(t *testing.T) {
		var out bytes.Buffer
		var visits int
		keys := tu.NewKeyScript(tu.Enter, tu.Enter, tu.Down)
		parent := newTestMenu(keys, &out)
		parent.AddEntry("Child", func(ctx context.Context) error {
			visits++
			child := newTestMenu(keys, &out)
			child.AddBack("Back")
			return child.Run(ctx)
		}).AddEntry("Other", nil)

		if err := parent.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if visits != 1 {
			t.Errorf("expected one child visit, got %d", visits)
		}
		if parent.Cursor() != 1 {
			t.Errorf("expected parent to keep handling keys after child returned, cursor=%d", parent.Cursor())
		}
	})

	t.Run("Failing Action Is Reported And Loop Continues", func(t *testing.T) {
		var out bytes.Buffer
		var b int
		m := newTestMenu(tu.NewKeyScript(tu.Down, tu.Enter), &out)
		m.AddEntry("A", nil).AddEntry("Broken", func(context.Context) error {
			b++
			return errors.New("boom")
		})

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b != 1 {
			t.Fatalf("expected action to run once, got %d", b)
		}
		if m.Cursor() != 1 {
			t.Errorf("expected cursor unchanged at 1, got %d", m.Cursor())
		}
		frames := strings.Split(out.String(), "\x1b[H\x1b[2J")
		last := frames[len(frames)-1]
		if !strings.Contains(last, "Error executing Broken: boom") {
			t.Errorf("expected inline error in next frame, got %q", last)
		}
		if !strings.Contains(last, "A") || !strings.Contains(last, "Broken") {
			t.Errorf("expected same entries after failure, got %q", last)
		}
	})

	t.Run("Interrupt Key Propagates", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(tu.Interrupt), &out)
		m.AddEntry("A", nil)

		if err := m.Run(context.Background()); !errors.Is(err, menu.ErrInterrupted) {
			t.Errorf("expected ErrInterrupted, got %v", err)
		}
	})

	t.Run("Interrupt Unwinds Nested Menus", func(t *testing.T) {
		var out bytes.Buffer
		keys := tu.NewKeyScript(tu.Enter, tu.Enter, tu.Interrupt, tu.Enter)
		var after int

		root := newTestMenu(keys, &out)
		root.AddEntry("Level 1", func(ctx context.Context) error {
			mid := newTestMenu(keys, &out)
			mid.AddEntry("Level 2", func(ctx context.Context) error {
				leaf := newTestMenu(keys, &out)
				leaf.AddEntry("Leaf", counter(&after))
				return leaf.Run(ctx)
			})
			return mid.Run(ctx)
		})

		if err := root.Run(context.Background()); !errors.Is(err, menu.ErrInterrupted) {
			t.Fatalf("expected ErrInterrupted, got %v", err)
		}
		if after != 0 {
			t.Errorf("expected no dispatch after interrupt, got %d", after)
		}
		if keys.Remaining() != 1 {
			t.Errorf("expected 1 key unread, got %d", keys.Remaining())
		}
	})

	t.Run("Cancelled Context Interrupts", func(t *testing.T) {
		var out bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		m := newTestMenu(tu.NewKeyScript(tu.Enter, tu.Enter), &out)
		m.AddEntry("A", func(context.Context) error {
			cancel()
			return ctx.Err()
		})

		if err := m.Run(ctx); !errors.Is(err, menu.ErrInterrupted) {
			t.Errorf("expected ErrInterrupted, got %v", err)
		}
	})

	t.Run("Render Failure", func(t *testing.T) {
		m := menu.New("Test", menu.WithKeyReader(tu.NewKeyScript()), menu.WithOutput(&tu.FWriter{}))
		m.AddEntry("A", nil)

		if err := m.Run(context.Background()); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("Frame Contents", func(t *testing.T) {
		var out bytes.Buffer
		m := newTestMenu(tu.NewKeyScript(), &out)
		m.AddEntry("Search", nil, menu.WithHint("find tracks"), menu.WithShortcut('/')).
			AddSeparator().
			AddEntry("Locked", nil, menu.Disabled()).
			AddEntry("Back", nil)

		if err := m.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		frame := out.String()
		for _, want := range []string{"Test", "▶ 1. Search [/]", "find tracks", strings.Repeat("─", 40), "3. Locked", "4. Back", "quit"} {
			if !strings.Contains(frame, want) {
				t.Errorf("expected frame to contain %q, got:\n%s", want, frame)
			}
		}
		if strings.Contains(frame, "▶ 3. Locked") {
			t.Error("disabled entries must not be highlighted")
		}
	})
}
