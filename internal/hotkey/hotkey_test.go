package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.design/x/hotkey"

	"thirdspace/internal/config"
)

func TestConvertCoversParsableKeys(t *testing.T) {
	var names []string
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		names = append(names, string(c))
	}
	for i := 1; i <= 12; i++ {
		names = append(names, fmt.Sprintf("F%d", i))
	}
	names = append(names, "Space", "Enter", "Tab", "Esc", "Delete", "Up", "Down", "Left", "Right")

	for _, name := range names {
		cfg, err := config.ParseHotkey("Ctrl+Shift+Alt+Super+" + name)
		if err != nil {
			t.Fatalf("ParseHotkey(%s): %v", name, err)
		}
		mods, _, err := convert(cfg)
		if err != nil {
			t.Errorf("convert(%s): %v", cfg, err)
			continue
		}
		if len(mods) != 4 {
			t.Errorf("convert(%s) modifiers = %d, want 4", cfg, len(mods))
		}
	}
}

func TestConvertRejectsUnknownKey(t *testing.T) {
	if _, _, err := convert(config.HotkeyConfig{Key: "home"}); err == nil {
		t.Fatal("convert should reject keys outside keyMap")
	}
}

// fakeBinding занимает комбинацию, если её нет в taken.
type fakeBinding struct {
	key   hotkey.Key
	taken map[hotkey.Key]bool
	down  chan hotkey.Event
	up    chan hotkey.Event
}

func (b *fakeBinding) Register() error {
	if b.taken[b.key] {
		return errors.New("already grabbed")
	}
	return nil
}

func (b *fakeBinding) Unregister() error            { return nil }
func (b *fakeBinding) Keydown() <-chan hotkey.Event { return b.down }
func (b *fakeBinding) Keyup() <-chan hotkey.Event   { return b.up }

func newFakeHandler(taken map[hotkey.Key]bool, onPress func()) (*Handler, *[]*fakeBinding) {
	var made []*fakeBinding
	h := New(onPress, nil)
	h.bind = func(_ []hotkey.Modifier, key hotkey.Key) binding {
		b := &fakeBinding{key: key, taken: taken, down: make(chan hotkey.Event, 1), up: make(chan hotkey.Event, 1)}
		made = append(made, b)
		return b
	}
	return h, &made
}

func TestRegisterFailureRestoresPrevious(t *testing.T) {
	h, made := newFakeHandler(map[hotkey.Key]bool{hotkey.KeyK: true}, nil)
	defer h.Unregister()

	old, _ := config.ParseHotkey("Ctrl+Alt+T")
	if err := h.Register(old); err != nil {
		t.Fatalf("Register(old): %v", err)
	}

	taken, _ := config.ParseHotkey("Ctrl+Alt+K")
	err := h.Register(taken)
	if err == nil {
		t.Fatal("Register should fail for a grabbed combination")
	}
	if !strings.Contains(err.Error(), "Ctrl+Alt+K") {
		t.Fatalf("error should name the combination: %v", err)
	}

	if got := h.Current().String(); got != "Ctrl+Alt+T" {
		t.Fatalf("Current() = %q, want previous hotkey", got)
	}
	last := (*made)[len(*made)-1]
	if last.key != hotkey.KeyT {
		t.Fatalf("last registration = %v, want previous key re-registered", last.key)
	}
}

func TestRegisteredHotkeyCallsHandler(t *testing.T) {
	pressed := make(chan struct{}, 1)
	h, made := newFakeHandler(nil, func() { pressed <- struct{}{} })
	defer h.Unregister()

	cfg, _ := config.ParseHotkey("Ctrl+Alt+T")
	if err := h.Register(cfg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	(*made)[0].down <- hotkey.Event{}

	select {
	case <-pressed:
	case <-time.After(2 * time.Second):
		t.Fatal("onPress was not called")
	}
}
