package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in      string
		mods    []Modifier
		key     Key
		display string
	}{
		{"Ctrl+Alt+T", []Modifier{ModCtrl, ModAlt}, "t", "Ctrl+Alt+T"},
		{" control + option + t ", []Modifier{ModCtrl, ModAlt}, "t", "Ctrl+Alt+T"},
		{"cmd+shift+enter", []Modifier{ModSuper, ModShift}, KeyReturn, "Super+Shift+Enter"},
		{"Win+Esc", []Modifier{ModSuper}, KeyEscape, "Super+Esc"},
		{"ctrl+ctrl+f12", []Modifier{ModCtrl}, "f12", "Ctrl+F12"},
		{"Alt+ArrowUp", []Modifier{ModAlt}, KeyUp, "Alt+Up"},
		{"meta+del", []Modifier{ModSuper}, KeyDelete, "Super+Delete"},
		{"shift+7", []Modifier{ModShift}, "7", "Shift+7"},
		{"F5", nil, "f5", "F5"},
		{"ctrl+spacebar", []Modifier{ModCtrl}, KeySpace, "Ctrl+Space"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hk, err := ParseHotkey(tt.in)
			if err != nil {
				t.Fatalf("ParseHotkey(%q): %v", tt.in, err)
			}
			if !reflect.DeepEqual(hk.Modifiers, tt.mods) {
				t.Fatalf("modifiers = %v, want %v", hk.Modifiers, tt.mods)
			}
			if hk.Key != tt.key {
				t.Fatalf("key = %q, want %q", hk.Key, tt.key)
			}
			if got := hk.String(); got != tt.display {
				t.Fatalf("String() = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestParseHotkeyErrors(t *testing.T) {
	for _, in := range []string{"", "Ctrl+Alt", "Ctrl+A+B", "Ctrl+F13", "Ctrl+F01", "Ctrl+Home", "Ctrl+#"} {
		if _, err := ParseHotkey(in); err == nil {
			t.Errorf("ParseHotkey(%q) should fail", in)
		}
	}
}

func TestHotkeyFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"hotkey":"Ctrl+Nope"}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Hotkey().String(); got != DefaultHotkey {
		t.Fatalf("Hotkey() = %q, want default %q", got, DefaultHotkey)
	}
}
