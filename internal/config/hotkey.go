package config

import (
	"fmt"
	"strings"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyEscape Key = "escape"
	KeyDelete Key = "delete"
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
}

var keyAliases = map[string]Key{
	"space":      KeySpace,
	"spacebar":   KeySpace,
	"enter":      KeyReturn,
	"return":     KeyReturn,
	"tab":        KeyTab,
	"esc":        KeyEscape,
	"escape":     KeyEscape,
	"del":        KeyDelete,
	"delete":     KeyDelete,
	"up":         KeyUp,
	"arrowup":    KeyUp,
	"down":       KeyDown,
	"arrowdown":  KeyDown,
	"left":       KeyLeft,
	"arrowleft":  KeyLeft,
	"right":      KeyRight,
	"arrowright": KeyRight,
}

var modifierLabels = map[Modifier]string{
	ModCtrl:  "Ctrl",
	ModShift: "Shift",
	ModAlt:   "Alt",
	ModSuper: "Super",
}

var keyLabels = map[Key]string{
	KeySpace:  "Space",
	KeyReturn: "Enter",
	KeyTab:    "Tab",
	KeyEscape: "Esc",
	KeyDelete: "Delete",
	KeyUp:     "Up",
	KeyDown:   "Down",
	KeyLeft:   "Left",
	KeyRight:  "Right",
}

// HotkeyConfig описывает комбинацию клавиш.
type HotkeyConfig struct {
	Modifiers []Modifier
	Key       Key
}

// String возвращает комбинацию в формате "Ctrl+Alt+T".
func (h HotkeyConfig) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, modifierLabels[m])
	}
	parts = append(parts, h.KeyLabel())
	return strings.Join(parts, "+")
}

// KeyLabel возвращает подпись клавиши без модификаторов ("T", "F5", "Space").
func (h HotkeyConfig) KeyLabel() string {
	if label, ok := keyLabels[h.Key]; ok {
		return label
	}
	return strings.ToUpper(string(h.Key))
}

// ParseHotkey разбирает строку вида "Ctrl+Alt+T".
// Регистр не важен, пробелы вокруг частей игнорируются.
func ParseHotkey(s string) (HotkeyConfig, error) {
	var hk HotkeyConfig
	seen := make(map[Modifier]bool)

	for _, raw := range strings.Split(s, "+") {
		part := strings.ToLower(strings.TrimSpace(raw))
		if part == "" {
			continue
		}

		if mod, ok := modifierNames[part]; ok {
			if !seen[mod] {
				seen[mod] = true
				hk.Modifiers = append(hk.Modifiers, mod)
			}
			continue
		}

		key, ok := parseKey(part)
		if !ok {
			return HotkeyConfig{}, fmt.Errorf("unknown key %q", strings.TrimSpace(raw))
		}
		if hk.Key != "" {
			return HotkeyConfig{}, fmt.Errorf("shortcut %q has more than one key", s)
		}
		hk.Key = key
	}

	if hk.Key == "" {
		return HotkeyConfig{}, fmt.Errorf("shortcut %q has no key", s)
	}
	return hk, nil
}

func parseKey(part string) (Key, bool) {
	if k, ok := keyAliases[part]; ok {
		return k, true
	}
	if len(part) == 1 {
		c := part[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return Key(part), true
		}
		return "", false
	}
	if part[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(part, "f%d", &n); err == nil && n >= 1 && n <= 12 && part == fmt.Sprintf("f%d", n) {
			return Key(part), true
		}
	}
	return "", false
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}
