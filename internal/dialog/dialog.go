// Package dialog предоставляет GUI диалоги для настройки приложения.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"

	"thirdspace/internal/config"
	"thirdspace/internal/i18n"
)

// ErrCanceled возвращается, если пользователь закрыл один из диалогов.
var ErrCanceled = zenity.ErrCanceled

// Capture приостанавливает горячую клавишу, пока пользователь выбирает новую.
type Capture interface {
	Pause()
	Resume()
}

// prompter - минимальный набор диалогов, которые использует форма.
type prompter interface {
	Entry(text, title, value string, hidden bool) (string, error)
	List(text, title string, items []string, selected string) (string, error)
	ListMultiple(text, title string, items, selected []string) ([]string, error)
	Question(text, title, yes, no string) (bool, error)
	Error(title, message string)
}

type zenityPrompter struct{}

func (zenityPrompter) Entry(text, title, value string, hidden bool) (string, error) {
	opts := []zenity.Option{zenity.Title(title), zenity.EntryText(value)}
	if hidden {
		opts = append(opts, zenity.HideText())
	}
	return zenity.Entry(text, opts...)
}

func (zenityPrompter) List(text, title string, items []string, selected string) (string, error) {
	return zenity.List(text, items, zenity.Title(title), zenity.DefaultItems(selected))
}

func (zenityPrompter) ListMultiple(text, title string, items, selected []string) ([]string, error) {
	return zenity.ListMultiple(text, items, zenity.Title(title), zenity.DefaultItems(selected...))
}

func (zenityPrompter) Question(text, title, yes, no string) (bool, error) {
	err := zenity.Question(text, zenity.Title(title), zenity.OKLabel(yes), zenity.CancelLabel(no))
	if errors.Is(err, zenity.ErrCanceled) {
		return false, nil
	}
	return err == nil, err
}

func (zenityPrompter) Error(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}

// Form - пошаговая форма настроек.
type Form struct {
	p       prompter
	capture Capture
}

// NewForm создаёт форму на zenity. capture может быть nil.
func NewForm(capture Capture) *Form {
	return &Form{p: zenityPrompter{}, capture: capture}
}

// Edit проводит пользователя по всем настройкам и возвращает изменённую копию.
// При отмене любого шага возвращает ErrCanceled и исходные настройки.
func (f *Form) Edit(current config.Settings, models []string) (config.Settings, error) {
	s := current
	title := i18n.T("settings_title")

	key, err := f.p.Entry(i18n.T("settings_api_key"), title, current.APIKey, true)
	if err != nil {
		return current, err
	}
	s.APIKey = strings.TrimSpace(key)

	model, err := f.p.List(i18n.T("settings_model"), title, withCurrent(models, current.Model), current.Model)
	if err != nil {
		return current, err
	}
	if model != "" {
		s.Model = model
	}

	target, err := f.p.Entry(i18n.T("settings_target"), title, current.TargetLanguage, false)
	if err != nil {
		return current, err
	}
	s.TargetLanguage = strings.TrimSpace(target)

	s.ReasoningEnabled, err = f.p.Question(i18n.T("settings_reasoning"), title, i18n.T("settings_yes"), i18n.T("settings_no"))
	if err != nil {
		return current, err
	}

	hk, err := f.selectHotkey(current.Hotkey)
	if err != nil {
		return current, err
	}
	s.Hotkey = hk.String()

	lang, err := f.selectLanguage(current.UILanguage)
	if err != nil {
		return current, err
	}
	s.UILanguage = string(lang)

	return s, nil
}

var (
	modOptions = []string{"Ctrl", "Shift", "Alt", "Super (Win/Cmd)"}
	modValues  = []config.Modifier{config.ModCtrl, config.ModShift, config.ModAlt, config.ModSuper}
)

// keyOptions - подписи клавиш в том виде, в каком их принимает config.ParseHotkey.
func keyOptions() []string {
	keys := []string{"Space", "Enter", "Tab", "Esc", "Delete", "Up", "Down", "Left", "Right"}
	for c := 'A'; c <= 'Z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	for i := 1; i <= 12; i++ {
		keys = append(keys, fmt.Sprintf("F%d", i))
	}
	return keys
}

// selectHotkey открывает выбор модификаторов и клавиши. Пока диалог открыт,
// текущая горячая клавиша не запускает перевод.
func (f *Form) selectHotkey(raw string) (config.HotkeyConfig, error) {
	if f.capture != nil {
		f.capture.Pause()
		defer f.capture.Resume()
	}

	current, err := config.ParseHotkey(raw)
	if err != nil {
		current, _ = config.ParseHotkey(config.DefaultHotkey)
	}
	title := i18n.T("settings_hotkey")

	currentMods := make([]string, 0, len(current.Modifiers))
	for _, m := range current.Modifiers {
		for i, v := range modValues {
			if v == m {
				currentMods = append(currentMods, modOptions[i])
			}
		}
	}

	for {
		selectedMods, err := f.p.ListMultiple(i18n.T("settings_hotkey_prompt"), title, modOptions, currentMods)
		if err != nil {
			return current, err
		}

		selectedKey, err := f.p.List(i18n.T("settings_hotkey_prompt"), title, keyOptions(), current.KeyLabel())
		if err != nil {
			return current, err
		}

		parts := make([]string, 0, len(selectedMods)+1)
		for _, s := range selectedMods {
			for i, opt := range modOptions {
				if s == opt {
					parts = append(parts, string(modValues[i]))
				}
			}
		}
		parts = append(parts, selectedKey)

		hk, err := config.ParseHotkey(strings.Join(parts, "+"))
		if err == nil {
			return hk, nil
		}
		f.p.Error(i18n.T("settings_hotkey_invalid"), err.Error())
	}
}

func (f *Form) selectLanguage(current string) (i18n.Language, error) {
	langs := i18n.AvailableLanguages()
	names := make([]string, len(langs))
	selected := ""
	for i, l := range langs {
		names[i] = i18n.LanguageName(l)
		if string(l) == current {
			selected = names[i]
		}
	}

	choice, err := f.p.List(i18n.T("settings_ui_language"), i18n.T("settings_title"), names, selected)
	if err != nil {
		return i18n.Parse(current), err
	}
	for i, name := range names {
		if name == choice {
			return langs[i], nil
		}
	}
	return i18n.Parse(current), nil
}

func withCurrent(models []string, current string) []string {
	for _, m := range models {
		if m == current {
			return models
		}
	}
	if current == "" {
		return models
	}
	return append([]string{current}, models...)
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}
