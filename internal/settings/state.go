package settings

import (
	"strings"

	"thirdspace/internal/config"
	"thirdspace/internal/i18n"
	"thirdspace/internal/models"
)

// Capture приостанавливает горячую клавишу, пока поле записи в фокусе.
type Capture interface {
	Pause()
	Resume()
}

// recorder - поле записи комбинации. Фокус включает запись и ставит горячую
// клавишу на паузу, потеря фокуса (или закрытие окна) возвращает её.
type recorder struct {
	capture Capture
	active  bool
	mods    map[config.Modifier]bool
	key     config.Key
}

// focus вызывается, когда поле получило фокус.
func (r *recorder) focus() {
	if r.active {
		return
	}
	r.active = true
	r.mods = make(map[config.Modifier]bool)
	r.key = ""
	if r.capture != nil {
		r.capture.Pause()
	}
}

// blur вызывается при потере фокуса. Повторный вызов ничего не делает.
func (r *recorder) blur() {
	if !r.active {
		return
	}
	r.active = false
	if r.capture != nil {
		r.capture.Resume()
	}
}

// press обрабатывает нажатие во время записи. Возвращает готовую комбинацию,
// когда к модификаторам добавлена клавиша.
func (r *recorder) press(mods map[config.Modifier]bool, key config.Key) (config.HotkeyConfig, bool) {
	if !r.active {
		return config.HotkeyConfig{}, false
	}
	r.mods = mods
	r.key = key

	hk := config.HotkeyConfig{Key: key}
	for _, m := range config.AvailableModifiers() {
		if mods[m] {
			hk.Modifiers = append(hk.Modifiers, m)
		}
	}
	if key == "" || len(hk.Modifiers) == 0 {
		return config.HotkeyConfig{}, false
	}
	return hk, true
}

// preview возвращает то, что уже нажато, например "Ctrl+Alt".
func (r *recorder) preview() string {
	hk := config.HotkeyConfig{Key: r.key}
	for _, m := range config.AvailableModifiers() {
		if r.mods[m] {
			hk.Modifiers = append(hk.Modifiers, m)
		}
	}
	if hk.Key == "" && len(hk.Modifiers) == 0 {
		return ""
	}
	return strings.TrimSuffix(hk.String(), "+")
}

// form - редактируемая копия настроек, не зависящая от виджетов.
type form struct {
	base     config.Settings
	apiKey   string
	model    string
	target   string
	reason   bool
	hotkey   config.HotkeyConfig
	language i18n.Language
	models   []models.ModelInfo
}

func newForm(current config.Settings, list []models.ModelInfo) *form {
	hk, err := config.ParseHotkey(current.Hotkey)
	if err != nil {
		hk, _ = config.ParseHotkey(config.DefaultHotkey)
	}
	f := &form{
		base:     current,
		apiKey:   current.APIKey,
		model:    current.Model,
		target:   current.TargetLanguage,
		reason:   current.ReasoningEnabled,
		hotkey:   hk,
		language: i18n.Parse(current.UILanguage),
	}
	f.setModels(list)
	return f
}

// setModels заменяет каталог; выбранная модель остаётся в списке, даже если её нет в каталоге.
func (f *form) setModels(list []models.ModelInfo) {
	out := make([]models.ModelInfo, 0, len(list)+1)
	found := false
	for _, m := range list {
		if m.ID == f.model {
			found = true
		}
		out = append(out, m)
	}
	if !found && f.model != "" {
		out = append([]models.ModelInfo{{ID: f.model, Name: f.model}}, out...)
	}
	f.models = out
}

// settings собирает итоговые настройки; поля, которых нет в окне, берутся из исходных.
func (f *form) settings() (config.Settings, error) {
	s := f.base
	s.APIKey = strings.TrimSpace(f.apiKey)
	s.Model = strings.TrimSpace(f.model)
	s.TargetLanguage = strings.TrimSpace(f.target)
	s.ReasoningEnabled = f.reason
	s.Hotkey = f.hotkey.String()
	s.UILanguage = string(f.language)

	if s.Model == "" {
		s.Model = models.DefaultModelID()
	}
	if _, err := config.ParseHotkey(s.Hotkey); err != nil {
		return f.base, err
	}
	return s, nil
}
