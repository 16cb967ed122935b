// Package i18n provides internationalization support.
package i18n

import "sync"

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = EN // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	EN: {
		// App
		"app_name":    "ThirdSpace",
		"app_tooltip": "ThirdSpace - clipboard translator",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_processing":         "Translating...",
		"tray_translate":          "Translate",
		"tray_translate_hint":     "Translate clipboard text",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_settings":           "Settings...",
		"tray_settings_hint":      "API key, model, language, hotkey",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_processing": "Translating...",
		"notify_done":       "Translated",
		"notify_error":      "Error",
		"notify_saved":      "Saved",
		"notify_ready":      "ThirdSpace is ready",

		// Settings dialogs
		"settings_title":          "ThirdSpace Settings",
		"settings_api_key":        "OpenRouter API key:",
		"settings_model":          "Model:",
		"settings_target":         "Translate into:",
		"settings_reasoning":      "Enable reasoning (extended thinking)?",
		"settings_yes":            "Yes",
		"settings_no":             "No",
		"settings_hotkey":         "Hotkey",
		"settings_hotkey_prompt":  "Type the new key combination, e.g. Ctrl+Alt+T:",
		"settings_hotkey_invalid": "Invalid hotkey",
		"settings_ui_language":    "Interface language",
		"settings_reasoning_label": "Reasoning (extended thinking)",
		"settings_hotkey_record":   "Record",
		"settings_hotkey_stop":     "Stop",
		"settings_hotkey_press":    "Press a combination...",
		"settings_apply":           "Apply",
		"settings_cancel":          "Cancel",
		"settings_apply_failed":    "Not applied",

		// Errors
		"error_empty_input":        "No text to translate",
		"error_missing_api_key":    "Check your API key",
		"error_network":            "Network error",
		"error_api":                "API error",
		"error_malformed_response": "Unexpected response",
		"error_clipboard":          "Clipboard failed",
		"error_hotkey_register":    "Could not register hotkey",
		"error_settings_save":      "Could not save settings",
	},

	RU: {
		// App
		"app_name":    "ThirdSpace",
		"app_tooltip": "ThirdSpace - перевод буфера обмена",

		// Tray menu
		"tray_ready":              "Готов к работе",
		"tray_processing":         "Перевод...",
		"tray_translate":          "Перевести",
		"tray_translate_hint":     "Перевести текст из буфера обмена",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_settings":           "Настройки...",
		"tray_settings_hint":      "Ключ API, модель, язык, горячая клавиша",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_processing": "Перевожу...",
		"notify_done":       "Переведено",
		"notify_error":      "Ошибка",
		"notify_saved":      "Сохранено",
		"notify_ready":      "ThirdSpace готов к работе",

		// Settings dialogs
		"settings_title":          "Настройки ThirdSpace",
		"settings_api_key":        "Ключ API OpenRouter:",
		"settings_model":          "Модель:",
		"settings_target":         "Переводить на:",
		"settings_reasoning":      "Включить рассуждения (extended thinking)?",
		"settings_yes":            "Да",
		"settings_no":             "Нет",
		"settings_hotkey":         "Горячая клавиша",
		"settings_hotkey_prompt":  "Введите новую комбинацию, например Ctrl+Alt+T:",
		"settings_hotkey_invalid": "Неверная горячая клавиша",
		"settings_ui_language":    "Язык интерфейса",
		"settings_reasoning_label": "Рассуждения (extended thinking)",
		"settings_hotkey_record":   "Записать",
		"settings_hotkey_stop":     "Стоп",
		"settings_hotkey_press":    "Нажмите комбинацию...",
		"settings_apply":           "Применить",
		"settings_cancel":          "Отмена",
		"settings_apply_failed":    "Не применено",

		// Errors
		"error_empty_input":        "Нет текста для перевода",
		"error_missing_api_key":    "Проверьте ключ API",
		"error_network":            "Ошибка сети",
		"error_api":                "Ошибка API",
		"error_malformed_response": "Неожиданный ответ",
		"error_clipboard":          "Ошибка буфера обмена",
		"error_hotkey_register":    "Не удалось зарегистрировать горячую клавишу",
		"error_settings_save":      "Не удалось сохранить настройки",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	if s, ok := translations[EN][key]; ok {
		return s
	}
	// Fallback to key itself
	return key
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Parse returns the language for a config value, falling back to EN.
func Parse(s string) Language {
	for _, lang := range AvailableLanguages() {
		if string(lang) == s {
			return lang
		}
	}
	return EN
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{EN, RU}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
