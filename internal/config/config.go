// Package config предоставляет конфигурацию приложения с сохранением в файл.
//
// Настройки хранятся в ~/.thirdspace/config.json (права 0600, файл содержит ключ API).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	appDirName     = ".thirdspace"
	configFileName = "config.json"
	logsDirName    = "logs"

	// APIKeyEnv используется, если ключ не задан в файле.
	APIKeyEnv = "OPENROUTER_API_KEY"

	DefaultModel          = "google/gemini-3-flash-preview"
	DefaultTargetLanguage = "English"
	DefaultHotkey         = "Ctrl+Alt+T"
	DefaultUILanguage     = "en"
	DefaultTimeoutSeconds = 30
)

// Settings хранит все пользовательские настройки. Формат файла совпадает с этой структурой.
type Settings struct {
	APIKey           string `json:"api_key"`
	Model            string `json:"model"`
	TargetLanguage   string `json:"target_language"`
	ReasoningEnabled bool   `json:"reasoning_enabled"`
	Hotkey           string `json:"hotkey"`
	Notifications    bool   `json:"notifications"`
	UILanguage       string `json:"ui_language,omitempty"`
	TimeoutSeconds   int    `json:"timeout_seconds,omitempty"`
	BaseURL          string `json:"base_url,omitempty"`
}

// Defaults возвращает настройки по умолчанию.
func Defaults() Settings {
	return Settings{
		Model:            DefaultModel,
		TargetLanguage:   DefaultTargetLanguage,
		ReasoningEnabled: true,
		Hotkey:           DefaultHotkey,
		Notifications:    true,
		UILanguage:       DefaultUILanguage,
		TimeoutSeconds:   DefaultTimeoutSeconds,
	}
}

// normalize заполняет пустые поля значениями по умолчанию.
func (s Settings) normalize() Settings {
	d := Defaults()
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = d.Model
	}
	s.TargetLanguage = strings.TrimSpace(s.TargetLanguage)
	if s.TargetLanguage == "" {
		s.TargetLanguage = d.TargetLanguage
	}
	if strings.TrimSpace(s.Hotkey) == "" {
		s.Hotkey = d.Hotkey
	}
	if s.UILanguage == "" {
		s.UILanguage = d.UILanguage
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = d.TimeoutSeconds
	}
	s.APIKey = strings.TrimSpace(s.APIKey)
	return s
}

// Timeout возвращает таймаут запроса к API.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Config хранит настройки приложения.
type Config struct {
	mu       sync.RWMutex
	settings Settings
	path     string
}

// AppDir возвращает каталог данных приложения (~/.thirdspace).
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, appDirName), nil
}

// LogsDir возвращает каталог логов.
func LogsDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logsDirName), nil
}

// DefaultPath возвращает путь к config.json.
func DefaultPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// New загружает конфигурацию из файла по умолчанию.
// Конфигурация пригодна к использованию даже при ошибке.
func New() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{settings: Defaults()}, err
	}
	return Load(path)
}

// Load загружает конфигурацию из path. Отсутствующий файл - не ошибка.
func Load(path string) (*Config, error) {
	c := &Config{settings: Defaults(), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read %s: %w", configFileName, err)
	}

	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return c, fmt.Errorf("parse %s: %w", configFileName, err)
	}
	c.settings = s.normalize()
	return c, nil
}

// save записывает s в файл. Вызывается под c.mu.
func (c *Config) save(s Settings) error {
	if c.path == "" {
		return errors.New("config path is not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", configFileName, err)
	}
	return nil
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.path
}

// Snapshot возвращает копию текущих настроек.
func (c *Config) Snapshot() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Update сохраняет настройки. Если запись не удалась, текущие не меняются.
func (c *Config) Update(s Settings) error {
	if _, err := ParseHotkey(s.Hotkey); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := s.normalize()
	if err := c.save(next); err != nil {
		return err
	}
	c.settings = next
	return nil
}

// APIKey возвращает ключ из файла или из переменной окружения OPENROUTER_API_KEY.
func (c *Config) APIKey() string {
	c.mu.RLock()
	key := c.settings.APIKey
	c.mu.RUnlock()

	if key == "" {
		key = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
	return key
}

// Hotkey возвращает текущую горячую клавишу. Некорректное значение заменяется значением по умолчанию.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	raw := c.settings.Hotkey
	c.mu.RUnlock()

	hk, err := ParseHotkey(raw)
	if err != nil {
		hk, _ = ParseHotkey(DefaultHotkey)
	}
	return hk
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Notifications
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.settings
	next.Notifications = !next.Notifications
	if err := c.save(next); err != nil {
		return c.settings.Notifications, err
	}
	c.settings = next
	return next.Notifications, nil
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.UILanguage
}

// MaskKey скрывает ключ API для вывода в лог и терминал.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
