// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"thirdspace/internal/clipboard"
	"thirdspace/internal/config"
	"thirdspace/internal/dialog"
	"thirdspace/internal/hotkey"
	"thirdspace/internal/i18n"
	"thirdspace/internal/models"
	"thirdspace/internal/notify"
	"thirdspace/internal/openrouter"
	"thirdspace/internal/prompt"
	"thirdspace/internal/settings"
	"thirdspace/internal/translate"
	"thirdspace/internal/tray"
)

// PromptFileName - необязательный пользовательский шаблон в каталоге данных.
const PromptFileName = "prompt.yaml"

// App представляет главное приложение.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config      *config.Config
	log         *zap.SugaredLogger
	coordinator *translate.Coordinator
	models      *models.Manager
	notifier    *notify.Notifier
	tray        *tray.Tray
	hotkey      *hotkey.Handler
	settings    *settings.Window
	form        *dialog.Form // запасная форма, если окно Gio не открылось
	applier     *applier

	mu      sync.Mutex
	editing bool // открыта запасная форма
}

// Deps - общие зависимости, которые создаются и для трея, и для CLI.
type Deps struct {
	Config      *config.Config
	Client      *openrouter.Client
	Codec       *prompt.Codec
	Models      *models.Manager
	Log         *zap.SugaredLogger
	DataDir     string
	PromptError error // ошибка загрузки prompt.yaml, если была
}

// NewDeps собирает конфигурацию, клиент API, кодек и каталог моделей.
func NewDeps(cfg *config.Config, dataDir string, log *zap.SugaredLogger) *Deps {
	s := cfg.Snapshot()

	clientCfg := openrouter.DefaultConfig()
	if s.BaseURL != "" {
		clientCfg.BaseURL = s.BaseURL
	}
	clientCfg.Timeout = s.Timeout()
	client := openrouter.New(clientCfg, log.Named("openrouter"))

	d := &Deps{
		Config:  cfg,
		Client:  client,
		Models:  models.NewManager(dataDir, client, log.Named("models")),
		Log:     log,
		DataDir: dataDir,
	}

	template, err := prompt.LoadTemplate(filepath.Join(dataDir, PromptFileName))
	if err != nil {
		d.PromptError = err
		log.Warnw("Custom prompt ignored", "error", err)
	}
	d.Codec = prompt.NewCodec(template)
	return d
}

// TranslationSettings возвращает снимок настроек для одного запроса.
func (d *Deps) TranslationSettings() translate.Settings {
	s := d.Config.Snapshot()
	return translate.Settings{
		APIKey:         d.Config.APIKey(),
		Model:          s.Model,
		TargetLanguage: s.TargetLanguage,
		Reasoning:      s.ReasoningEnabled,
	}
}

// New создаёт приложение с треем и горячей клавишей.
func New(d *Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := d.Config

	i18n.SetLanguage(i18n.Parse(cfg.UILanguage()))

	notifier := notify.New(cfg.NotificationsEnabled())

	a := &App{
		ctx:      ctx,
		cancel:   cancel,
		config:   cfg,
		log:      d.Log,
		models:   d.Models,
		notifier: notifier,
	}

	a.coordinator = translate.NewCoordinator(
		d.Client,
		d.Codec,
		clipboard.New(d.Log.Named("clipboard")),
		notifier,
		d,
		d.Log.Named("translate"),
	)
	a.coordinator.OnStart(a.onStart)
	a.coordinator.OnResult(a.onResult)

	a.hotkey = hotkey.New(a.coordinator.Handler(ctx, translate.SourceHotkey), d.Log.Named("hotkey"))
	a.applier = &applier{hotkeys: a.hotkey, store: cfg, log: d.Log}

	capture := &hotkeyCapture{gate: a.coordinator.Gate(), hotkey: a.hotkey, log: d.Log}
	a.form = dialog.NewForm(capture)
	a.settings = settings.New(settings.Options{
		Capture:   capture,
		OnApply:   a.applySettings,
		OnFailure: a.openFallbackForm,
		Log:       d.Log.Named("settings"),
	})

	a.tray = tray.New(tray.Callbacks{
		OnTranslate:           func() { a.trigger(translate.SourceMenu) },
		OnNotificationsToggle: a.toggleNotifications,
		OnSettingsClick:       a.openSettings,
		OnQuit:                a.Close,
	}, notifier.Enabled())

	return a
}

// Coordinator возвращает координатор перевода.
func (a *App) Coordinator() *translate.Coordinator {
	return a.coordinator
}

// Run запускает приложение. Блокирующая функция.
func (a *App) Run() {
	a.tray.Run(func() {
		hk := a.config.Hotkey()
		if err := a.hotkey.Register(hk); err != nil {
			a.log.Errorw("Hotkey registration failed", "hotkey", hk.String(), "error", err)
			a.notifier.Error(i18n.T("error_hotkey_register") + ": " + hk.String())
		} else {
			a.tray.SetHotkeyLabel(hk.String())
		}
		a.log.Infow("ThirdSpace ready", "hotkey", hk.String(), "model", a.config.Snapshot().Model)
		a.notifier.Info(i18n.T("notify_ready"))
	})
}

func (a *App) trigger(src translate.Source) {
	a.coordinator.Trigger(a.ctx, src)
}

func (a *App) onStart(src translate.Source) {
	a.tray.SetState(tray.StateProcessing)
}

func (a *App) onResult(res translate.Result) {
	a.tray.SetState(tray.StateIdle)
}

func (a *App) toggleNotifications() bool {
	enabled, err := a.config.ToggleNotifications()
	if err != nil {
		a.log.Errorw("Could not save settings", "error", err)
	}
	a.notifier.SetEnabled(enabled)
	return enabled
}

// openSettings показывает окно настроек; каталог моделей обновляется в фоне.
// Если окно уже открыто, оно поднимается поверх остальных.
func (a *App) openSettings() {
	visible := a.settings.IsVisible()
	a.settings.Show(a.config.Snapshot(), a.models.List())

	key := a.config.APIKey()
	if visible || key == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, a.config.Snapshot().Timeout())
		defer cancel()
		if _, err := a.models.Refresh(ctx, key); err != nil {
			a.log.Warnw("Models refresh failed", "error", err)
			return
		}
		a.settings.SetModels(a.models.List())
	}()
}

// openFallbackForm проводит пользователя по диалогам zenity, если окно
// настроек не удалось создать. Повторное открытие игнорируется.
func (a *App) openFallbackForm(cause error) {
	a.mu.Lock()
	if a.editing {
		a.mu.Unlock()
		return
	}
	a.editing = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.editing = false
		a.mu.Unlock()
	}()

	a.log.Warnw("Falling back to dialog settings form", "cause", cause)

	updated, err := a.form.Edit(a.config.Snapshot(), a.models.IDs())
	if errors.Is(err, dialog.ErrCanceled) {
		a.log.Debugw("Settings edit canceled")
		return
	}
	if err != nil {
		a.log.Errorw("Settings dialog failed", "error", err)
		return
	}

	if err := a.applySettings(updated); err != nil {
		// форма уже закрыта, уведомления могут быть выключены
		dialog.ShowError(i18n.T("settings_title"), err.Error())
	}
}

// applySettings регистрирует горячую клавишу и сохраняет настройки.
// При ошибке ничего не меняется, и ошибка возвращается окну.
func (a *App) applySettings(updated config.Settings) error {
	old := a.config.Snapshot()

	hotkeyChanged, err := a.applier.apply(updated)
	var hkErr *hotkeyError
	switch {
	case errors.As(err, &hkErr):
		a.log.Errorw("Hotkey registration failed", "hotkey", hkErr.hotkey, "error", hkErr.err)
		a.notifier.Error(i18n.T("error_hotkey_register") + ": " + hkErr.hotkey)
		return fmt.Errorf("%s: %s", i18n.T("error_hotkey_register"), hkErr.hotkey)
	case err != nil:
		a.log.Errorw("Could not save settings", "error", err)
		a.notifier.Error(i18n.T("error_settings_save"))
		return fmt.Errorf("%s: %w", i18n.T("error_settings_save"), err)
	}

	a.log.Infow("Settings saved",
		"model", updated.Model,
		"target_language", updated.TargetLanguage,
		"reasoning", updated.ReasoningEnabled,
		"hotkey", updated.Hotkey,
		"api_key", config.MaskKey(updated.APIKey),
	)

	if updated.UILanguage != old.UILanguage {
		i18n.SetLanguage(i18n.Parse(updated.UILanguage))
		a.tray.RefreshUI()
	}
	if hotkeyChanged {
		a.tray.SetHotkeyLabel(a.hotkey.Current().String())
	}
	a.notifier.Info(i18n.T("notify_saved"))
	return nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.cancel()
	a.settings.Hide()
	if a.hotkey != nil {
		a.hotkey.Unregister()
	}
	a.coordinator.Wait()
	a.log.Infow("ThirdSpace stopped")
}

// hotkeyCapture приостанавливает и координатор, и системную регистрацию,
// пока пользователь выбирает новую комбинацию.
type hotkeyCapture struct {
	gate   *translate.Gate
	hotkey *hotkey.Handler
	log    *zap.SugaredLogger
}

func (c *hotkeyCapture) Pause() {
	c.gate.Pause()
	c.hotkey.Suspend()
}

func (c *hotkeyCapture) Resume() {
	if err := c.hotkey.Restore(); err != nil {
		c.log.Warnw("Hotkey restore failed", "error", err)
	}
	c.gate.Resume()
}
