// Package tray предоставляет системный трей с меню.
package tray

import (
	"github.com/getlantern/systray"

	"thirdspace/embedded"
	"thirdspace/internal/i18n"
)

// State представляет состояние приложения для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateProcessing
)

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnTranslate           func()
	OnNotificationsToggle func() bool
	OnSettingsClick       func()
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks    Callbacks
	notifyInit   bool
	hotkeyLabel  string
	status       *systray.MenuItem
	translateBtn *systray.MenuItem
	notifyOn     *systray.MenuItem
	settingsBtn  *systray.MenuItem
	quitBtn      *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, notificationsOn bool) *Tray {
	return &Tray{
		callbacks:  callbacks,
		notifyInit: notificationsOn,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(embedded.IconIdle)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	// Статус
	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()

	systray.AddSeparator()

	t.translateBtn = systray.AddMenuItem(t.translateTitle(), i18n.T("tray_translate_hint"))
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.notifyInit)
	t.settingsBtn = systray.AddMenuItem(i18n.T("tray_settings"), i18n.T("tray_settings_hint"))

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.translateBtn.ClickedCh:
			if t.callbacks.OnTranslate != nil {
				t.callbacks.OnTranslate()
			}

		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		case <-t.settingsBtn.ClickedCh:
			if t.callbacks.OnSettingsClick != nil {
				// Диалоги блокируют, меню должно оставаться отзывчивым
				go t.callbacks.OnSettingsClick()
			}

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// SetState устанавливает состояние приложения и обновляет иконку.
func (t *Tray) SetState(state State) {
	switch state {
	case StateIdle:
		systray.SetIcon(embedded.IconIdle)
		systray.SetTooltip(i18n.T("app_name") + " - " + i18n.T("tray_ready"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_ready"))
		}
	case StateProcessing:
		systray.SetIcon(embedded.IconProcessing)
		systray.SetTooltip(i18n.T("app_name") + " - " + i18n.T("tray_processing"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_processing"))
		}
	}
}

// SetHotkeyLabel показывает текущую комбинацию рядом с пунктом "Перевести".
func (t *Tray) SetHotkeyLabel(label string) {
	t.hotkeyLabel = label
	if t.translateBtn != nil {
		t.translateBtn.SetTitle(t.translateTitle())
	}
}

func (t *Tray) translateTitle() string {
	if t.hotkeyLabel == "" {
		return i18n.T("tray_translate")
	}
	return i18n.T("tray_translate") + " (" + t.hotkeyLabel + ")"
}

func (t *Tray) onExit() {}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	if t.status != nil {
		t.status.SetTitle(i18n.T("tray_ready"))
	}
	if t.translateBtn != nil {
		t.translateBtn.SetTitle(t.translateTitle())
		t.translateBtn.SetTooltip(i18n.T("tray_translate_hint"))
	}
	if t.notifyOn != nil {
		t.notifyOn.SetTitle(i18n.T("tray_notifications"))
		t.notifyOn.SetTooltip(i18n.T("tray_notifications_hint"))
	}
	if t.settingsBtn != nil {
		t.settingsBtn.SetTitle(i18n.T("tray_settings"))
		t.settingsBtn.SetTooltip(i18n.T("tray_settings_hint"))
	}
	if t.quitBtn != nil {
		t.quitBtn.SetTitle(i18n.T("tray_quit"))
		t.quitBtn.SetTooltip(i18n.T("tray_quit_hint"))
	}
}
