// Package notify предоставляет системные уведомления.
package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"thirdspace/internal/i18n"
	"thirdspace/internal/translate"
)

// Notifier отправляет системные уведомления и реализует translate.Presenter.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message string) error
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Enabled возвращает текущее состояние.
func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

// Notify показывает уведомление о ходе перевода.
func (n *Notifier) Notify(kind translate.NotifyKind, title string) {
	switch kind {
	case translate.NotifyError:
		n.notify(i18n.T("app_name")+": "+i18n.T("notify_error"), title)
	default:
		n.notify(i18n.T("app_name"), title)
	}
}

// Info показывает информационное уведомление.
func (n *Notifier) Info(msg string) {
	n.notify(i18n.T("app_name"), msg)
}

// Error показывает уведомление об ошибке вне перевода (например, регистрация горячей клавиши).
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("app_name")+": "+i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	// Игнорируем ошибки уведомлений - они не критичны
	_ = n.send(title, message)
}
