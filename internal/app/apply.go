package app

import (
	"fmt"

	"go.uber.org/zap"

	"thirdspace/internal/config"
)

// registrar - системная регистрация горячей клавиши.
type registrar interface {
	Register(config.HotkeyConfig) error
	Current() config.HotkeyConfig
}

// store - постоянное хранилище настроек.
type store interface {
	Update(config.Settings) error
}

// applier сохраняет настройки так, чтобы файл и зарегистрированная
// комбинация не расходились: сначала регистрация, потом запись.
type applier struct {
	hotkeys registrar
	store   store
	log     *zap.SugaredLogger
}

// hotkeyError - новую комбинацию не удалось зарегистрировать, настройки не сохранены.
type hotkeyError struct {
	hotkey string
	err    error
}

func (e *hotkeyError) Error() string {
	return fmt.Sprintf("hotkey %s: %v", e.hotkey, e.err)
}

func (e *hotkeyError) Unwrap() error { return e.err }

// apply регистрирует новую комбинацию (если она изменилась) и сохраняет настройки.
// Возвращает true, если комбинация сменилась.
func (p *applier) apply(updated config.Settings) (bool, error) {
	hk, err := config.ParseHotkey(updated.Hotkey)
	if err != nil {
		return false, &hotkeyError{hotkey: updated.Hotkey, err: err}
	}

	prev := p.hotkeys.Current()
	changed := hk.String() != prev.String()
	if changed {
		// Register сам возвращает предыдущую комбинацию при ошибке
		if err := p.hotkeys.Register(hk); err != nil {
			return false, &hotkeyError{hotkey: hk.String(), err: err}
		}
	}

	if err := p.store.Update(updated); err != nil {
		if changed && prev.Key != "" {
			if rerr := p.hotkeys.Register(prev); rerr != nil {
				p.log.Errorw("Previous hotkey could not be restored", "hotkey", prev.String(), "error", rerr)
			}
		}
		return false, fmt.Errorf("save settings: %w", err)
	}
	return changed, nil
}
