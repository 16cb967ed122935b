// Package hotkey предоставляет глобальные горячие клавиши.
package hotkey

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"thirdspace/internal/config"
)

const (
	// Защита от key repeat
	debounceInterval  = 300 * time.Millisecond
	unregisterTimeout = 500 * time.Millisecond
)

// binding - одна системная регистрация комбинации.
type binding interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
	Keyup() <-chan hotkey.Event
}

func newBinding(mods []hotkey.Modifier, key hotkey.Key) binding {
	return hotkey.New(mods, key)
}

// Handler обрабатывает нажатия глобальной горячей клавиши.
type Handler struct {
	mu      sync.Mutex
	hk      binding
	onPress func()
	current config.HotkeyConfig
	stopCh  chan struct{}
	log     *zap.SugaredLogger
	bind    func([]hotkey.Modifier, hotkey.Key) binding
}

// New создаёт обработчик горячей клавиши.
func New(onPress func(), log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		onPress: onPress,
		log:     log,
		bind:    newBinding,
	}
}

// Register регистрирует горячую клавишу, заменяя предыдущую.
// Если новую комбинацию занять не удалось, предыдущая регистрируется снова.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	h.log.Infow("Registering hotkey", "hotkey", cfg.String())

	mods, key, err := convert(cfg)
	if err != nil {
		return err
	}

	h.release()

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.bindLocked(cfg, mods, key); err != nil {
		h.log.Errorw("Hotkey registration failed", "hotkey", cfg.String(), "error", err)
		regErr := fmt.Errorf("register %s (%s): %w", cfg.String(), registerHint, err)

		prev := h.current
		if prev.Key == "" || prev.String() == cfg.String() {
			return regErr
		}
		pmods, pkey, convErr := convert(prev)
		if convErr != nil {
			return regErr
		}
		if err := h.bindLocked(prev, pmods, pkey); err != nil {
			h.log.Errorw("Previous hotkey could not be restored", "hotkey", prev.String(), "error", err)
			return regErr
		}
		h.log.Infow("Previous hotkey restored", "hotkey", prev.String())
		return regErr
	}

	h.log.Infow("Hotkey registered", "hotkey", cfg.String())
	return nil
}

// bindLocked регистрирует комбинацию и запускает listener. Вызывается под h.mu.
func (h *Handler) bindLocked(cfg config.HotkeyConfig, mods []hotkey.Modifier, key hotkey.Key) error {
	hk := h.bind(mods, key)
	if err := hk.Register(); err != nil {
		return err
	}
	h.hk = hk
	h.current = cfg
	h.stopCh = make(chan struct{})
	go h.listen(hk, h.stopCh)
	return nil
}

// release останавливает listener и отменяет регистрацию с таймаутом.
func (h *Handler) release() {
	h.mu.Lock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	old := h.hk
	h.hk = nil
	h.mu.Unlock()

	if old == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		_ = old.Unregister()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(unregisterTimeout):
		h.log.Warnw("Hotkey unregister timeout")
	}
}

func (h *Handler) listen(hk binding, stopCh chan struct{}) {
	var lastKeydown time.Time

	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastKeydown) < debounceInterval {
				continue
			}
			lastKeydown = now
			if h.onPress != nil {
				h.onPress()
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

// Unregister отменяет регистрацию горячей клавиши.
func (h *Handler) Unregister() {
	h.release()
	h.log.Debugw("Hotkey unregistered")
}

// Suspend временно снимает регистрацию, сохраняя текущую комбинацию.
// Нужен, пока пользователь выбирает новую комбинацию.
func (h *Handler) Suspend() {
	h.release()
	h.log.Debugw("Hotkey suspended", "hotkey", h.Current().String())
}

// Restore повторно регистрирует комбинацию, снятую через Suspend.
func (h *Handler) Restore() error {
	cur := h.Current()
	if cur.Key == "" {
		return nil
	}
	return h.Register(cur)
}

// Current возвращает текущую зарегистрированную горячую клавишу.
func (h *Handler) Current() config.HotkeyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// RunOnMainThread запускает функцию в главном потоке (требование для macOS).
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

func convert(cfg config.HotkeyConfig) ([]hotkey.Modifier, hotkey.Key, error) {
	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, m := range cfg.Modifiers {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported modifier %q", m)
		}
		mods = append(mods, mod)
	}

	key, ok := keyMap[cfg.Key]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported key %q", cfg.Key)
	}
	return mods, key, nil
}

// modifierMap и registerHint определены в modifiers_{linux,darwin,windows}.go

// keyMap маппинг config.Key -> hotkey.Key
var keyMap = map[config.Key]hotkey.Key{
	config.KeySpace:  hotkey.KeySpace,
	config.KeyReturn: hotkey.KeyReturn,
	config.KeyTab:    hotkey.KeyTab,
	config.KeyEscape: hotkey.KeyEscape,
	config.KeyDelete: hotkey.KeyDelete,
	config.KeyUp:     hotkey.KeyUp,
	config.KeyDown:   hotkey.KeyDown,
	config.KeyLeft:   hotkey.KeyLeft,
	config.KeyRight:  hotkey.KeyRight,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,

	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}
