// Package clipboard читает и записывает текст системного буфера обмена.
//
// Основной backend - golang.design/x/clipboard. Если он не инициализируется
// (нет X11 / cgo), используется github.com/atotto/clipboard, который вызывает
// xclip, xsel или wl-copy.
//
// На X11 native backend держит содержимое в памяти процесса: после выхода
// оно пропадает. Короткоживущие команды используют NewDetached.
package clipboard

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	atotto "github.com/atotto/clipboard"
	"go.uber.org/zap"
	xclip "golang.design/x/clipboard"
)

// backend - один способ доступа к буферу.
// Write возвращает канал, если содержимым владеет текущий процесс; канал
// закрывается, когда буфер перезаписала другая программа.
type backend interface {
	Name() string
	Read() (string, error)
	Write(text string) (<-chan struct{}, error)
}

type nativeBackend struct{}

func (nativeBackend) Name() string { return "native" }

func (nativeBackend) Read() (string, error) {
	return string(xclip.Read(xclip.FmtText)), nil
}

func (nativeBackend) Write(text string) (<-chan struct{}, error) {
	changed := xclip.Write(xclip.FmtText, []byte(text))
	// на macOS и Windows буфер хранит система
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return nil, nil
	}
	return changed, nil
}

type commandBackend struct{}

func (commandBackend) Name() string { return "command" }

func (commandBackend) Read() (string, error) {
	if atotto.Unsupported {
		return "", errors.New("no clipboard utility found")
	}
	return atotto.ReadAll()
}

// Write отдаёт текст внешней утилите, которая живёт дольше процесса.
func (commandBackend) Write(text string) (<-chan struct{}, error) {
	if atotto.Unsupported {
		return nil, errors.New("no clipboard utility found")
	}
	return nil, atotto.WriteAll(text)
}

// System реализует доступ к буферу обмена с резервным backend.
type System struct {
	mu       sync.Mutex
	backends []backend
	held     <-chan struct{} // от последней записи, см. Held
	log      *zap.SugaredLogger
}

// New выбирает доступные backends для долгоживущего процесса (трей).
func New(log *zap.SugaredLogger) *System {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var backends []backend
	if native, ok := initNative(log); ok {
		backends = append(backends, native)
	}
	backends = append(backends, commandBackend{})
	return newSystem(log, backends...)
}

// NewDetached предпочитает внешние утилиты, чтобы записанный текст
// пережил выход процесса. Для одноразовых команд CLI.
func NewDetached(log *zap.SugaredLogger) *System {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	backends := []backend{commandBackend{}}
	if native, ok := initNative(log); ok {
		backends = append(backends, native)
	}
	return newSystem(log, backends...)
}

func initNative(log *zap.SugaredLogger) (backend, bool) {
	if err := xclip.Init(); err != nil {
		log.Warnw("Native clipboard unavailable, using command fallback", "error", err)
		return nil, false
	}
	return nativeBackend{}, true
}

func newSystem(log *zap.SugaredLogger, backends ...backend) *System {
	return &System{backends: backends, log: log}
}

// ReadText возвращает текст из буфера. Пустой буфер - не ошибка.
func (s *System) ReadText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, b := range s.backends {
		text, err := b.Read()
		if err == nil {
			return text, nil
		}
		s.log.Debugw("Clipboard read failed", "backend", b.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	return "", errors.Join(append([]error{errors.New("clipboard read failed")}, errs...)...)
}

// WriteText заменяет содержимое буфера.
func (s *System) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, b := range s.backends {
		held, err := b.Write(text)
		if err == nil {
			s.held = held
			return nil
		}
		s.log.Debugw("Clipboard write failed", "backend", b.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	return errors.Join(append([]error{errors.New("clipboard write failed")}, errs...)...)
}

// Held возвращает канал, если последний записанный текст хранится в памяти
// процесса и пропадёт при выходе. Канал закрывается, когда буфер перезаписан.
// nil - текст переживёт процесс.
func (s *System) Held() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}
