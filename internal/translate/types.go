// Package translate выполняет перевод буфера обмена, по одному за раз.
package translate

import (
	"context"

	"thirdspace/internal/failure"
	"thirdspace/internal/prompt"
)

// Source - откуда пришёл запуск.
type Source string

const (
	SourceHotkey Source = "hotkey"
	SourceMenu   Source = "menu"
	SourceCLI    Source = "cli"
)

// State - состояние координатора.
type State string

const (
	StateIdle     State = "idle"
	StateInFlight State = "in_flight"
)

// NotifyKind - вид уведомления.
type NotifyKind string

const (
	NotifyProcessing NotifyKind = "processing"
	NotifySuccess    NotifyKind = "success"
	NotifyError      NotifyKind = "error"
)

// Request - один перевод, создаётся заново на каждый запуск.
type Request struct {
	SourceText     string
	TargetLanguage string
	Model          string
	APIKey         string
	Reasoning      bool
}

// Settings - снимок настроек для одного запроса.
type Settings struct {
	APIKey         string
	Model          string
	TargetLanguage string
	Reasoning      bool
}

// Result доставляется один раз на каждый принятый запуск.
type Result struct {
	ID     string
	Source Source
	Text   string
	Err    *failure.Error
}

// OK сообщает, удался ли перевод.
func (r Result) OK() bool {
	return r.Err == nil
}

// Kind возвращает вид ошибки или "" при успехе.
func (r Result) Kind() failure.Kind {
	if r.Err == nil {
		return ""
	}
	return r.Err.Kind
}

// Clipboard читает и записывает текст системного буфера.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Presenter показывает короткие уведомления.
type Presenter interface {
	Notify(kind NotifyKind, title string)
}

// Sender выполняет один обмен запрос/ответ с API модели.
type Sender interface {
	Send(ctx context.Context, p prompt.Encoded, model, apiKey string, reasoning bool) (string, error)
}

// Encoder собирает промпты.
type Encoder interface {
	Encode(sourceText, targetLanguage string) (prompt.Encoded, error)
}

// SettingsProvider отдаёт снимок настроек для запроса.
type SettingsProvider interface {
	TranslationSettings() Settings
}

// SettingsFunc позволяет использовать функцию как SettingsProvider.
type SettingsFunc func() Settings

func (f SettingsFunc) TranslationSettings() Settings {
	return f()
}
