// Package failure делит ошибки перевода на закрытый набор видов.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind - вид ошибки, который видит пользователь.
type Kind string

const (
	EmptyInput        Kind = "empty_input"
	MissingAPIKey     Kind = "missing_api_key"
	NetworkError      Kind = "network_error"
	APIError          Kind = "api_error"
	MalformedResponse Kind = "malformed_response"
	Clipboard         Kind = "clipboard"
)

// ExcerptLimit ограничивает фрагмент ответа для диагностики.
const ExcerptLimit = 400

// MessageKey возвращает ключ i18n короткого сообщения для пользователя.
func (k Kind) MessageKey() string {
	switch k {
	case EmptyInput:
		return "error_empty_input"
	case MissingAPIKey:
		return "error_missing_api_key"
	case NetworkError:
		return "error_network"
	case APIError:
		return "error_api"
	case MalformedResponse:
		return "error_malformed_response"
	case Clipboard:
		return "error_clipboard"
	default:
		return "notify_error"
	}
}

// Error - классифицированная ошибка.
type Error struct {
	Kind    Kind
	Status  int    // HTTP статус для APIError
	Message string // сообщение провайдера или краткое описание
	Excerpt string // обрезанный ответ для MalformedResponse
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is совпадает с любым *Error того же вида: errors.Is(err, &Error{Kind: k}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New создаёт ошибку заданного вида.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap относит err к виду kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// API создаёт APIError с HTTP статусом.
func API(status int, message string) *Error {
	return &Error{Kind: APIError, Status: status, Message: message}
}

// Malformed создаёт MalformedResponse с обрезанным фрагментом raw.
func Malformed(message, raw string) *Error {
	return &Error{Kind: MalformedResponse, Message: message, Excerpt: Excerpt(raw, ExcerptLimit)}
}

// As возвращает классифицированную ошибку внутри err, если она есть.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf возвращает вид err. Неклассифицированные ошибки считаются NetworkError.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return NetworkError
}

// Excerpt возвращает s одной строкой, не длиннее n рун.
func Excerpt(s string, n int) string {
	cleaned := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	runes := []rune(cleaned)
	if len(runes) <= n {
		return cleaned
	}
	return string(runes[:n]) + "..."
}
