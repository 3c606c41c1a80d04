package api

import (
	"errors"
	"fmt"
)

// ErrAuthorization сигнализирует об ошибке авторизации (401).
// Проверяется через errors.Is на *Error со статусом 401.
var ErrAuthorization = errors.New("ошибка авторизации")

// Kind - класс ошибки запроса.
type Kind int

const (
	// KindNetwork - запрос не дошел до сервера или ответ не был прочитан.
	KindNetwork Kind = iota + 1
	// KindStatus - сервер ответил статусом вне диапазона 2xx.
	KindStatus
	// KindDecode - тело успешного ответа не удалось разобрать.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error описывает неудачный запрос к API.
// Message - текст для пользователя: detail бэкенда либо запасное сообщение.
type Error struct {
	Kind       Kind
	Method     string
	URL        string
	StatusCode int
	Detail     string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("ошибка запроса %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("ошибка запроса %s %s", e.Method, e.URL)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибку со статусом 401 с ErrAuthorization.
func (e *Error) Is(target error) bool {
	return target == ErrAuthorization && e.Kind == KindStatus && e.StatusCode == 401
}

// StatusCode возвращает HTTP статус из ошибки API или 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// StatusFallback возвращает функцию запасного сообщения вида "<prefix>: <status>".
func StatusFallback(prefix string) func(int) string {
	return func(status int) string {
		return fmt.Sprintf("%s: %d", prefix, status)
	}
}

// StaticFallback возвращает функцию, всегда отдающую одно и то же сообщение.
func StaticFallback(message string) func(int) string {
	return func(int) string {
		return message
	}
}
