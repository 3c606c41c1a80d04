package auth

import (
	"errors"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/validation"
)

// Сообщения по умолчанию, если бэкенд не вернул detail.
const (
	LoginFallbackMessage    = "Error al iniciar sesión. Verifica tus credenciales."
	RegisterFallbackMessage = "Error al registrarse. Por favor, inténtalo de nuevo."
)

var (
	// ErrNotAuthenticated - действие требует входа в систему.
	ErrNotAuthenticated = errors.New("требуется вход в систему")
	// ErrSessionLoading - сессия еще восстанавливается.
	ErrSessionLoading = errors.New("сессия еще загружается")
)

// AuthError - неудачный вход или регистрация.
// Message содержит detail бэкенда либо сообщение по умолчанию.
type AuthError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError - ошибка проверки формы регистрации до отправки запроса.
type ValidationError = validation.Error
