package models

import (
	"encoding/json"
	"strings"
)

// AuthResponse представляет тело ответа при успешном входе.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorResponse - тело ошибки бэкенда: {"detail": ...}.
// detail бывает строкой или списком ошибок валидации [{"msg": ...}].
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Message извлекает человекочитаемое сообщение из detail.
// Возвращает пустую строку, если detail отсутствует или не распознан.
func (e ErrorResponse) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
