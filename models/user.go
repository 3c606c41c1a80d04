package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

// User представляет владельца события в ответах API.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"` // Бэкенд может вернуть хеш, клиенту он не нужен
	IsActive  bool   `json:"is_active"`
}

// FullName возвращает "Имя Фамилия" или пустую строку.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsActive  bool   `json:"is_active"`
}

// UserData - данные текущего пользователя (/users/me).
// Клиент знает только username, остальные поля передаются как есть.
type UserData struct {
	Username string
	Fields   map[string]any
}

// NewUserData создает минимальную запись пользователя только с именем.
func NewUserData(username string) *UserData {
	return &UserData{
		Username: username,
		Fields:   map[string]any{"username": username},
	}
}

// UnmarshalJSON сохраняет все поля ответа, выделяя username.
func (u *UserData) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("пустой объект пользователя")
	}
	username, _ := raw["username"].(string)
	u.Username = username
	u.Fields = raw
	return nil
}

// MarshalJSON возвращает исходные поля без изменений.
func (u UserData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Fields)+1)
	for k, v := range u.Fields {
		out[k] = v
	}
	out["username"] = u.Username
	return json.Marshal(out)
}

// ID возвращает числовой идентификатор пользователя, если бэкенд его прислал.
func (u *UserData) ID() (int64, bool) {
	if u == nil || u.Fields == nil {
		return 0, false
	}
	switch v := u.Fields["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// String возвращает поле по ключу в виде строки (для отображения).
func (u *UserData) String(key string) string {
	if u == nil || u.Fields == nil {
		return ""
	}
	s, _ := u.Fields[key].(string)
	return s
}
