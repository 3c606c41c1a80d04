package auth

import (
	"errors"
	"fmt"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
)

// Ключи хранилища для токена.
const (
	KeyToken     = "token"
	KeyTokenType = "token_type"

	DefaultScheme = "bearer"
)

// Token - токен доступа и его схема (обычно "bearer").
type Token struct {
	Value  string
	Scheme string
}

// TokenStore хранит токен между запусками в постоянном хранилище.
// Срок действия токена локально не отслеживается.
type TokenStore struct {
	storage storage.Storage
}

// NewTokenStore создает хранилище токена поверх storage.
func NewTokenStore(s storage.Storage) *TokenStore {
	return &TokenStore{storage: s}
}

// Set сохраняет токен и схему. Если схему записать не удалось,
// восстанавливается прежнее значение токена.
func (t *TokenStore) Set(value, scheme string) error {
	prev, hadPrev, err := t.storage.GetItem(KeyToken)
	if err != nil {
		return fmt.Errorf("ошибка чтения токена: %w", err)
	}
	if err = t.storage.SetItem(KeyToken, value); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	if err = t.storage.SetItem(KeyTokenType, scheme); err != nil {
		var rollbackErr error
		if hadPrev {
			rollbackErr = t.storage.SetItem(KeyToken, prev)
		} else {
			rollbackErr = t.storage.RemoveItem(KeyToken)
		}
		return errors.Join(fmt.Errorf("ошибка сохранения типа токена: %w", err), rollbackErr)
	}
	return nil
}

// Get возвращает сохраненный токен или nil, если его нет.
func (t *TokenStore) Get() (*Token, error) {
	value, ok, err := t.storage.GetItem(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения токена: %w", err)
	}
	if !ok || value == "" {
		return nil, nil //nolint:nilnil // Отсутствие токена не является ошибкой
	}

	scheme, _, err := t.storage.GetItem(KeyTokenType)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения типа токена: %w", err)
	}
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Token{Value: value, Scheme: scheme}, nil
}

// Clear удаляет токен и его схему.
func (t *TokenStore) Clear() error {
	if err := t.storage.RemoveItem(KeyToken); err != nil {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	if err := t.storage.RemoveItem(KeyTokenType); err != nil {
		return fmt.Errorf("ошибка удаления типа токена: %w", err)
	}
	return nil
}
