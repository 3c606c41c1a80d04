package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo - сведения из JWT для отображения пользователю.
// Подпись не проверяется, поэтому эти данные нельзя использовать
// для решений о доступе.
type TokenInfo struct {
	Scheme    string
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Claims    jwt.MapClaims
}

// Expired сообщает, истек ли срок действия токена на момент now.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// TokenInfo декодирует сохраненный токен без проверки подписи.
func (s *Service) TokenInfo() (*TokenInfo, error) {
	token, err := s.tokens.Get()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNotAuthenticated
	}
	return ParseTokenInfo(token)
}

// ParseTokenInfo разбирает claims токена без проверки подписи.
func ParseTokenInfo(token *Token) (*TokenInfo, error) {
	if token == nil {
		return nil, errors.New("токен отсутствует")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.Value, claims); err != nil {
		return nil, fmt.Errorf("токен не является JWT: %w", err)
	}

	info := &TokenInfo{Scheme: token.Scheme, Claims: claims}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, nil
}
