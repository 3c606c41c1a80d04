package testbackend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// userIDKey - ключ контекста с ID аутентифицированного пользователя.
const userIDKey contextKey = "userID"

type jwtClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueToken выдает подписанный JWT для пользователя.
func (b *Backend) IssueToken(username string) (string, error) {
	b.mu.Lock()
	rec, ok := b.users[username]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("пользователь '%s' не найден", username)
	}

	now := b.now()
	claims := jwtClaims{
		UserID: rec.user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rec.user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

// authenticator проверяет заголовок "Bearer <jwt>" и кладет ID пользователя в контекст.
func (b *Backend) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, tokenString, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
			}
			return b.secret, nil
		}, jwt.WithTimeFunc(b.now))
		if err != nil || !token.Valid {
			b.logger.Debug().Err(err).Msg("Невалидный токен")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		b.mu.Lock()
		_, exists := b.userByID(claims.UserID)
		b.mu.Unlock()
		if !exists {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
