// Package auth управляет токеном доступа, входом, регистрацией
// и состоянием сессии пользователя.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/validation"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// Пути API аутентификации.
const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	currentPath  = "/users/me"
)

// RegisterForm - данные формы регистрации.
type RegisterForm struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Username        string
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

var registerMessages = validation.Messages{ //nolint:gochecknoglobals // Таблица переводов
	"FirstName.required":      "El nombre es obligatorio",
	"LastName.required":       "El apellido es obligatorio",
	"Email.required":          "El correo electrónico es obligatorio",
	"Email.email":             "El correo electrónico no es válido",
	"Password.required":       "La contraseña es obligatoria",
	"Password.min":            "La contraseña debe tener al menos 6 caracteres",
	"ConfirmPassword.eqfield": "Las contraseñas no coinciden",
}

// Service - клиент аутентификации: вход, выход, запросы с токеном, регистрация.
type Service struct {
	client    api.Client
	tokens    *TokenStore
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewService создает сервис аутентификации.
func NewService(client api.Client, store storage.Storage, logger zerolog.Logger) *Service {
	return &Service{
		client:    client,
		tokens:    NewTokenStore(store),
		validator: validation.New(registerMessages),
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// Login отправляет учетные данные формой и сохраняет полученный токен.
func (s *Service) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := s.client.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     loginPath,
		Form:     url.Values{"username": {username}, "password": {password}},
		Fallback: api.StaticFallback(LoginFallbackMessage),
	}, &resp)
	if err != nil {
		s.logger.Info().Str("username", username).Err(err).Msg("Вход не выполнен")
		return nil, &AuthError{Message: userMessage(err, LoginFallbackMessage), StatusCode: api.StatusCode(err), Err: err}
	}
	if resp.AccessToken == "" {
		return nil, &AuthError{Message: LoginFallbackMessage, StatusCode: http.StatusOK,
			Err: errors.New("сервер вернул пустой токен")}
	}

	if err = s.tokens.Set(resp.AccessToken, resp.TokenType); err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", username).Msg("Вход выполнен")
	return &resp, nil
}

// Logout удаляет сохраненный токен. Сетевых запросов не делает.
func (s *Service) Logout() error {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("Не удалось удалить токен")
		return err
	}
	s.logger.Debug().Msg("Токен удален")
	return nil
}

// IsAuthenticated проверяет только наличие токена, без проверки его валидности.
func (s *Service) IsAuthenticated() bool {
	token, err := s.tokens.Get()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Не удалось прочитать токен")
		return false
	}
	return token != nil
}

// Token возвращает сохраненный токен или nil.
func (s *Service) Token() (*Token, error) {
	return s.tokens.Get()
}

// AuthHeader возвращает заголовок Authorization для текущего токена.
// Если токена нет, возвращается пустой набор заголовков.
func (s *Service) AuthHeader() http.Header {
	header := http.Header{}
	token, err := s.tokens.Get()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Не удалось прочитать токен")
		return header
	}
	if token == nil {
		return header
	}
	header.Set("Authorization", capitalize(token.Scheme)+" "+token.Value)
	return header
}

// FetchWithAuth выполняет запрос с заголовком Authorization.
// Заголовок авторизации перекрывает одноименный заголовок вызывающего.
func (s *Service) FetchWithAuth(ctx context.Context, req api.Request, out any) error {
	// Ключи вызывающего приводятся к каноническому виду.
	merged := http.Header{}
	for k, vs := range req.Header {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	for k, vs := range s.AuthHeader() {
		merged[k] = vs
	}
	req.Header = merged
	return s.client.Do(ctx, req, out)
}

// CurrentUser запрашивает данные текущего пользователя.
func (s *Service) CurrentUser(ctx context.Context) (*models.UserData, error) {
	var user models.UserData
	if err := s.FetchWithAuth(ctx, api.Request{Path: currentPath}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register проверяет форму и создает учетную запись.
// Если username не указан, используется часть email до '@'.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Username = strings.TrimSpace(form.Username)

	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}

	username := form.Username
	if username == "" {
		username, _, _ = strings.Cut(form.Email, "@")
	}

	var created models.User
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   registerPath,
		JSON: models.RegisterRequest{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Username:  username,
			Email:     form.Email,
			Password:  form.Password,
			IsActive:  true,
		},
		Fallback: api.StaticFallback(RegisterFallbackMessage),
	}, &created)
	if err != nil {
		s.logger.Info().Str("username", username).Err(err).Msg("Регистрация не выполнена")
		return nil, &AuthError{Message: userMessage(err, RegisterFallbackMessage), StatusCode: api.StatusCode(err), Err: err}
	}

	s.logger.Info().Str("username", username).Msg("Пользователь зарегистрирован")
	return &created, nil
}

// userMessage возвращает текст ответа сервера, а для сетевых ошибок и
// нечитаемых ответов - запасное сообщение.
func userMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Kind != api.KindStatus {
		return fallback
	}
	return err.Error()
}

// capitalize переводит первую букву в верхний регистр: "bearer" -> "Bearer".
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
