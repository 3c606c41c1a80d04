package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// State - состояние сессии.
type State int

const (
	// StateUnknown - сессия еще не восстановлена из сохраненного токена.
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Authenticator - операции сервиса аутентификации, нужные сессии.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Logout() error
	IsAuthenticated() bool
	CurrentUser(ctx context.Context) (*models.UserData, error)
}

// Snapshot - снимок состояния сессии.
type Snapshot struct {
	User            *models.UserData
	IsAuthenticated bool
	Loading         bool
	Error           string
	State           State
}

// Session хранит состояние входа на время работы приложения.
// Создается явно и передается в TUI и CLI.
type Session struct {
	auth   Authenticator
	logger zerolog.Logger

	mu       sync.Mutex
	user     *models.UserData
	authed   bool
	loading  bool
	errMsg   string
	state    State
	watchers []func(Snapshot)
	onLogout []func()
}

// NewSession создает сессию в состоянии StateUnknown.
func NewSession(a Authenticator, logger zerolog.Logger) *Session {
	return &Session{
		auth:    a,
		logger:  logger.With().Str("component", "session").Logger(),
		loading: true,
		state:   StateUnknown,
	}
}

// Subscribe регистрирует обработчик изменений состояния.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// OnLogout регистрирует обработчик выхода (например, переход на экран входа).
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Snapshot возвращает текущее состояние.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Mount восстанавливает сессию из сохраненного токена.
// Недействительный токен удаляется без сообщения об ошибке.
func (s *Session) Mount(ctx context.Context) Snapshot {
	s.update(func() {
		s.loading = true
	})

	if !s.auth.IsAuthenticated() {
		return s.update(func() {
			s.user = nil
			s.authed = false
			s.loading = false
			s.state = StateUnauthenticated
		})
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.logger.Info().Err(err).Msg("Сохраненный токен недействителен, сессия сброшена")
		if logoutErr := s.auth.Logout(); logoutErr != nil {
			s.logger.Warn().Err(logoutErr).Msg("Не удалось удалить недействительный токен")
		}
		return s.update(func() {
			s.user = nil
			s.authed = false
			s.loading = false
			s.state = StateUnauthenticated
		})
	}

	return s.update(func() {
		s.user = user
		s.authed = true
		s.loading = false
		s.state = StateAuthenticated
	})
}

// Login выполняет вход. Если данные пользователя получить не удалось,
// в сессию записывается пользователь только с именем.
func (s *Session) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	s.update(func() {
		s.loading = true
		s.errMsg = ""
	})

	// Неудачная попытка не трогает пользователя и сохраненный токен:
	// прежняя сессия остается действующей.
	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.update(func() {
			s.loading = false
			s.errMsg = err.Error()
			if s.state == StateUnknown {
				s.state = StateUnauthenticated
			}
		})
		return nil, err
	}

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Не удалось получить данные пользователя после входа")
		user = models.NewUserData(username)
	}

	s.update(func() {
		s.user = user
		s.authed = true
		s.loading = false
		s.state = StateAuthenticated
	})
	return resp, nil
}

// Logout очищает токен и сессию, затем вызывает обработчики выхода.
func (s *Session) Logout() {
	if err := s.auth.Logout(); err != nil {
		s.logger.Warn().Err(err).Msg("Ошибка при удалении токена")
	}
	s.update(func() {
		s.user = nil
		s.authed = false
		s.loading = false
		s.state = StateUnauthenticated
	})

	s.mu.Lock()
	handlers := append([]func(){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

// RequireAuth проверяет доступ к защищенным экранам и командам.
func (s *Session) RequireAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading || s.state == StateUnknown {
		return ErrSessionLoading
	}
	if !s.authed {
		return ErrNotAuthenticated
	}
	return nil
}

// User возвращает текущего пользователя или nil.
func (s *Session) User() *models.UserData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// update изменяет состояние под мьютексом и оповещает подписчиков вне его.
func (s *Session) update(fn func()) Snapshot {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	watchers := append([]func(Snapshot){}, s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		w(snap)
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		User:            s.user,
		IsAuthenticated: s.authed,
		Loading:         s.loading,
		Error:           s.errMsg,
		State:           s.state,
	}
}
