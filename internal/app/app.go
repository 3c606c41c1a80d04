// Package app собирает зависимости клиента из конфигурации.
// Один экземпляр App живет все время работы процесса и передается в TUI и CLI.
package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/config"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/tui"
)

// App - граф зависимостей клиента.
type App struct {
	Config     config.Config
	Logger     zerolog.Logger
	Storage    storage.Storage
	Client     api.Client
	Auth       *auth.Service
	Session    *auth.Session
	Events     *events.Service
	Query      *events.Query
	Categories *events.CategoriesQuery
	Mapper     *events.Mapper
	Now        func() time.Time

	closers []io.Closer // Закрываются в обратном порядке
}

type options struct {
	logger     *zerolog.Logger
	storage    storage.Storage
	httpClient *http.Client
	now        func() time.Time
}

// Option настраивает сборку приложения.
type Option func(*options)

// WithLogger использует готовый логгер вместо настроенного по cfg.Log.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithStorage использует готовое хранилище. Закрывать его должен вызывающий.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithHTTPClient подменяет HTTP клиент.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock подменяет текущее время.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New создает приложение по конфигурации.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Now: o.now}

	if o.logger != nil {
		a.Logger = *o.logger
	} else {
		logger, closer, err := config.NewLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("ошибка настройки логирования: %w", err)
		}
		a.Logger = logger
		a.closers = append(a.closers, closer)
	}

	a.Storage = o.storage
	if a.Storage == nil {
		store, err := storage.Open(storage.Options{
			Driver:   cfg.Storage.Driver,
			Path:     cfg.Storage.Path,
			Password: cfg.Storage.Password,
			Origin:   cfg.Storage.Origin,
			Logger:   a.Logger,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("ошибка открытия хранилища: %w", err)
		}
		a.Storage = store
		a.closers = append(a.closers, store)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	a.Client = api.NewHTTPClient(cfg.BackendURL, api.WithHTTPClient(httpClient), api.WithLogger(a.Logger))
	a.Auth = auth.NewService(a.Client, a.Storage, a.Logger)
	a.Session = auth.NewSession(a.Auth, a.Logger)
	a.Events = events.NewService(a.Client, a.Auth, a.Logger)
	a.Query = events.NewQuery(a.Events, nil, a.Logger)
	a.Categories = events.NewCategoriesQuery(a.Events)
	a.Mapper = events.NewMapper(a.Logger)

	a.Logger.Info().
		Str("backend_url", cfg.BackendURL).
		Str("storage", cfg.Storage.Driver).
		Dur("http_timeout", cfg.HTTP.Timeout).
		Msg("Приложение инициализировано")
	return a, nil
}

// TUIDeps возвращает зависимости для терминального интерфейса.
func (a *App) TUIDeps() tui.Deps {
	return tui.Deps{
		Session:    a.Session,
		Auth:       a.Auth,
		Events:     a.Events,
		Query:      a.Query,
		Categories: a.Categories,
		Mapper:     a.Mapper,
		Logger:     a.Logger,
		Now:        a.Now,
	}
}

// Close ждет фоновые запросы событий и освобождает ресурсы.
// Повторный вызов ничего не делает.
func (a *App) Close() error {
	if a.Query != nil {
		a.Query.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
