package testbackend

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router возвращает chi роутер с маршрутами API событий.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.recorder)

	r.Post("/auth/login", b.handleLogin)
	r.Post("/auth/register", b.handleRegister)
	r.Get("/categories", b.handleCategories)
	r.Get("/events", b.handleListEvents)
	r.Get("/events/", b.handleListEvents)
	r.Get("/events/{id}", b.handleGetEvent)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticator)
		r.Get("/users/me", b.handleCurrentUser)
		r.Post("/events", b.handleCreateEvent)
		r.Post("/events/", b.handleCreateEvent)
		r.Delete("/events/{id}", b.handleDeleteEvent)
	})
	return r
}

// recorder записывает запрос в журнал и применяет настроенную задержку.
func (b *Backend) recorder(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		b.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).Msg("Запрос к тестовому бэкенду")

		if b.latency != nil {
			if d := b.latency(r); d > 0 {
				select {
				case <-time.After(d):
				case <-r.Context().Done():
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
