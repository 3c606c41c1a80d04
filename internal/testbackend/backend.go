// Package testbackend - поддельный REST бэкенд событий для тестов.
// Выдает настоящие HS256 JWT и хранит пароли в виде bcrypt хешей.
package testbackend

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

const (
	defaultSecret = "testbackend-secret-key"
	tokenTTL      = time.Hour
)

// ErrUsernameTaken - пользователь с таким именем уже существует.
var ErrUsernameTaken = errors.New("username already registered")

type userRecord struct {
	user         models.User
	passwordHash string
}

// Request - запись о запросе, полученном бэкендом.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

// Backend хранит пользователей, категории и события в памяти.
type Backend struct {
	secret []byte
	now    func() time.Time
	logger zerolog.Logger

	mu          sync.Mutex
	users       map[string]*userRecord
	categories  []models.Category
	events      []models.Event
	nextUserID  int64
	nextEventID int64
	requests    []Request

	failCurrentUser bool
	latency         func(r *http.Request) time.Duration
}

// Option настраивает бэкенд.
type Option func(*Backend)

// WithClock подменяет текущее время (для фильтров по дате).
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithLogger задает логгер.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// WithLatency задает задержку ответа в зависимости от запроса.
func WithLatency(fn func(r *http.Request) time.Duration) Option {
	return func(b *Backend) { b.latency = fn }
}

// New создает пустой бэкенд.
func New(opts ...Option) *Backend {
	b := &Backend{
		secret:      []byte(defaultSecret),
		now:         time.Now,
		logger:      zerolog.Nop(),
		users:       make(map[string]*userRecord),
		nextUserID:  1,
		nextEventID: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewServer запускает httptest сервер поверх бэкенда.
func (b *Backend) NewServer() *httptest.Server {
	return httptest.NewServer(b.Router())
}

// AddUser регистрирует пользователя напрямую, минуя HTTP.
func (b *Backend) AddUser(req models.RegisterRequest) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Username]; exists {
		return models.User{}, ErrUsernameTaken
	}
	user := models.User{
		ID:        b.nextUserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		IsActive:  req.IsActive,
	}
	b.nextUserID++
	b.users[req.Username] = &userRecord{user: user, passwordHash: string(hash)}
	return user, nil
}

// AddCategory добавляет категорию.
func (b *Backend) AddCategory(name, description string) models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := models.Category{ID: int64(len(b.categories) + 1), Name: name, Description: description}
	b.categories = append(b.categories, c)
	return c
}

// AddEvent добавляет событие. ID назначается автоматически.
func (b *Backend) AddEvent(e models.Event) models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.ID = b.nextEventID
	b.nextEventID++
	e.User.Password = ""
	b.events = append(b.events, e)
	return e
}

// Events возвращает копию всех событий.
func (b *Backend) Events() []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...)
}

// SetFailCurrentUser заставляет /users/me отвечать 500 без тела.
func (b *Backend) SetFailCurrentUser(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCurrentUser = fail
}

// Requests возвращает журнал полученных запросов.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// LastRequest возвращает последний запрос к пути (без строки запроса).
func (b *Backend) LastRequest(path string) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return Request{}, false
}

func (b *Backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})
}

func (b *Backend) userByID(id int64) (models.User, bool) {
	for _, rec := range b.users {
		if rec.user.ID == id {
			return rec.user, true
		}
	}
	return models.User{}, false
}

func (b *Backend) categoryByID(id int64) (models.Category, bool) {
	for _, c := range b.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// filterEvents применяет серверные фильтры category_id, time_filter и date.
// week - ближайшие 7 дней начиная с сегодняшнего, month и year - текущий
// календарный месяц и год.
func (b *Backend) filterEvents(categoryID int64, timeFilter, date string) []models.Event {
	now := b.now()
	today := now.Format(time.DateOnly)

	out := make([]models.Event, 0, len(b.events))
	for _, e := range b.events {
		if categoryID > 0 && e.Category.ID != categoryID {
			continue
		}
		day := e.StartDate
		if len(day) > len(time.DateOnly) {
			day = day[:len(time.DateOnly)]
		}
		if date != "" && day != date {
			continue
		}
		if timeFilter != "" && !matchesTimeFilter(day, today, now, timeFilter) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out
}

func matchesTimeFilter(day, today string, now time.Time, filter string) bool {
	start, err := time.ParseInLocation(time.DateOnly, day, now.Location())
	if err != nil {
		return false
	}
	switch strings.ToLower(filter) {
	case "today":
		return day == today
	case "week":
		from, _ := time.ParseInLocation(time.DateOnly, today, now.Location())
		return !start.Before(from) && start.Before(from.AddDate(0, 0, 7))
	case "month":
		return start.Year() == now.Year() && start.Month() == now.Month()
	case "year":
		return start.Year() == now.Year()
	default:
		return true
	}
}
