package events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/validation"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

const (
	eventsPath     = "/events/"
	categoriesPath = "/categories"
)

// ErrNoUser - операция требует данных пользователя.
var ErrNoUser = errors.New("нет данных пользователя")

// ValidationError - ошибка проверки формы события до отправки запроса.
type ValidationError = validation.Error

// AuthFetcher выполняет запросы с заголовком авторизации.
type AuthFetcher interface {
	FetchWithAuth(ctx context.Context, req api.Request, out any) error
}

// CreateForm - данные формы создания события.
type CreateForm struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Location    string `validate:"required"`
	StartDate   string `validate:"required,datetime=2006-01-02"`
	EndDate     string `validate:"omitempty,datetime=2006-01-02"`
	StartTime   string `validate:"omitempty,datetime=15:04"`
	Prize       string
	CategoryID  int64 `validate:"gt=0"`
}

var createMessages = validation.Messages{ //nolint:gochecknoglobals // Таблица переводов
	"Name.required":        "El nombre del evento es obligatorio",
	"Description.required": "La descripción es obligatoria",
	"Location.required":    "La ubicación es obligatoria",
	"StartDate.required":   "La fecha del evento es obligatoria",
	"StartDate.datetime":   "La fecha debe tener el formato AAAA-MM-DD",
	"EndDate.datetime":     "La fecha de fin debe tener el formato AAAA-MM-DD",
	"EndDate.enddate":      "La fecha de fin no puede ser anterior a la fecha de inicio",
	"StartTime.datetime":   "La hora debe tener el formato HH:MM",
	"CategoryID.gt":        "Selecciona una categoría",
}

// Catalog - события и категории, загруженные параллельно.
type Catalog struct {
	Events     []models.Event
	Categories []models.Category
}

// Service - операции с событиями и категориями.
type Service struct {
	client    api.Client
	auth      AuthFetcher
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewService создает сервис событий.
func NewService(client api.Client, auth AuthFetcher, logger zerolog.Logger) *Service {
	return &Service{
		client:    client,
		auth:      auth,
		validator: validation.New(createMessages),
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

// List загружает публичный список событий с фильтрами.
func (s *Service) List(ctx context.Context, filters *Filters) ([]models.Event, error) {
	events := []models.Event{}
	err := s.client.Do(ctx, api.Request{
		Path:     eventsPath,
		Query:    filters.Values(),
		Fallback: api.StatusFallback("Error fetching events"),
	}, &events)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("filters", filters.QueryString()).Int("count", len(events)).Msg("События загружены")
	return events, nil
}

// Get загружает одно событие.
func (s *Service) Get(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := s.client.Do(ctx, api.Request{Path: eventPath(id)}, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Categories загружает список категорий.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.client.Do(ctx, api.Request{
		Path:     categoriesPath,
		Fallback: api.StatusFallback("Error al obtener categorías"),
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// LoadCatalog загружает события и категории параллельно.
func (s *Service) LoadCatalog(ctx context.Context, filters *Filters) (Catalog, error) {
	var catalog Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.List(gctx, filters)
		catalog.Events = events
		return err
	})
	g.Go(func() error {
		categories, err := s.Categories(gctx)
		catalog.Categories = categories
		return err
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Create проверяет форму и создает событие от имени пользователя.
func (s *Service) Create(ctx context.Context, form CreateForm, user *models.UserData) (*models.Event, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)
	form.Location = strings.TrimSpace(form.Location)
	form.StartDate = strings.TrimSpace(form.StartDate)
	form.EndDate = strings.TrimSpace(form.EndDate)
	form.StartTime = strings.TrimSpace(form.StartTime)
	form.Prize = strings.TrimSpace(form.Prize)

	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	if form.EndDate == "" {
		form.EndDate = form.StartDate
	}
	if form.EndDate < form.StartDate {
		return nil, &ValidationError{
			Fields:   []string{"EndDate"},
			Messages: []string{createMessages["EndDate.enddate"]},
		}
	}
	if user == nil {
		return nil, ErrNoUser
	}

	req := models.CreateEventRequest{
		Name:        form.Name,
		Description: form.Description,
		StartDate:   form.StartDate,
		EndDate:     form.EndDate,
		Location:    form.Location,
		CategoryID:  form.CategoryID,
	}
	// Без id (упрощенный пользователь после входа) бэкенд определяет владельца по токену.
	if id, ok := user.ID(); ok {
		req.UserID = id
	}
	if form.StartTime != "" {
		req.StartTime = &form.StartTime
	}
	if form.Prize != "" {
		req.Prize = &form.Prize
	}

	var created models.Event
	if err := s.auth.FetchWithAuth(ctx, api.Request{
		Method: http.MethodPost,
		Path:   eventsPath,
		JSON:   req,
	}, &created); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", created.ID).Str("name", created.Name).Msg("Событие создано")
	return &created, nil
}

// Delete удаляет событие. Пустой ответ считается успехом.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.auth.FetchWithAuth(ctx, api.Request{Method: http.MethodDelete, Path: eventPath(id)}, nil); err != nil {
		return err
	}
	s.logger.Info().Int64("id", id).Msg("Событие удалено")
	return nil
}

// Mine возвращает события пользователя: по id, а если его нет - по username.
func (s *Service) Mine(ctx context.Context, user *models.UserData) ([]models.Event, error) {
	if user == nil {
		return nil, ErrNoUser
	}
	all, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return OwnedBy(all, user), nil
}

// OwnedBy фильтрует события по владельцу.
func OwnedBy(events []models.Event, user *models.UserData) []models.Event {
	id, hasID := user.ID()
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if hasID && e.User.ID == id {
			out = append(out, e)
			continue
		}
		if !hasID && user.Username != "" && e.User.Username == user.Username {
			out = append(out, e)
		}
	}
	return out
}

func eventPath(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}

// Today возвращает дату now в формате YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(time.DateOnly)
}
