package events_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/testbackend"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

type fixture struct {
	backend *testbackend.Backend
	auth    *auth.Service
	service *events.Service
	owner   models.User
	other   models.User
	music   models.Category
	tech    models.Category
}

// newFixture поднимает бэкенд с двумя пользователями, двумя категориями
// и тремя событиями. Пользователь ana уже вошел.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	b := testbackend.New(testbackend.WithClock(func() time.Time { return now }))

	owner, err := b.AddUser(models.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	other, err := b.AddUser(models.RegisterRequest{Username: "luis", Email: "luis@example.com", Password: "secret2"})
	require.NoError(t, err)

	music := b.AddCategory("Música", "Conciertos")
	tech := b.AddCategory("Tecnología", "Charlas")
	b.AddEvent(models.Event{Name: "Concierto", StartDate: "2024-05-15", Category: music, User: owner})
	b.AddEvent(models.Event{Name: "Meetup Go", StartDate: "2024-05-18", Category: tech, User: other})
	b.AddEvent(models.Event{Name: "Festival", StartDate: "2024-11-02", Category: music, User: owner})

	srv := b.NewServer()
	t.Cleanup(srv.Close)

	client := api.NewHTTPClient(srv.URL)
	authService := auth.NewService(client, storage.NewMemory(), zerolog.Nop())
	_, err = authService.Login(context.Background(), "ana", "secret1")
	require.NoError(t, err)

	return &fixture{
		backend: b,
		auth:    authService,
		service: events.NewService(client, authService, zerolog.Nop()),
		owner:   owner,
		other:   other,
		music:   music,
		tech:    tech,
	}
}

func names(list []models.Event) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Name)
	}
	return out
}

func TestService_List(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		filters  *events.Filters
		expected []string
		query    string
	}{
		{
			name:     "Без фильтров",
			expected: []string{"Concierto", "Meetup Go", "Festival"},
			query:    "",
		},
		{
			name:     "По категории",
			filters:  &events.Filters{CategoryID: events.Int64(f.music.ID)},
			expected: []string{"Concierto", "Festival"},
			query:    "category_id=1",
		},
		{
			name:     "Категория и неделя",
			filters:  &events.Filters{CategoryID: events.Int64(f.tech.ID), TimeFilter: events.Time(events.TimeWeek)},
			expected: []string{"Meetup Go"},
			query:    "category_id=2&time_filter=week",
		},
		{
			name:     "Конкретная дата",
			filters:  &events.Filters{Date: events.String("2024-11-02")},
			expected: []string{"Festival"},
			query:    "date=2024-11-02",
		},
		{
			name:     "Нулевая категория не отправляется",
			filters:  &events.Filters{CategoryID: events.Int64(0)},
			expected: []string{"Concierto", "Meetup Go", "Festival"},
			query:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.service.List(context.Background(), tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(list))

			last, ok := f.backend.LastRequest("/events/")
			require.True(t, ok)
			assert.Equal(t, tt.query, last.Query)
			assert.Empty(t, last.Authorization, "Список событий публичный")
		})
	}
}

func TestService_ListFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := api.NewHTTPClient(srv.URL)
	service := events.NewService(client, nil, zerolog.Nop())

	_, err := service.List(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "Error fetching events: 500", err.Error())

	_, err = service.Categories(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error al obtener categorías: 500", err.Error())

	_, err = service.LoadCatalog(context.Background(), nil)
	require.Error(t, err)
}

func TestService_GetAndCategories(t *testing.T) {
	f := newFixture(t)

	event, err := f.service.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Meetup Go", event.Name)
	assert.Equal(t, "Tecnología", event.Category.Name)

	_, err = f.service.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, "Event not found", err.Error())
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))

	categories, err := f.service.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Category{f.music, f.tech}, categories)

	catalog, err := f.service.LoadCatalog(context.Background(), &events.Filters{CategoryID: events.Int64(f.tech.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Meetup Go"}, names(catalog.Events))
	assert.Len(t, catalog.Categories, 2)
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	user := models.NewUserData("ana")

	valid := events.CreateForm{
		Name:        "Taller",
		Description: "Taller de Go",
		Location:    "Bogotá",
		StartDate:   "2024-06-01",
		CategoryID:  f.tech.ID,
	}

	tests := []struct {
		name    string
		mutate  func(*events.CreateForm)
		field   string
		message string
	}{
		{
			name:    "Пустое название",
			mutate:  func(form *events.CreateForm) { form.Name = "   " },
			field:   "Name",
			message: "El nombre del evento es obligatorio",
		},
		{
			name:    "Без даты",
			mutate:  func(form *events.CreateForm) { form.StartDate = "" },
			field:   "StartDate",
			message: "La fecha del evento es obligatoria",
		},
		{
			name:    "Неверный формат даты",
			mutate:  func(form *events.CreateForm) { form.StartDate = "01/06/2024" },
			field:   "StartDate",
			message: "La fecha debe tener el formato AAAA-MM-DD",
		},
		{
			name:    "Неверное время",
			mutate:  func(form *events.CreateForm) { form.StartTime = "7pm" },
			field:   "StartTime",
			message: "La hora debe tener el formato HH:MM",
		},
		{
			name:    "Без категории",
			mutate:  func(form *events.CreateForm) { form.CategoryID = 0 },
			field:   "CategoryID",
			message: "Selecciona una categoría",
		},
		{
			name:    "Окончание раньше начала",
			mutate:  func(form *events.CreateForm) { form.EndDate = "2024-05-30" },
			field:   "EndDate",
			message: "La fecha de fin no puede ser anterior a la fecha de inicio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			_, err := f.service.Create(context.Background(), form, user)
			require.Error(t, err)

			var vErr *events.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.True(t, vErr.Has(tt.field))
			assert.Contains(t, vErr.Messages, tt.message)
		})
	}

	assert.Len(t, f.backend.Events(), 3, "Невалидные формы не отправляются")
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.CurrentUser(context.Background())
	require.NoError(t, err)

	created, err := f.service.Create(context.Background(), events.CreateForm{
		Name:        "  Taller  ",
		Description: "Taller de Go",
		Location:    "Bogotá",
		StartDate:   "2024-06-01",
		StartTime:   "18:30",
		Prize:       "25000",
		CategoryID:  f.tech.ID,
	}, user)
	require.NoError(t, err)

	assert.Equal(t, "Taller", created.Name)
	assert.Equal(t, "2024-06-01", created.EndDate, "Дата окончания по умолчанию равна дате начала")
	require.NotNil(t, created.StartTime)
	assert.Equal(t, "18:30", *created.StartTime)
	require.NotNil(t, created.Prize)
	assert.Equal(t, "25000", *created.Prize)
	assert.Equal(t, f.owner.ID, created.User.ID)

	last, ok := f.backend.LastRequest("/events/")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Contains(t, last.Authorization, "Bearer ")
}

func TestService_CreateWithoutUserID(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), events.CreateForm{
		Name:        "Taller",
		Description: "Taller de Go",
		Location:    "Bogotá",
		StartDate:   "2024-06-01",
		CategoryID:  f.tech.ID,
	}, models.NewUserData("ana"))
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, created.User.ID, "Владелец определяется по токену")
	assert.Nil(t, created.StartTime)
	assert.Nil(t, created.Prize)
}

func TestService_CreateErrors(t *testing.T) {
	f := newFixture(t)
	form := events.CreateForm{
		Name:        "Taller",
		Description: "Taller de Go",
		Location:    "Bogotá",
		StartDate:   "2024-06-01",
		CategoryID:  f.tech.ID,
	}

	_, err := f.service.Create(context.Background(), form, nil)
	require.ErrorIs(t, err, events.ErrNoUser)

	form.CategoryID = 42
	_, err = f.service.Create(context.Background(), form, models.NewUserData("ana"))
	require.Error(t, err)
	assert.Equal(t, "Category not found", err.Error())

	form.CategoryID = f.tech.ID
	require.NoError(t, f.auth.Logout())
	_, err = f.service.Create(context.Background(), form, models.NewUserData("ana"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrAuthorization))
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.Delete(context.Background(), 1), "Пустой ответ 204 считается успехом")
	assert.Len(t, f.backend.Events(), 2)

	err := f.service.Delete(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusCode(err))

	err = f.service.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestService_Mine(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.CurrentUser(context.Background())
	require.NoError(t, err)
	mine, err := f.service.Mine(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, []string{"Concierto", "Festival"}, names(mine))

	mine, err = f.service.Mine(context.Background(), models.NewUserData("luis"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Meetup Go"}, names(mine), "Без id события сопоставляются по username")

	_, err = f.service.Mine(context.Background(), nil)
	require.ErrorIs(t, err, events.ErrNoUser)
}
