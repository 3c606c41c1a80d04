//nolint:testpackage // Тестируем неэкспортируемую модель TUI
package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/testbackend"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

const (
	testUsername = "ana"
	testPassword = "secret1"
	maxDrainStep = 200
)

var testNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

type tuiFixture struct {
	m       *model
	backend *testbackend.Backend
	storage *storage.Memory
	music   models.Category
	tech    models.Category

	mu       sync.Mutex
	notified []tea.Msg
}

// newTUIFixture поднимает тестовый бэкенд с семью событиями и собирает модель
// на настоящих сервисах. Сообщения сессии складываются в очередь фикстуры.
func newTUIFixture(t *testing.T) *tuiFixture {
	t.Helper()
	b := testbackend.New(testbackend.WithClock(func() time.Time { return testNow }))

	ana, err := b.AddUser(models.RegisterRequest{
		FirstName: "Ana", LastName: "García", Username: testUsername,
		Email: "ana@example.com", Password: testPassword, IsActive: true,
	})
	require.NoError(t, err)
	luis, err := b.AddUser(models.RegisterRequest{Username: "luis", Email: "luis@example.com", Password: "secret2"})
	require.NoError(t, err)

	music := b.AddCategory("Música", "Conciertos")
	tech := b.AddCategory("Tecnología", "Charlas")
	nine := "09:00"
	b.AddEvent(models.Event{
		Name: "Concierto de rock", StartDate: "2024-05-15", StartTime: &nine,
		Location: "Bogotá", Description: "Rock en vivo", Category: music, User: ana,
	})
	b.AddEvent(models.Event{Name: "Meetup Go", StartDate: "2024-05-18", Category: tech, User: luis})
	b.AddEvent(models.Event{Name: "Festival de jazz", StartDate: "2024-11-02", Category: music, User: ana})
	b.AddEvent(models.Event{Name: "Hackathon", StartDate: "2024-05-10", Category: tech, User: luis})
	b.AddEvent(models.Event{Name: "Recital", StartDate: "2024-05-20", Category: music, User: luis})
	b.AddEvent(models.Event{Name: "Charla de IA", StartDate: "2024-06-01", Category: tech, User: luis})
	b.AddEvent(models.Event{Name: "Taller de Rust", StartDate: "2024-07-07", Category: tech, User: luis})

	srv := b.NewServer()
	t.Cleanup(srv.Close)

	mem := storage.NewMemory()
	logger := zerolog.Nop()
	client := api.NewHTTPClient(srv.URL)
	authService := auth.NewService(client, mem, logger)
	eventService := events.NewService(client, authService, logger)

	f := &tuiFixture{backend: b, storage: mem, music: music, tech: tech}
	deps := Deps{
		Session:    auth.NewSession(authService, logger),
		Auth:       authService,
		Events:     eventService,
		Query:      events.NewQuery(eventService, nil, logger),
		Categories: events.NewCategoriesQuery(eventService),
		Mapper:     events.NewMapper(logger),
		Logger:     logger,
		Now:        func() time.Time { return testNow },
	}
	f.m = newModel(context.Background(), deps)
	f.m.statusTimeout = time.Millisecond
	f.m.notify = func(msg tea.Msg) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.notified = append(f.notified, msg)
	}
	return f
}

// start выполняет Init и дожидается загрузки каталога.
func (f *tuiFixture) start(t *testing.T) {
	t.Helper()
	f.drain(t, f.m.Init())
	require.False(t, f.m.loading)
	require.Equal(t, auth.StateUnauthenticated, f.m.session.State)
}

// drain выполняет команду и все команды, которые вернул Update, синхронно.
// В модель передаются только сообщения приложения: таймеры, мигание курсора
// и спиннер отбрасываются.
func (f *tuiFixture) drain(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for step := 0; len(queue) > 0; step++ {
		require.Less(t, step, maxDrainStep, "команды не сходятся")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg := next()
		for _, n := range f.takeNotified() {
			queue = append(queue, func() tea.Msg { return n })
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if !isAppMsg(msg) {
			continue
		}
		_, followUp := f.m.Update(msg)
		queue = append(queue, followUp)
		for _, n := range f.takeNotified() {
			queue = append(queue, func() tea.Msg { return n })
		}
	}
}

// press отправляет клавишу в модель и выполняет полученные команды.
func (f *tuiFixture) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := f.m.Update(keyMsg(k))
		f.drain(t, cmd)
	}
}

// typeText вводит текст в активное поле.
func (f *tuiFixture) typeText(t *testing.T, text string) {
	t.Helper()
	_, cmd := f.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	f.drain(t, cmd)
}

// login выполняет вход через экран входа.
func (f *tuiFixture) login(t *testing.T) {
	t.Helper()
	require.Equal(t, loginScreen, f.m.state)
	f.m.loginInputs[loginFieldUsername].SetValue(testUsername)
	f.m.loginInputs[loginFieldPassword].SetValue(testPassword)
	f.m.loginFocused = loginFieldPassword
	f.press(t, keyEnter)
	require.NoError(t, f.m.err)
	require.True(t, f.m.session.IsAuthenticated)
}

func (f *tuiFixture) takeNotified() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notified
	f.notified = nil
	return out
}

func (f *tuiFixture) eventsRequests() int {
	count := 0
	for _, r := range f.backend.Requests() {
		if r.Path == "/events/" {
			count++
		}
	}
	return count
}

func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case sessionMountedMsg, sessionChangedMsg, loggedOutMsg, categoriesLoadedMsg,
		eventsLoadedMsg, eventLoadedMsg, loginResultMsg, registerResultMsg,
		mineLoadedMsg, eventCreatedMsg, eventDeletedMsg:
		return true
	default:
		return false
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case keyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case keyShiftTab:
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case keyUp:
		return tea.KeyMsg{Type: tea.KeyUp}
	case keyDown:
		return tea.KeyMsg{Type: tea.KeyDown}
	case keyLeft:
		return tea.KeyMsg{Type: tea.KeyLeft}
	case keyRight:
		return tea.KeyMsg{Type: tea.KeyRight}
	case keyRefresh:
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func itemNames(m *model) []string {
	out := make([]string, 0, len(m.eventList.Items()))
	for _, it := range m.eventList.Items() {
		out = append(out, it.(eventItem).event.Name)
	}
	return out
}

func eventNames(list []models.Event) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Name)
	}
	return out
}
