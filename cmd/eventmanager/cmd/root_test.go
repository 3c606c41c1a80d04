package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/config"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/testbackend"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

type cliFixture struct {
	backend    *testbackend.Backend
	backendURL string
	dir        string
}

type cliResult struct {
	out    string
	errOut string
	err    error
}

// newCLIFixture поднимает бэкенд с событиями далеко в прошлом и в будущем,
// чтобы результаты не зависели от текущей даты.
func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	for _, env := range []string{
		config.EnvBackendURL, config.EnvStorageDriver, config.EnvStoragePath,
		config.EnvStoragePassword, config.EnvStorageOrigin, config.EnvHTTPTimeout,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvLogFile,
	} {
		t.Setenv(env, "")
	}

	b := testbackend.New()
	ana, err := b.AddUser(models.RegisterRequest{
		FirstName: "Ana", LastName: "García", Username: "ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	luis, err := b.AddUser(models.RegisterRequest{Username: "luis", Email: "luis@example.com", Password: "secret2"})
	require.NoError(t, err)

	music := b.AddCategory("Música", "Conciertos")
	tech := b.AddCategory("Tecnología", "Charlas")
	nine := "09:00"
	b.AddEvent(models.Event{
		Name: "Concierto de rock", StartDate: "2099-05-15", StartTime: &nine,
		Location: "Bogotá", Description: "Rock en vivo", Category: music, User: ana,
	})
	b.AddEvent(models.Event{Name: "Meetup Go", StartDate: "2099-05-18", Location: "Cali", Category: tech, User: luis})
	b.AddEvent(models.Event{Name: "Hackathon", StartDate: "2000-01-10", Category: tech, User: ana})

	srv := b.NewServer()
	t.Cleanup(srv.Close)

	return &cliFixture{backend: b, backendURL: srv.URL, dir: t.TempDir()}
}

// run выполняет команду с общим хранилищем SQLite фикстуры.
func (f *cliFixture) run(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	root := NewRootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args,
		"--backend-url", f.backendURL,
		"--storage", config.DriverSQLite,
		"--storage-path", filepath.Join(f.dir, "client.db"),
		"--log-file", filepath.Join(f.dir, "client.log"),
	))

	err := root.ExecuteContext(t.Context())
	return cliResult{out: out.String(), errOut: errOut.String(), err: err}
}

func (f *cliFixture) login(t *testing.T) {
	t.Helper()
	res := f.run(t, "secret1\n", "login", "--username", "ana", "--password-stdin")
	require.NoError(t, res.err)
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    string
		expectError bool
	}{
		{name: "Справка", args: []string{"--help"}, expected: "eventmanager"},
		{name: "Неизвестный флаг", args: []string{"--invalid-flag"}, expected: "unknown flag", expectError: true},
		{name: "Версия", args: []string{"version"}, expected: "Version:     dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expected)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestRootCommand_FlagsAndSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, flag := range []string{"config", "backend-url", "storage", "storage-path", "log-level", "log-format", "log-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"tui", "events", "categories", "login", "logout", "whoami", "register", "version"} {
		assert.True(t, names[name], name)
	}
}

func TestInvalidBackendURL(t *testing.T) {
	f := newCLIFixture(t)
	f.backendURL = "ftp://example.com"

	res := f.run(t, "", "events", "list")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, config.ErrConfigFailed)
}

func TestEventsList(t *testing.T) {
	f := newCLIFixture(t)

	t.Run("Таблица", func(t *testing.T) {
		res := f.run(t, "", "events", "list")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Concierto de rock")
		assert.Contains(t, res.out, "Hackathon")
		assert.Contains(t, res.out, "2000-01-10 (finalizado)")
		assert.Contains(t, res.out, "Página 1 de 1 (3 eventos)")

		req, ok := f.backend.LastRequest("/events/")
		require.True(t, ok)
		assert.Empty(t, req.Authorization)
	})

	t.Run("Категория в JSON", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--category", "música", "--format", "json")
		require.NoError(t, res.err)

		var page eventsPage
		require.NoError(t, json.Unmarshal([]byte(res.out), &page))
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Events, 1)
		assert.Equal(t, "Concierto de rock", page.Events[0].Name)

		req, _ := f.backend.LastRequest("/events/")
		assert.Equal(t, "category_id=1", req.Query)
	})

	t.Run("Неизвестная категория", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--category", "Deportes")
		require.NoError(t, res.err)
		assert.Contains(t, res.errOut, `categoría "Deportes" no encontrada`)
		assert.Contains(t, res.out, "(3 eventos)")

		req, _ := f.backend.LastRequest("/events/")
		assert.Empty(t, req.Query)
	})

	t.Run("Прошедшие", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--when", "pasados")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Hackathon")
		assert.NotContains(t, res.out, "Meetup Go")
	})

	t.Run("Конкретный день", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--day", "2099-05-18", "--format", "json")
		require.NoError(t, res.err)
		var page eventsPage
		require.NoError(t, json.Unmarshal([]byte(res.out), &page))
		require.Len(t, page.Events, 1)
		assert.Equal(t, "Meetup Go", page.Events[0].Name)
	})

	t.Run("Поиск без результатов", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--search", "ballet")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "No se encontraron eventos")
	})

	t.Run("Ошибки флагов", func(t *testing.T) {
		res := f.run(t, "", "events", "list", "--when", "mañana")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "--when")

		res = f.run(t, "", "events", "list", "--format", "xml")
		require.Error(t, res.err)
	})
}

func TestEventsShow(t *testing.T) {
	f := newCLIFixture(t)

	res := f.run(t, "", "events", "show", "1")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "🎵 Concierto de rock")
	assert.Contains(t, res.out, "15 de mayo de 2099")
	assert.Contains(t, res.out, "Organizador: Ana García")
	assert.Contains(t, res.out, "Gratuito")

	res = f.run(t, "", "events", "show", "99")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "Event not found")

	res = f.run(t, "", "events", "show", "abc")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "id de evento inválido")
}

func TestCategories(t *testing.T) {
	f := newCLIFixture(t)

	res := f.run(t, "", "categories", "--format", "json")
	require.NoError(t, res.err)

	var summary []categorySummary
	require.NoError(t, json.Unmarshal([]byte(res.out), &summary))
	assert.Equal(t, []categorySummary{
		{ID: 1, Name: "Música", Description: "Conciertos", Events: 1},
		{ID: 2, Name: "Tecnología", Description: "Charlas", Events: 2},
	}, summary)

	res = f.run(t, "", "categories")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Tecnología")
	assert.Contains(t, res.out, "Charlas")
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := newCLIFixture(t)

	t.Run("Без входа", func(t *testing.T) {
		res := f.run(t, "", "whoami")
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, auth.ErrNotAuthenticated)
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		res := f.run(t, "wrong\n", "login", "--username", "ana", "--password-stdin")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "Incorrect username or password")
	})

	t.Run("Пустые данные", func(t *testing.T) {
		res := f.run(t, "\n\n", "login")
		assert.ErrorIs(t, res.err, errEmptyCredentials)
	})

	t.Run("Вход через приглашение", func(t *testing.T) {
		res := f.run(t, "ana\nsecret1\n", "login")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "¡Bienvenido, ana!")
		assert.Contains(t, res.errOut, "Usuario: ")
	})

	t.Run("Сессия сохраняется между запусками", func(t *testing.T) {
		res := f.run(t, "", "whoami", "--verbose")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Usuario: ana")
		assert.Contains(t, res.out, "Correo:  ana@example.com")
		assert.Contains(t, res.out, "Token:   bearer")
		assert.Contains(t, res.out, "(vigente)")
	})

	t.Run("Выход", func(t *testing.T) {
		res := f.run(t, "", "logout")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Sesión cerrada")

		res = f.run(t, "", "whoami")
		assert.ErrorIs(t, res.err, auth.ErrNotAuthenticated)
	})
}

func TestRegister(t *testing.T) {
	f := newCLIFixture(t)

	res := f.run(t, "secreto\n", "register",
		"--first-name", "Pedro", "--last-name", "Gómez", "--email", "pedro@example.com", "--password-stdin")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Registro exitoso")
	assert.Contains(t, res.out, "Usuario: pedro")

	res = f.run(t, "secreto\n", "login", "--username", "pedro", "--password-stdin")
	require.NoError(t, res.err)

	t.Run("Ошибка валидации", func(t *testing.T) {
		res := f.run(t, "", "register",
			"--first-name", "Eva", "--last-name", "Ruiz", "--email", "eva@example.com",
			"--password", "secreto", "--confirm-password", "otro")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "Las contraseñas no coinciden")
	})
}

func TestEventsMine(t *testing.T) {
	f := newCLIFixture(t)

	res := f.run(t, "", "events", "mine")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, auth.ErrNotAuthenticated)

	f.login(t)
	res = f.run(t, "", "events", "mine")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Concierto de rock")
	assert.Contains(t, res.out, "Hackathon")
	assert.NotContains(t, res.out, "Meetup Go")
	assert.Contains(t, res.out, "Total: 2  Próximos: 1  Pasados: 1")
	assert.Contains(t, res.out, "Categorías: Música, Tecnología")

	req, ok := f.backend.LastRequest("/users/me")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(req.Authorization, "Bearer "))
}

func TestEventsCreate(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t)

	res := f.run(t, "", "events", "create",
		"--name", "Workshop de Go", "--description", "Práctico", "--location", "Medellín",
		"--start-date", "2099-06-01", "--start-time", "18:30", "--prize", "25000", "--category", "tecnología")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Evento creado: #4 Workshop de Go")

	all := f.backend.Events()
	require.Len(t, all, 4)
	created := all[3]
	assert.Equal(t, int64(2), created.Category.ID)
	assert.Equal(t, "2099-06-01", created.EndDate)
	assert.Equal(t, "ana", created.User.Username)

	t.Run("Неизвестная категория", func(t *testing.T) {
		res := f.run(t, "", "events", "create",
			"--name", "X", "--description", "Y", "--location", "Z", "--category", "Deportes")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "disponibles: Música, Tecnología")
	})

	t.Run("Ошибка валидации", func(t *testing.T) {
		res := f.run(t, "", "events", "create", "--category", "1")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "El nombre del evento es obligatorio")
		assert.Len(t, f.backend.Events(), 4)
	})
}

func TestEventsDelete(t *testing.T) {
	f := newCLIFixture(t)
	f.login(t)

	t.Run("Отмена", func(t *testing.T) {
		res := f.run(t, "n\n", "events", "delete", "1")
		assert.ErrorIs(t, res.err, errDeleteCancelled)
		assert.Contains(t, res.errOut, `"Concierto de rock"`)
		assert.Len(t, f.backend.Events(), 3)
	})

	t.Run("Подтверждение", func(t *testing.T) {
		res := f.run(t, "s\n", "events", "delete", "1")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Evento eliminado: #1 Concierto de rock")
		assert.Len(t, f.backend.Events(), 2)
	})

	t.Run("Чужое событие", func(t *testing.T) {
		res := f.run(t, "", "events", "delete", "2", "--yes")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "Not enough permissions")
		assert.Len(t, f.backend.Events(), 2)
	})
}
