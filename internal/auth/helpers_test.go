package auth_test

import (
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/api"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/testbackend"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

const (
	testUsername = "ana"
	testPassword = "secret1"
)

type fixture struct {
	backend *testbackend.Backend
	server  *httptest.Server
	storage *storage.Memory
	service *auth.Service
}

// newFixture поднимает тестовый бэкенд с одним пользователем.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testbackend.New()
	_, err := b.AddUser(models.RegisterRequest{
		FirstName: "Ana",
		LastName:  "García",
		Username:  testUsername,
		Email:     "ana@example.com",
		Password:  testPassword,
		IsActive:  true,
	})
	require.NoError(t, err)

	srv := b.NewServer()
	t.Cleanup(srv.Close)

	mem := storage.NewMemory()
	client := api.NewHTTPClient(srv.URL)
	return &fixture{
		backend: b,
		server:  srv,
		storage: mem,
		service: auth.NewService(client, mem, zerolog.Nop()),
	}
}
