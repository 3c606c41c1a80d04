package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/storage"
)

const (
	testOrigin   = "http://localhost:8000"
	testPassword = "master-password"
)

// openers возвращает фабрики для всех драйверов хранилища.
func openers(t *testing.T) map[string]func(origin string) storage.Storage {
	t.Helper()
	dir := t.TempDir()
	return map[string]func(origin string) storage.Storage{
		"memory": func(string) storage.Storage {
			return storage.NewMemory()
		},
		"sqlite": func(origin string) storage.Storage {
			s, err := storage.OpenSQLite(filepath.Join(dir, "storage.db"), origin, zerolog.Nop())
			require.NoError(t, err)
			return s
		},
		"kdbx": func(origin string) storage.Storage {
			s, err := storage.OpenKdbx(filepath.Join(dir, "storage.kdbx"), testPassword, origin, zerolog.Nop())
			require.NoError(t, err)
			return s
		},
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			s := open(testOrigin)
			defer s.Close()

			_, ok, err := s.GetItem("token")
			require.NoError(t, err)
			assert.False(ok, "Пустое хранилище не должно содержать ключ")

			require.NoError(t, s.SetItem("token", "abc"))
			require.NoError(t, s.SetItem("token_type", "bearer"))
			value, ok, err := s.GetItem("token")
			require.NoError(t, err)
			assert.True(ok)
			assert.Equal("abc", value)

			require.NoError(t, s.SetItem("token", "def"), "Перезапись должна работать")
			value, _, err = s.GetItem("token")
			require.NoError(t, err)
			assert.Equal("def", value)

			require.NoError(t, s.RemoveItem("token"))
			_, ok, err = s.GetItem("token")
			require.NoError(t, err)
			assert.False(ok, "Ключ должен быть удален")

			value, ok, err = s.GetItem("token_type")
			require.NoError(t, err)
			assert.True(ok, "Удаление одного ключа не затрагивает другие")
			assert.Equal("bearer", value)

			require.NoError(t, s.RemoveItem("missing"), "Удаление отсутствующего ключа не является ошибкой")
		})
	}
}

func TestStorage_Closed(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open(testOrigin)
			require.NoError(t, s.Close())

			_, _, err := s.GetItem("token")
			require.ErrorIs(t, err, storage.ErrClosed)
			require.ErrorIs(t, s.SetItem("token", "x"), storage.ErrClosed)
			require.ErrorIs(t, s.RemoveItem("token"), storage.ErrClosed)
		})
	}
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		open func() (storage.Storage, error)
	}{
		{
			name: "sqlite",
			open: func() (storage.Storage, error) {
				return storage.OpenSQLite(filepath.Join(dir, "persist.db"), testOrigin, zerolog.Nop())
			},
		},
		{
			name: "kdbx",
			open: func() (storage.Storage, error) {
				return storage.OpenKdbx(filepath.Join(dir, "persist.kdbx"), testPassword, testOrigin, zerolog.Nop())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.open()
			require.NoError(t, err)
			require.NoError(t, first.SetItem("token", "persisted"))
			require.NoError(t, first.Close())

			second, err := tt.open()
			require.NoError(t, err)
			defer second.Close()

			value, ok, err := second.GetItem("token")
			require.NoError(t, err)
			assert.True(t, ok, "Значение должно пережить переоткрытие")
			assert.Equal(t, "persisted", value)
		})
	}
}

func TestStorage_OriginScoping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.db")

	local, err := storage.OpenSQLite(path, "http://localhost:8000", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, local.SetItem("token", "local-token"))
	require.NoError(t, local.Close())

	remote, err := storage.OpenSQLite(path, "https://api.example.com", zerolog.Nop())
	require.NoError(t, err)
	defer remote.Close()

	_, ok, err := remote.GetItem("token")
	require.NoError(t, err)
	assert.False(t, ok, "Другой origin не должен видеть чужой токен")
}

func TestKdbx_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.kdbx")

	s, err := storage.OpenKdbx(path, testPassword, testOrigin, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SetItem("token", "secret"))
	require.NoError(t, s.Close())

	_, err = storage.OpenKdbx(path, "wrong-password", testOrigin, zerolog.Nop())
	require.Error(t, err, "Неверный пароль должен приводить к ошибке")
	assert.Contains(t, err.Error(), "ошибка дешифрования")
}

// Файл заменяется непустой директорией, чтобы переименование при сохранении упало.
func TestKdbx_FailedSaveKeepsPreviousState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.kdbx")

	s, err := storage.OpenKdbx(path, testPassword, testOrigin, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SetItem("token", "old"))

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "busy"), 0o700))

	t.Run("Запись", func(t *testing.T) {
		require.Error(t, s.SetItem("token", "new"))
		require.Error(t, s.SetItem("token_type", "bearer"))

		value, ok, err := s.GetItem("token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "old", value)

		_, ok, err = s.GetItem("token_type")
		require.NoError(t, err)
		assert.False(t, ok, "Несохраненный ключ не должен появляться в памяти")
	})

	t.Run("Удаление", func(t *testing.T) {
		require.Error(t, s.RemoveItem("token"))

		value, ok, err := s.GetItem("token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "old", value)
	})

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "Временный файл должен удаляться")
}

func TestKdbx_EmptyPassword(t *testing.T) {
	_, err := storage.OpenKdbx(filepath.Join(t.TempDir(), "x.kdbx"), "", testOrigin, zerolog.Nop())
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    storage.Options
		wantErr bool
	}{
		{name: "память по умолчанию", opts: storage.Options{}},
		{name: "memory", opts: storage.Options{Driver: "memory"}},
		{name: "sqlite", opts: storage.Options{Driver: "sqlite", Path: filepath.Join(dir, "o.db"), Origin: testOrigin}},
		{
			name: "kdbx",
			opts: storage.Options{
				Driver: "kdbx", Path: filepath.Join(dir, "o.kdbx"), Password: testPassword, Origin: testOrigin,
			},
		},
		{name: "sqlite без пути", opts: storage.Options{Driver: "sqlite"}, wantErr: true},
		{name: "неизвестный драйвер", opts: storage.Options{Driver: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = zerolog.Nop()
			s, err := storage.Open(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.NoError(t, s.Close())
		})
	}
}
