// Package storage реализует локальное хранилище ключ-значение,
// разделенное по origin (аналог localStorage браузера).
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrClosed возвращается при обращении к закрытому хранилищу.
var ErrClosed = errors.New("хранилище закрыто")

// Storage - постоянное хранилище строк по ключу в пределах одного origin.
type Storage interface {
	// GetItem возвращает значение и признак его наличия.
	GetItem(key string) (string, bool, error)
	// SetItem сохраняет значение, перезаписывая существующее.
	SetItem(key, value string) error
	// RemoveItem удаляет ключ. Отсутствие ключа не считается ошибкой.
	RemoveItem(key string) error
	// Close освобождает ресурсы хранилища.
	Close() error
}

// Options - параметры открытия хранилища.
type Options struct {
	Driver   string // memory | sqlite | kdbx
	Path     string
	Password string
	Origin   string
	Logger   zerolog.Logger
}

// Open создает хранилище по имени драйвера.
func Open(opts Options) (Storage, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(opts.Path, opts.Origin, opts.Logger)
	case "kdbx":
		return OpenKdbx(opts.Path, opts.Password, opts.Origin, opts.Logger)
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища %q", opts.Driver)
	}
}
