package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Драйвер "sqlite"
)

const (
	dirPermissions = 0o700

	createTableSQL = `CREATE TABLE IF NOT EXISTS local_storage (
		origin     TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (origin, key)
	)`
	selectItemSQL = `SELECT value FROM local_storage WHERE origin = ? AND key = ?`
	upsertItemSQL = `INSERT INTO local_storage (origin, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteItemSQL = `DELETE FROM local_storage WHERE origin = ? AND key = ?`
)

// SQLite хранит пары ключ-значение в таблице local_storage файла SQLite.
type SQLite struct {
	db     *sql.DB
	origin string
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// OpenSQLite открывает (или создает) файл базы и таблицу хранилища.
func OpenSQLite(path, origin string, logger zerolog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("не указан путь к файлу SQLite")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("ошибка создания директории хранилища: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite '%s': %w", path, err)
	}
	// Один писатель: SQLite не любит параллельные записи из одного процесса.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка создания таблицы local_storage: %w", err)
	}

	logger.Debug().Str("path", path).Str("origin", origin).Msg("Хранилище SQLite открыто")
	return &SQLite{db: db, origin: origin, logger: logger}, nil
}

func (s *SQLite) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(context.Background(), selectItemSQL, s.origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения ключа '%s': %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) SetItem(key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(context.Background(), upsertItemSQL, s.origin, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("ошибка записи ключа '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("Значение сохранено")
	return nil
}

func (s *SQLite) RemoveItem(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(context.Background(), deleteItemSQL, s.origin, key); err != nil {
		return fmt.Errorf("ошибка удаления ключа '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("Значение удалено")
	return nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
