package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"
)

const (
	kdbxFilePermissions = 0o600
	kdbxRootGroupName   = "EventManager"
)

// Kdbx хранит пары ключ-значение в Meta.CustomData зашифрованного файла KeePass.
// Ключи записываются как "<origin>:<key>". Каждая запись перекодирует файл
// под эксклюзивной блокировкой <path>.lock.
type Kdbx struct {
	path     string
	password string
	origin   string
	logger   zerolog.Logger
	fileLock *flock.Flock

	mu     sync.Mutex
	db     *gokeepasslib.Database
	closed bool
}

// OpenKdbx открывает существующий файл или создает новый с указанным мастер-паролем.
func OpenKdbx(path, password, origin string, logger zerolog.Logger) (*Kdbx, error) {
	if path == "" {
		return nil, errors.New("не указан путь к файлу KDBX")
	}
	if password == "" {
		return nil, errors.New("пароль KDBX не может быть пустым")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("ошибка создания директории хранилища: %w", err)
		}
	}

	k := &Kdbx{
		path:     path,
		password: password,
		origin:   origin,
		logger:   logger,
		fileLock: flock.New(path + ".lock"),
	}

	db, err := openKdbxFile(path, password)
	switch {
	case err == nil:
		k.db = db
		logger.Debug().Str("path", path).Int("custom_data", len(db.Content.Meta.CustomData)).
			Msg("Файл KDBX открыт")
	case errors.Is(err, os.ErrNotExist):
		k.db = newKdbxDatabase(password)
		if err = k.save(); err != nil {
			return nil, err
		}
		logger.Info().Str("path", path).Msg("Создан новый файл KDBX")
	default:
		return nil, err
	}
	return k, nil
}

func (k *Kdbx) GetItem(key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return "", false, ErrClosed
	}
	full := k.scopedKey(key)
	for _, item := range k.db.Content.Meta.CustomData {
		if item.Key == full {
			return item.Value, true, nil
		}
	}
	return "", false, nil
}

func (k *Kdbx) SetItem(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	meta := k.db.Content.Meta
	prev := slices.Clone(meta.CustomData)
	meta.CustomData = setCustomDataValue(meta.CustomData, k.scopedKey(key), value)
	k.touchRoot()
	if err := k.save(); err != nil {
		meta.CustomData = prev
		return err
	}
	return nil
}

func (k *Kdbx) RemoveItem(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	meta := k.db.Content.Meta
	prev := meta.CustomData
	before := len(prev)
	meta.CustomData = removeCustomDataValue(meta.CustomData, k.scopedKey(key))
	if len(meta.CustomData) == before {
		return nil
	}
	k.touchRoot()
	if err := k.save(); err != nil {
		meta.CustomData = prev
		return err
	}
	return nil
}

func (k *Kdbx) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	return nil
}

func (k *Kdbx) scopedKey(key string) string {
	return k.origin + ":" + key
}

// touchRoot обновляет время модификации корневой группы.
func (k *Kdbx) touchRoot() {
	root := k.db.Content.Root
	if root == nil || len(root.Groups) == 0 {
		k.logger.Warn().Msg("Не удалось обновить LastModificationTime: корневая группа отсутствует")
		return
	}
	modTime := wrappers.TimeWrapper{Time: time.Now().UTC()}
	root.Groups[0].Times.LastModificationTime = &modTime
}

// save кодирует базу во временный файл и атомарно заменяет им основной
// под блокировкой <path>.lock.
func (k *Kdbx) save() error {
	if err := k.fileLock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла '%s': %w", k.fileLock.Path(), err)
	}
	defer func() {
		if err := k.fileLock.Unlock(); err != nil {
			k.logger.Warn().Err(err).Msg("Не удалось снять блокировку файла KDBX")
		}
	}()

	if err := k.db.LockProtectedEntries(); err != nil {
		k.logger.Warn().Err(err).Msg("Не удалось заблокировать поля перед сохранением")
	}
	defer func() {
		if err := k.db.UnlockProtectedEntries(); err != nil {
			k.logger.Warn().Err(err).Msg("Не удалось разблокировать поля после сохранения")
		}
	}()

	tmpPath := k.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, kdbxFilePermissions)
	if err != nil {
		return fmt.Errorf("ошибка создания файла '%s': %w", tmpPath, err)
	}
	if err = gokeepasslib.NewEncoder(file).Encode(k.db); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("ошибка кодирования KDBX в файл '%s': %w", tmpPath, err)
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла '%s': %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, k.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("ошибка замены файла '%s': %w", k.path, err)
	}
	return nil
}

// openKdbxFile открывает и дешифрует KDBX файл.
func openKdbxFile(path, password string) (*gokeepasslib.Database, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", path, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	if err = gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла '%s': %w", path, err)
	}
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("ошибка разблокировки защищенных полей: %w", err)
	}
	if db.Content == nil || db.Content.Meta == nil {
		return nil, fmt.Errorf("файл '%s' не содержит метаданных", path)
	}
	return db, nil
}

func newKdbxDatabase(password string) *gokeepasslib.Database {
	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content = gokeepasslib.NewContent()
	db.Content.Meta.DatabaseName = kdbxRootGroupName
	db.Content.Meta.CustomData = []gokeepasslib.CustomData{}

	rootGroup := gokeepasslib.NewGroup()
	rootGroup.Name = kdbxRootGroupName
	db.Content.Root = &gokeepasslib.RootData{Groups: []gokeepasslib.Group{rootGroup}}
	return db
}

// setCustomDataValue обновляет или добавляет значение в слайс CustomData.
func setCustomDataValue(customData []gokeepasslib.CustomData, key, value string) []gokeepasslib.CustomData {
	for i := range customData {
		if customData[i].Key == key {
			customData[i].Value = value
			return customData
		}
	}
	return append(customData, gokeepasslib.CustomData{Key: key, Value: value})
}

// removeCustomDataValue удаляет значение из слайса CustomData по ключу.
func removeCustomDataValue(customData []gokeepasslib.CustomData, key string) []gokeepasslib.CustomData {
	out := make([]gokeepasslib.CustomData, 0, len(customData))
	for _, item := range customData {
		if item.Key != key {
			out = append(out, item)
		}
	}
	return out
}
