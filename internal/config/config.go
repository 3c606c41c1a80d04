package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию.
const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultLogFile    = "logs/client.log"

	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverKdbx   = "kdbx"

	appDirName = "eventmanager"
)

// Переменные окружения.
const (
	EnvBackendURL      = "EVENTMANAGER_BACKEND_URL"
	EnvStorageDriver   = "EVENTMANAGER_STORAGE_DRIVER"
	EnvStoragePath     = "EVENTMANAGER_STORAGE_PATH"
	EnvStoragePassword = "EVENTMANAGER_STORAGE_PASSWORD" //nolint:gosec // Имя переменной, а не пароль
	EnvStorageOrigin   = "EVENTMANAGER_STORAGE_ORIGIN"
	EnvHTTPTimeout     = "EVENTMANAGER_HTTP_TIMEOUT"
	EnvLogLevel        = "EVENTMANAGER_LOG_LEVEL"
	EnvLogFormat       = "EVENTMANAGER_LOG_FORMAT"
	EnvLogFile         = "EVENTMANAGER_LOG_FILE"
)

// ErrConfigFailed обозначает любую проблему с чтением или разбором конфигурации.
var ErrConfigFailed = errors.New("config: failed to load")

// Config описывает настройки клиента.
type Config struct {
	BackendURL string        `yaml:"backend_url"`
	HTTP       HTTPConfig    `yaml:"http"`
	Storage    StorageConfig `yaml:"storage"`
	Log        LoggingConfig `yaml:"log"`
}

// HTTPConfig - настройки HTTP клиента. Timeout 0 означает отсутствие таймаута.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig - где хранится токен между запусками.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Password string `yaml:"password"` // Мастер-пароль для kdbx
	Origin   string `yaml:"origin"`   // Область видимости ключей; по умолчанию BackendURL
}

// LoggingConfig - уровень, формат и файл логов.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Error содержит дополнительный контекст при неудачной загрузке конфигурации.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ErrConfigFailed.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrConfigFailed, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrConfigFailed, e.Path, e.Err)
}

// Is сопоставляет ошибку с ErrConfigFailed.
func (e *Error) Is(target error) bool {
	return target == ErrConfigFailed
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		BackendURL: DefaultBackendURL,
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   defaultStoragePath(DriverSQLite),
		},
		Log: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   DefaultLogFile,
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML файл
// (если path не пустой), затем переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &Error{Path: path, Err: err}
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &Error{Path: path, Err: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.BackendURL = getEnv(EnvBackendURL, cfg.BackendURL)
	cfg.Storage.Driver = getEnv(EnvStorageDriver, cfg.Storage.Driver)
	cfg.Storage.Path = getEnv(EnvStoragePath, cfg.Storage.Path)
	cfg.Storage.Password = getEnv(EnvStoragePassword, cfg.Storage.Password)
	cfg.Storage.Origin = getEnv(EnvStorageOrigin, cfg.Storage.Origin)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = getEnv(EnvLogFormat, cfg.Log.Format)
	cfg.Log.File = getEnv(EnvLogFile, cfg.Log.File)

	if raw := os.Getenv(EnvHTTPTimeout); raw != "" {
		timeout, err := parseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		cfg.HTTP.Timeout = timeout
	}
	return nil
}

// Normalize приводит значения к каноническому виду и заполняет производные поля.
func (c *Config) Normalize() {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.Path == "" && c.Storage.Driver != DriverMemory {
		c.Storage.Path = defaultStoragePath(c.Storage.Driver)
	}
	if c.Storage.Driver == DriverKdbx && strings.HasSuffix(c.Storage.Path, ".db") {
		c.Storage.Path = strings.TrimSuffix(c.Storage.Path, ".db") + ".kdbx"
	}
	if c.Storage.Origin == "" {
		c.Storage.Origin = c.BackendURL
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("некорректный backend_url %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url должен начинаться с http:// или https://: %q", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("в backend_url не указан хост: %q", c.BackendURL)
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverKdbx:
		if c.Storage.Password == "" {
			return errors.New("для хранилища kdbx требуется storage.password")
		}
	default:
		return fmt.Errorf("неизвестный драйвер хранилища %q", c.Storage.Driver)
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout не может быть отрицательным")
	}
	return nil
}

// defaultStoragePath возвращает путь к файлу хранилища в пользовательском каталоге настроек.
func defaultStoragePath(driver string) string {
	name := "storage.db"
	if driver == DriverKdbx {
		name = "storage.kdbx"
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join("."+appDirName, name)
	}
	return filepath.Join(dir, appDirName, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// parseDuration принимает как "5s", так и число секунд.
func parseDuration(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
