package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logDirPermissions  = 0o755
	logFilePermissions = 0o644
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger настраивает zerolog по конфигурации. TUI занимает терминал,
// поэтому по умолчанию логи пишутся в файл; пустой File означает stderr.
// Возвращаемый io.Closer закрывает файл логов.
func NewLogger(cfg LoggingConfig) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err = os.MkdirAll(dir, logDirPermissions); err != nil {
				return zerolog.Nop(), nil, fmt.Errorf("не удалось создать директорию для логов: %w", err)
			}
		}
		file, openErr := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
		if openErr != nil {
			return zerolog.Nop(), nil, fmt.Errorf("не удалось открыть лог-файл: %w", openErr)
		}
		out = file
		closer = file
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.File != "",
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, closer, nil
}
