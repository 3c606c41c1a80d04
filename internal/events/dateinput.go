package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// ErrEmptyDay - дата не введена.
var ErrEmptyDay = errors.New("fecha vacía")

// ParseDay переводит введенную дату в YYYY-MM-DD.
// Понимает ISO формат, а также свободный текст на испанском и английском
// ("mañana", "15 de julio", "next friday") относительно now.
func ParseDay(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyDay
	}
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t.Format(time.DateOnly), nil
	}

	cfg := &dateparser.Configuration{
		Languages:       []string{"es", "en"},
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}
	dt, err := dateparser.Parse(cfg, input)
	if err != nil {
		return "", fmt.Errorf("fecha no reconocida %q: %w", input, err)
	}
	return dt.Time.In(now.Location()).Format(time.DateOnly), nil
}
