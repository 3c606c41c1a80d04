package events

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// AllLabel - значение "без фильтра" для категории и даты.
const AllLabel = "Todos"

// DateBucket - вариант фильтра по дате в интерфейсе.
type DateBucket string

const (
	BucketAll      DateBucket = AllLabel
	BucketToday    DateBucket = "Hoy"
	BucketWeek     DateBucket = "Esta semana"
	BucketMonth    DateBucket = "Este mes"
	BucketYear     DateBucket = "Este año"
	BucketPast     DateBucket = "Pasados"
	BucketSpecific DateBucket = "Día específico"
)

// DateBuckets - порядок переключения вариантов в интерфейсе.
var DateBuckets = []DateBucket{ //nolint:gochecknoglobals // Фиксированный список
	BucketAll, BucketToday, BucketWeek, BucketMonth, BucketYear, BucketPast, BucketSpecific,
}

// serverBuckets - варианты, которые фильтрует бэкенд.
var serverBuckets = map[DateBucket]TimeFilter{ //nolint:gochecknoglobals // Таблица соответствия
	BucketToday: TimeToday,
	BucketWeek:  TimeWeek,
	BucketMonth: TimeMonth,
	BucketYear:  TimeYear,
}

// Selection - выбор пользователя в фильтрах каталога.
type Selection struct {
	Category string     // Имя категории или "Todos"
	Bucket   DateBucket // Вариант фильтра по дате
	Day      string     // YYYY-MM-DD для BucketSpecific
	Search   string     // Подстрока в названии
}

// PostFilter - фильтры, которые применяются на клиенте после загрузки.
type PostFilter struct {
	PastOnly bool
	Day      string
	Search   string
}

// Mapper переводит выбор пользователя в параметры запроса.
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper создает преобразователь фильтров.
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger.With().Str("component", "filters").Logger()}
}

// Map возвращает полный набор серверных фильтров и клиентский постфильтр.
// Поля, которым ничего не соответствует, явно обнуляются, поэтому результат
// можно передавать в Query.ReplaceFilters.
func (m *Mapper) Map(sel Selection, categories []models.Category) (*Filters, PostFilter) {
	filters := &Filters{}
	post := PostFilter{Search: strings.TrimSpace(sel.Search)}

	if id, ok := m.CategoryID(sel.Category, categories); ok {
		filters.CategoryID = Int64(id)
	}

	switch sel.Bucket {
	case BucketPast:
		post.PastOnly = true
	case BucketSpecific:
		if sel.Day != "" {
			post.Day = sel.Day
		}
	default:
		if tf, ok := serverBuckets[sel.Bucket]; ok {
			filters.TimeFilter = Time(tf)
		}
	}
	return filters, post
}

// CategoryID ищет категорию по имени без учета регистра и пробелов.
// Неизвестное имя не добавляет фильтр и записывается в лог.
func (m *Mapper) CategoryID(name string, categories []models.Category) (int64, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, AllLabel) {
		return 0, false
	}
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c.ID, true
		}
	}
	m.logger.Warn().Str("category", name).Int("known", len(categories)).
		Msg("Категория не найдена, фильтр по категории не применяется")
	return 0, false
}

// Active сообщает, задан ли хотя бы один клиентский фильтр.
func (p PostFilter) Active() bool {
	return p.PastOnly || p.Day != "" || p.Search != ""
}

// Apply оставляет события, подходящие под клиентские фильтры.
func (p PostFilter) Apply(events []models.Event, now time.Time) []models.Event {
	if !p.Active() {
		return events
	}
	search := strings.ToLower(p.Search)

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		if p.Day != "" && DayOf(e.StartDate) != p.Day {
			continue
		}
		if p.PastOnly && !IsPast(e, now) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DayOf возвращает дату в формате YYYY-MM-DD (первые 10 символов).
func DayOf(date string) string {
	if len(date) > len(time.DateOnly) {
		return date[:len(time.DateOnly)]
	}
	return date
}

// StartOf возвращает время начала события в часовом поясе loc.
// Если время начала не указано, используется полночь.
func StartOf(e models.Event, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(time.DateOnly, DayOf(e.StartDate), loc)
	if err != nil {
		return time.Time{}, false
	}
	if e.StartTime != nil && *e.StartTime != "" {
		if clock, clockErr := parseClock(*e.StartTime); clockErr == nil {
			day = day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
		}
	}
	return day, true
}

// IsPast сообщает, началось ли событие раньше now.
func IsPast(e models.Event, now time.Time) bool {
	start, ok := StartOf(e, now.Location())
	return ok && start.Before(now)
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}
