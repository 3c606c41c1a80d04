package events

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// FreeLabel - цена бесплатного события.
const FreeLabel = "Gratuito"

const noTime = "—"

// strictPolicy удаляет всю HTML разметку из пользовательского текста.
var strictPolicy = bluemonday.StrictPolicy() //nolint:gochecknoglobals // Политика потокобезопасна

var categoryIcons = map[string]string{ //nolint:gochecknoglobals // Таблица иконок
	"tecnología": "💻",
	"artes":      "🎨",
	"negocios":   "💼",
	"música":     "🎵",
}

//nolint:gochecknoglobals // Локализация
var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
)

// Card - событие, подготовленное для отображения.
type Card struct {
	ID          int64
	Name        string
	Description string
	Date        string // YYYY-MM-DD
	LongDate    string // "martes, 15 de julio de 2025"
	Time        string // HH:MM или "—"
	Location    string
	Price       string
	Organizer   string
	Category    string
	Icon        string
	Past        bool
}

// NewCard преобразует событие в карточку. Текстовые поля очищаются от HTML.
func NewCard(e models.Event, now time.Time) Card {
	day := DayOf(e.StartDate)
	return Card{
		ID:          e.ID,
		Name:        Sanitize(e.Name),
		Description: Sanitize(e.Description),
		Date:        day,
		LongDate:    LongDate(day),
		Time:        formatTime(e.StartTime),
		Location:    Sanitize(e.Location),
		Price:       Price(e.Prize),
		Organizer:   Organizer(e.User),
		Category:    e.Category.Name,
		Icon:        CategoryIcon(e.Category.Name),
		Past:        IsPast(e, now),
	}
}

// Sanitize удаляет HTML разметку и возвращает обычный текст.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// CategoryIcon возвращает иконку категории.
func CategoryIcon(name string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(name))]; ok {
		return icon
	}
	return "📅"
}

// Price возвращает цену для отображения; пустая или нулевая - "Gratuito".
func Price(prize *string) string {
	if prize == nil {
		return FreeLabel
	}
	p := strings.TrimSpace(*prize)
	if p == "" {
		return FreeLabel
	}
	if v, err := strconv.ParseFloat(strings.TrimPrefix(p, "$"), 64); err == nil {
		if v == 0 {
			return FreeLabel
		}
		if !strings.HasPrefix(p, "$") {
			return "$" + p
		}
	}
	return p
}

// Organizer возвращает полное имя владельца или его username.
func Organizer(u models.User) string {
	if name := strings.TrimSpace(u.FullName()); name != "" {
		return name
	}
	return u.Username
}

// LongDate форматирует YYYY-MM-DD по-испански.
// Некорректная дата возвращается без изменений.
func LongDate(day string) string {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return day
	}
	return fmt.Sprintf("%s, %d de %s de %d", weekdaysES[t.Weekday()], t.Day(), monthsES[t.Month()-1], t.Year())
}

func formatTime(startTime *string) string {
	if startTime == nil || *startTime == "" {
		return noTime
	}
	if t, err := parseClock(*startTime); err == nil {
		return t.Format("15:04")
	}
	return *startTime
}

// Summary - сводка по списку событий.
type Summary struct {
	Total      int
	Upcoming   int
	Past       int
	Categories []string
}

// Summarize считает события и различные категории.
func Summarize(events []models.Event, now time.Time) Summary {
	seen := make(map[string]struct{})
	s := Summary{Total: len(events)}
	for _, e := range events {
		if IsPast(e, now) {
			s.Past++
		} else {
			s.Upcoming++
		}
		if e.Category.Name == "" {
			continue
		}
		if _, ok := seen[e.Category.Name]; !ok {
			seen[e.Category.Name] = struct{}{}
			s.Categories = append(s.Categories, e.Category.Name)
		}
	}
	sort.Strings(s.Categories)
	return s
}
