package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

func strPtr(s string) *string { return &s }

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		prize    *string
		expected string
	}{
		{name: "Не указана", prize: nil, expected: "Gratuito"},
		{name: "Пустая", prize: strPtr("  "), expected: "Gratuito"},
		{name: "Ноль", prize: strPtr("0"), expected: "Gratuito"},
		{name: "Ноль с долларом", prize: strPtr("$0.00"), expected: "Gratuito"},
		{name: "Число", prize: strPtr("25000"), expected: "$25000"},
		{name: "С долларом", prize: strPtr("$10"), expected: "$10"},
		{name: "Текст", prize: strPtr("Donación voluntaria"), expected: "Donación voluntaria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, events.Price(tt.prize))
		})
	}
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "martes, 15 de julio de 2025", events.LongDate("2025-07-15"))
	assert.Equal(t, "domingo, 1 de diciembre de 2024", events.LongDate("2024-12-01"))
	assert.Equal(t, "mañana", events.LongDate("mañana"), "Некорректная дата возвращается как есть")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Hola mundo", events.Sanitize("<b>Hola</b> <script>alert(1)</script>mundo"))
	assert.Equal(t, "Rock & Roll", events.Sanitize("Rock &amp; Roll"))
	assert.Equal(t, "Taller", events.Sanitize("  Taller "))
}

func TestCategoryIcon(t *testing.T) {
	assert.Equal(t, "💻", events.CategoryIcon("Tecnología"))
	assert.Equal(t, "🎵", events.CategoryIcon(" música "))
	assert.Equal(t, "📅", events.CategoryIcon("Deportes"))
}

func TestNewCard(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	assert := assert.New(t)

	card := events.NewCard(models.Event{
		ID:          7,
		Name:        "<i>Concierto</i>",
		Description: "Banda en vivo",
		StartDate:   "2024-05-15T00:00:00",
		Location:    "Teatro",
		StartTime:   strPtr("09:00:00"),
		Prize:       strPtr("15000"),
		Category:    models.Category{ID: 3, Name: "Música"},
		User:        models.User{Username: "ana", FirstName: "Ana", LastName: "García"},
	}, now)

	assert.Equal(int64(7), card.ID)
	assert.Equal("Concierto", card.Name)
	assert.Equal("2024-05-15", card.Date)
	assert.Equal("miércoles, 15 de mayo de 2024", card.LongDate)
	assert.Equal("09:00", card.Time)
	assert.Equal("$15000", card.Price)
	assert.Equal("Ana García", card.Organizer)
	assert.Equal("🎵", card.Icon)
	assert.True(card.Past, "Событие началось утром того же дня")

	card = events.NewCard(models.Event{StartDate: "2024-05-16", User: models.User{Username: "luis"}}, now)
	assert.Equal("—", card.Time)
	assert.Equal("Gratuito", card.Price)
	assert.Equal("luis", card.Organizer)
	assert.Equal("📅", card.Icon)
	assert.False(card.Past)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	summary := events.Summarize([]models.Event{
		{StartDate: "2024-05-01", Category: models.Category{Name: "Música"}},
		{StartDate: "2024-06-01", Category: models.Category{Name: "Artes"}},
		{StartDate: "2024-07-01", Category: models.Category{Name: "Música"}},
		{StartDate: "2024-07-02"},
	}, now)

	assert.Equal(t, events.Summary{
		Total:      4,
		Upcoming:   3,
		Past:       1,
		Categories: []string{"Artes", "Música"},
	}, summary)
}
