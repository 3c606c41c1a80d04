package events

import "github.com/ChilyGarcia/imagineapps-frontend/models"

// PerPage - событий на странице каталога.
const PerPage = 6

// Page - одна страница списка событий. Номера страниц начинаются с 1.
type Page struct {
	Items      []models.Event
	Number     int
	TotalPages int
	Total      int
}

// HasPrev сообщает, есть ли предыдущая страница.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext сообщает, есть ли следующая страница.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Paginate возвращает страницу number. Номер приводится к допустимому диапазону.
func Paginate(events []models.Event, number, perPage int) Page {
	if perPage <= 0 {
		perPage = PerPage
	}
	total := len(events)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		return Page{Items: []models.Event{}, Number: 1, TotalPages: 0, Total: 0}
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	start := (number - 1) * perPage
	end := min(start+perPage, total)
	return Page{Items: events[start:end], Number: number, TotalPages: totalPages, Total: total}
}
