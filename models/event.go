package models

// Category представляет категорию событий.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Event представляет событие в том виде, в котором его отдает бэкенд.
// Даты приходят строками: start_date/end_date в формате YYYY-MM-DD
// (иногда с временем через 'T').
type Event struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Location    string   `json:"location"`
	StartTime   *string  `json:"start_time"`
	Prize       *string  `json:"prize"`
	Category    Category `json:"category"`
	User        User     `json:"user"`
}

// CreateEventRequest представляет тело запроса на создание события.
type CreateEventRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Location    string  `json:"location"`
	CategoryID  int64   `json:"category_id"`
	UserID      int64   `json:"user_id"`
	StartTime   *string `json:"start_time"`
	Prize       *string `json:"prize"`
}
