// Package events реализует загрузку и фильтрацию каталога событий.
package events

import (
	"net/url"
	"strconv"
)

// TimeFilter - серверный фильтр по периоду.
type TimeFilter string

const (
	TimeToday TimeFilter = "today"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
	TimeYear  TimeFilter = "year"
)

// Filters - параметры запроса списка событий. nil-поле означает отсутствие фильтра,
// nil *Filters - отсутствие фильтров вообще.
type Filters struct {
	CategoryID *int64
	TimeFilter *TimeFilter
	Date       *string // YYYY-MM-DD
}

// Int64 возвращает указатель на значение.
func Int64(v int64) *int64 { return &v }

// Time возвращает указатель на значение.
func Time(v TimeFilter) *TimeFilter { return &v }

// String возвращает указатель на значение.
func String(v string) *string { return &v }

// Merge возвращает новые фильтры: поля partial, отличные от nil, перекрывают текущие.
// Поля не удаляются; для сброса используется nil *Filters.
func (f *Filters) Merge(partial *Filters) *Filters {
	out := &Filters{}
	if f != nil {
		*out = *f
	}
	if partial == nil {
		return out
	}
	if partial.CategoryID != nil {
		out.CategoryID = partial.CategoryID
	}
	if partial.TimeFilter != nil {
		out.TimeFilter = partial.TimeFilter
	}
	if partial.Date != nil {
		out.Date = partial.Date
	}
	return out
}

// Empty сообщает, что фильтры не добавляют ни одного параметра.
func (f *Filters) Empty() bool {
	return len(f.Values()) == 0
}

// Values кодирует фильтры в параметры запроса.
// category_id передается только для положительных значений.
func (f *Filters) Values() url.Values {
	v := url.Values{}
	if f == nil {
		return v
	}
	if f.CategoryID != nil && *f.CategoryID > 0 {
		v.Set("category_id", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.TimeFilter != nil && *f.TimeFilter != "" {
		v.Set("time_filter", string(*f.TimeFilter))
	}
	if f.Date != nil && *f.Date != "" {
		v.Set("date", *f.Date)
	}
	return v
}

// QueryString возвращает параметры в стабильном (отсортированном) виде.
func (f *Filters) QueryString() string {
	return f.Values().Encode()
}

// Equal сравнивает фильтры по закодированным параметрам.
func (f *Filters) Equal(other *Filters) bool {
	return f.QueryString() == other.QueryString()
}
