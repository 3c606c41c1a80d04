package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// Lister загружает список событий по фильтрам.
type Lister interface {
	List(ctx context.Context, filters *Filters) ([]models.Event, error)
}

// Ticket - поколение запроса. Результат применяется только для последнего поколения.
type Ticket struct {
	Generation uint64
	Filters    *Filters
}

// QueryState - данные, загрузка и ошибка списка событий.
type QueryState struct {
	Events     []models.Event
	Loading    bool
	Err        error
	Filters    *Filters
	Generation uint64
}

// Query хранит текущие фильтры и результат последней загрузки.
// Каждое изменение фильтров или обновление создает новое поколение;
// ответы для устаревших поколений отбрасываются.
type Query struct {
	lister Lister
	logger zerolog.Logger

	mu         sync.Mutex
	filters    *Filters
	generation uint64
	state      QueryState
	listeners  []func(QueryState)

	wg sync.WaitGroup
}

// NewQuery создает запрос с начальными фильтрами (nil - без фильтров).
func NewQuery(lister Lister, initial *Filters, logger zerolog.Logger) *Query {
	return &Query{
		lister:  lister,
		logger:  logger.With().Str("component", "events_query").Logger(),
		filters: initial,
		state:   QueryState{Loading: true, Filters: initial},
	}
}

// Filters возвращает текущие фильтры.
func (q *Query) Filters() *Filters {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filters
}

// State возвращает последнее примененное состояние.
func (q *Query) State() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe регистрирует обработчик изменений состояния.
func (q *Query) Subscribe(fn func(QueryState)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// UpdateFilters сливает partial с текущими фильтрами и создает новое поколение.
func (q *Query) UpdateFilters(partial *Filters) Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.filters = q.filters.Merge(partial)
	return q.nextLocked()
}

// ReplaceFilters заменяет фильтры целиком и создает новое поколение.
func (q *Query) ReplaceFilters(filters *Filters) Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.filters = filters
	return q.nextLocked()
}

// ResetFilters сбрасывает фильтры и создает новое поколение.
func (q *Query) ResetFilters() Ticket {
	return q.ReplaceFilters(nil)
}

// Refresh создает новое поколение с текущими фильтрами.
func (q *Query) Refresh() Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextLocked()
}

func (q *Query) nextLocked() Ticket {
	q.generation++
	return Ticket{Generation: q.generation, Filters: q.filters}
}

// Execute загружает события для ticket. Второе значение false, если за время
// загрузки появилось более новое поколение и результат отброшен.
func (q *Query) Execute(ctx context.Context, t Ticket) (QueryState, bool) {
	if !q.apply(t, func(s *QueryState) {
		s.Loading = true
		s.Err = nil
		s.Filters = t.Filters
	}) {
		return q.State(), false
	}

	events, err := q.lister.List(ctx, t.Filters)

	applied := q.apply(t, func(s *QueryState) {
		s.Loading = false
		if err != nil {
			s.Err = err
			s.Events = nil
			return
		}
		s.Events = events
	})
	if !applied {
		q.logger.Debug().Uint64("generation", t.Generation).Msg("Ответ устаревшего запроса отброшен")
		return q.State(), false
	}
	if err != nil {
		q.logger.Warn().Err(err).Str("filters", t.Filters.QueryString()).Msg("Не удалось загрузить события")
	}
	return q.State(), true
}

// Start выполняет Execute в отдельной горутине.
func (q *Query) Start(ctx context.Context, t Ticket) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.Execute(ctx, t)
	}()
}

// Wait ожидает завершения всех запросов, запущенных через Start.
func (q *Query) Wait() {
	q.wg.Wait()
}

// apply изменяет состояние, только если t - последнее поколение.
func (q *Query) apply(t Ticket, fn func(*QueryState)) bool {
	q.mu.Lock()
	if t.Generation != q.generation {
		q.mu.Unlock()
		return false
	}
	fn(&q.state)
	q.state.Generation = t.Generation
	snap := q.state
	listeners := append([]func(QueryState){}, q.listeners...)
	q.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return true
}
