package events

import (
	"context"
	"sync"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// CategoryLister загружает список категорий.
type CategoryLister interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// CategoriesState - категории, загрузка и ошибка.
type CategoriesState struct {
	Categories []models.Category
	Loading    bool
	Err        error
}

// CategoriesQuery загружает категории при каждом Load, без кеширования.
type CategoriesQuery struct {
	lister CategoryLister

	mu    sync.Mutex
	state CategoriesState
}

// NewCategoriesQuery создает запрос категорий.
func NewCategoriesQuery(lister CategoryLister) *CategoriesQuery {
	return &CategoriesQuery{lister: lister, state: CategoriesState{Loading: true}}
}

// Load загружает категории и возвращает новое состояние.
func (q *CategoriesQuery) Load(ctx context.Context) CategoriesState {
	q.mu.Lock()
	q.state.Loading = true
	q.state.Err = nil
	q.mu.Unlock()

	categories, err := q.lister.Categories(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Loading = false
	if err != nil {
		q.state.Err = err
		q.state.Categories = nil
	} else {
		q.state.Categories = categories
	}
	return q.state
}

// State возвращает текущее состояние.
func (q *CategoriesQuery) State() CategoriesState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}
