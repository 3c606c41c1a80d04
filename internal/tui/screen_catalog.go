package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// updateCatalogScreen обрабатывает сообщения для экрана каталога.
//
//nolint:gocyclo // Одна клавиша - одна ветка
func (m *model) updateCatalogScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.eventList, cmd = m.eventList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case keyEnter:
		if item, isEvent := m.eventList.SelectedItem().(eventItem); isEvent {
			return m, m.openDetail(item.event)
		}
		return m, nil
	case "c":
		m.selection.Category = nextCategory(m.selection.Category, m.categories)
		return m, m.applySelection()
	case "d":
		m.selection.Bucket = nextBucket(m.selection.Bucket)
		if m.selection.Bucket == events.BucketSpecific && m.selection.Day == "" {
			return m, m.openDayInput()
		}
		return m, m.applySelection()
	case "f":
		return m, m.openDayInput()
	case "/":
		m.state = searchInputScreen
		m.searchInput.SetValue(m.selection.Search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case "r":
		return m, m.resetSelection()
	case keyRefresh:
		m.loading = true
		return m, tea.Batch(m.fetchEventsCmd(m.deps.Query.Refresh()), m.spinner.Tick)
	case "n", keyRight:
		m.pageNumber = m.page.Number + 1
		m.applyEvents()
		return m, nil
	case "p", keyLeft:
		m.pageNumber = m.page.Number - 1
		m.applyEvents()
		return m, nil
	case "l":
		if m.session.IsAuthenticated && m.session.User != nil {
			return m.setStatusMessage("Ya has iniciado sesión como " + m.session.User.Username)
		}
		return m, m.openLogin(catalogScreen)
	case "g":
		return m, m.openRegister()
	case "m":
		return m, m.openDashboard()
	}

	var cmd tea.Cmd
	m.eventList, cmd = m.eventList.Update(msg)
	return m, cmd
}

// applySelection переводит выбор пользователя в фильтры. Новый запрос к бэкенду
// выполняется, только если изменились серверные фильтры.
func (m *model) applySelection() tea.Cmd {
	filters, post := m.deps.Mapper.Map(m.selection, m.categories)
	m.post = post
	m.pageNumber = 1

	if filters.Equal(m.deps.Query.Filters()) && !m.loading {
		m.applyEvents()
		return nil
	}
	m.loading = true
	ticket := m.deps.Query.ReplaceFilters(filters)
	m.logger.Debug().Str("filters", filters.QueryString()).Uint64("generation", ticket.Generation).
		Msg("Фильтры изменены")
	return tea.Batch(m.fetchEventsCmd(ticket), m.spinner.Tick)
}

// resetSelection сбрасывает все фильтры каталога.
func (m *model) resetSelection() tea.Cmd {
	m.selection = events.Selection{Category: events.AllLabel, Bucket: events.BucketAll}
	m.post = events.PostFilter{}
	m.pageNumber = 1
	m.loading = true
	return tea.Batch(m.fetchEventsCmd(m.deps.Query.ResetFilters()), m.spinner.Tick)
}

// applyEvents применяет клиентские фильтры и пагинацию к загруженным событиям.
func (m *model) applyEvents() {
	now := m.deps.Now()
	visible := m.post.Apply(m.fetched, now)
	m.page = events.Paginate(visible, m.pageNumber, events.PerPage)
	m.pageNumber = m.page.Number
	m.eventList.SetItems(toItems(m.page.Items, now))
	m.eventList.ResetSelected()
}

// toItems преобразует события в элементы списка.
func toItems(evs []models.Event, now time.Time) []list.Item {
	items := make([]list.Item, len(evs))
	for i, e := range evs {
		items[i] = eventItem{event: e, card: events.NewCard(e, now)}
	}
	return items
}

// handleEventsLoaded применяет результат запроса событий. Ответы устаревших
// поколений уже отброшены Query и здесь игнорируются.
func (m *model) handleEventsLoaded(msg eventsLoadedMsg) (tea.Model, tea.Cmd) {
	if !msg.applied || msg.ticket.Generation < m.generation {
		m.logger.Debug().Uint64("generation", msg.ticket.Generation).Msg("Устаревший ответ проигнорирован")
		return m, nil
	}
	m.generation = msg.ticket.Generation
	m.loading = false
	m.err = msg.state.Err
	m.fetched = msg.state.Events
	m.applyEvents()
	return m, nil
}

// handleCategoriesLoaded сохраняет категории. Если выбранная категория исчезла,
// фильтр сбрасывается на "Todos".
func (m *model) handleCategoriesLoaded(msg categoriesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.state.Err != nil {
		m.logger.Warn().Err(msg.state.Err).Msg("Не удалось загрузить категории")
		m.categories = nil
		return m.setStatusMessage(msg.state.Err.Error())
	}
	m.categories = msg.state.Categories
	if m.createCategory >= len(m.categories) {
		m.createCategory = 0
	}
	if _, known := m.deps.Mapper.CategoryID(m.selection.Category, m.categories); !known &&
		m.selection.Category != events.AllLabel {
		m.selection.Category = events.AllLabel
		return m, m.applySelection()
	}
	return m, nil
}

// openDetail открывает карточку события и загружает ее актуальную версию.
func (m *model) openDetail(event models.Event) tea.Cmd {
	m.previousState = m.state
	m.state = detailScreen
	m.selected = &event
	m.detailLoading = true
	m.err = nil
	return tea.Batch(m.fetchEventCmd(event.ID), m.spinner.Tick, tea.ClearScreen)
}

func (m *model) openDayInput() tea.Cmd {
	m.state = dayInputScreen
	m.dayErr = nil
	m.dayInput.SetValue(m.selection.Day)
	m.dayInput.CursorEnd()
	return m.dayInput.Focus()
}

// nextCategory возвращает следующую категорию по кругу, начиная с "Todos".
func nextCategory(current string, categories []models.Category) string {
	names := make([]string, 0, len(categories)+1)
	names = append(names, events.AllLabel)
	for _, c := range categories {
		names = append(names, c.Name)
	}
	for i, name := range names {
		if strings.EqualFold(name, current) {
			return names[(i+1)%len(names)]
		}
	}
	return events.AllLabel
}

// nextBucket возвращает следующий вариант фильтра по дате.
func nextBucket(current events.DateBucket) events.DateBucket {
	for i, b := range events.DateBuckets {
		if b == current {
			return events.DateBuckets[(i+1)%len(events.DateBuckets)]
		}
	}
	return events.BucketAll
}

// updateSearchInputScreen обрабатывает ввод строки поиска.
// Поиск выполняется на клиенте и не вызывает запрос к бэкенду.
func (m *model) updateSearchInputScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			m.searchInput.Blur()
			m.state = catalogScreen
			return m, nil
		case keyEnter:
			m.searchInput.Blur()
			m.state = catalogScreen
			m.selection.Search = strings.TrimSpace(m.searchInput.Value())
			return m, m.applySelection()
		}
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// updateDayInputScreen обрабатывает ввод конкретного дня.
func (m *model) updateDayInputScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc:
			m.dayInput.Blur()
			m.state = catalogScreen
			if m.selection.Bucket == events.BucketSpecific && m.selection.Day == "" {
				m.selection.Bucket = events.BucketAll
				return m, m.applySelection()
			}
			return m, nil
		case keyEnter:
			day, err := events.ParseDay(m.dayInput.Value(), m.deps.Now())
			if err != nil {
				m.dayErr = err
				return m, nil
			}
			m.dayInput.Blur()
			m.dayErr = nil
			m.state = catalogScreen
			m.selection.Bucket = events.BucketSpecific
			m.selection.Day = day
			return m, m.applySelection()
		}
	}
	var cmd tea.Cmd
	m.dayInput, cmd = m.dayInput.Update(msg)
	return m, cmd
}

// viewCatalogScreen отображает каталог событий.
func (m *model) viewCatalogScreen() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Descubre eventos") + "  " + m.viewSessionBadge() + "\n\n")
	b.WriteString(m.viewFilters() + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Cargando eventos...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(subtleStyle.Render("ctrl+r para reintentar") + "\n")
	case m.page.Total == 0:
		b.WriteString(subtleStyle.Render("No se encontraron eventos") + "\n")
	default:
		b.WriteString(m.eventList.View() + "\n")
		b.WriteString(subtleStyle.Render(fmt.Sprintf("Página %d de %d (%d eventos)",
			m.page.Number, m.page.TotalPages, m.page.Total)) + "\n")
	}
	return b.String()
}

// viewFilters отображает текущие фильтры каталога.
func (m *model) viewFilters() string {
	bucket := string(m.selection.Bucket)
	if m.selection.Bucket == events.BucketSpecific && m.selection.Day != "" {
		bucket += " (" + m.selection.Day + ")"
	}
	parts := []string{
		labelStyle.Render("Categoría: ") + m.selection.Category,
		labelStyle.Render("Fecha: ") + bucket,
	}
	if m.selection.Search != "" {
		parts = append(parts, labelStyle.Render("Búsqueda: ")+m.selection.Search)
	}
	return strings.Join(parts, "  |  ")
}

// viewSessionBadge показывает, кто вошел в систему.
func (m *model) viewSessionBadge() string {
	switch {
	case m.session.State == auth.StateUnknown:
		return subtleStyle.Render("Verificando sesión...")
	case m.session.IsAuthenticated && m.session.User != nil:
		return badgeStyle.Render(m.session.User.Username)
	default:
		return subtleStyle.Render("Invitado")
	}
}

func (m *model) viewSearchInputScreen() string {
	return titleStyle.Render("Buscar eventos") + "\n\n" + m.searchInput.View() + "\n"
}

func (m *model) viewDayInputScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Día específico") + "\n\n")
	b.WriteString(m.dayInput.View() + "\n")
	if m.dayErr != nil {
		msg := m.dayErr.Error()
		if errors.Is(m.dayErr, events.ErrEmptyDay) {
			msg = "Ingresa una fecha"
		}
		b.WriteString("\n" + errorStyle.Render(msg) + "\n")
	}
	return b.String()
}
