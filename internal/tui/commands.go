package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

const statusMessageTimeout = 3 * time.Second

// mountSessionCmd восстанавливает сессию по сохраненному токену.
func (m *model) mountSessionCmd() tea.Cmd {
	ctx, session := m.ctx, m.deps.Session
	return func() tea.Msg {
		return sessionMountedMsg{snapshot: session.Mount(ctx)}
	}
}

// loadCategoriesCmd загружает категории для фильтров и формы создания.
func (m *model) loadCategoriesCmd() tea.Cmd {
	ctx, query := m.ctx, m.deps.Categories
	return func() tea.Msg {
		return categoriesLoadedMsg{state: query.Load(ctx)}
	}
}

// fetchEventsCmd выполняет запрос событий для поколения ticket.
func (m *model) fetchEventsCmd(ticket events.Ticket) tea.Cmd {
	ctx, query := m.ctx, m.deps.Query
	return func() tea.Msg {
		state, applied := query.Execute(ctx, ticket)
		return eventsLoadedMsg{ticket: ticket, state: state, applied: applied}
	}
}

// fetchEventCmd загружает одно событие для карточки.
func (m *model) fetchEventCmd(id int64) tea.Cmd {
	ctx, service := m.ctx, m.deps.Events
	return func() tea.Msg {
		event, err := service.Get(ctx, id)
		return eventLoadedMsg{event: event, err: err}
	}
}

func (m *model) loginCmd(username, password string) tea.Cmd {
	ctx, session := m.ctx, m.deps.Session
	return func() tea.Msg {
		_, err := session.Login(ctx, username, password)
		return loginResultMsg{username: username, err: err}
	}
}

func (m *model) registerCmd(form auth.RegisterForm) tea.Cmd {
	ctx, service := m.ctx, m.deps.Auth
	return func() tea.Msg {
		user, err := service.Register(ctx, form)
		return registerResultMsg{user: user, err: err}
	}
}

// logoutCmd завершает сессию. Переход на экран входа делает обработчик OnLogout.
func (m *model) logoutCmd() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		session.Logout()
		return nil
	}
}

// loadMineCmd загружает события текущего пользователя.
func (m *model) loadMineCmd() tea.Cmd {
	ctx, session, service := m.ctx, m.deps.Session, m.deps.Events
	return func() tea.Msg {
		list, err := service.Mine(ctx, session.User())
		return mineLoadedMsg{events: list, err: err}
	}
}

func (m *model) createEventCmd(form events.CreateForm) tea.Cmd {
	ctx, session, service := m.ctx, m.deps.Session, m.deps.Events
	return func() tea.Msg {
		event, err := service.Create(ctx, form, session.User())
		return eventCreatedMsg{event: event, err: err}
	}
}

func (m *model) deleteEventCmd(id int64) tea.Cmd {
	ctx, service := m.ctx, m.deps.Events
	return func() tea.Msg {
		return eventDeletedMsg{id: id, err: service.Delete(ctx, id)}
	}
}

// clearStatusCmd возвращает команду, которая отправит clearStatusMsg через delay.
func clearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
