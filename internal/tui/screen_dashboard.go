package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

// openDashboard открывает личный кабинет. Без входа открывается экран входа,
// после которого пользователь вернется сюда.
func (m *model) openDashboard() tea.Cmd {
	if err := m.deps.Session.RequireAuth(); err != nil {
		if errors.Is(err, auth.ErrSessionLoading) {
			_, cmd := m.setStatusMessage("Verificando sesión, inténtalo de nuevo en un momento")
			return cmd
		}
		return m.openLogin(dashboardScreen)
	}
	m.state = dashboardScreen
	m.err = nil
	m.mineLoading = true
	return tea.Batch(m.loadMineCmd(), m.spinner.Tick, tea.ClearScreen)
}

// updateDashboardScreen обрабатывает сообщения для экрана "Mis eventos".
func (m *model) updateDashboardScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.mineList, cmd = m.mineList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyEsc, keyBack:
		m.state = catalogScreen
		m.err = nil
		return m, tea.ClearScreen
	case keyQuit:
		return m, tea.Quit
	case keyEnter:
		if item, isEvent := m.mineList.SelectedItem().(eventItem); isEvent {
			return m, m.openDetail(item.event)
		}
		return m, nil
	case "a":
		return m, m.openCreate()
	case "x":
		if item, isEvent := m.mineList.SelectedItem().(eventItem); isEvent {
			event := item.event
			m.pendingDelete = &event
			m.state = deleteConfirmScreen
			return m, nil
		}
		return m, nil
	case keyRefresh:
		m.mineLoading = true
		return m, tea.Batch(m.loadMineCmd(), m.spinner.Tick)
	case "o":
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	m.mineList, cmd = m.mineList.Update(msg)
	return m, cmd
}

// handleMineLoaded показывает события пользователя.
func (m *model) handleMineLoaded(msg mineLoadedMsg) (tea.Model, tea.Cmd) {
	m.mineLoading = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	m.mine = msg.events
	m.mineList.SetItems(toItems(m.mine, m.deps.Now()))
	return m, nil
}

// handleLoggedOut переводит на экран входа после выхода из системы.
func (m *model) handleLoggedOut() (tea.Model, tea.Cmd) {
	m.session = m.deps.Session.Snapshot()
	m.mine = nil
	m.mineList.SetItems(nil)
	m.pendingDelete = nil
	cmd := m.openLogin(catalogScreen)
	_, statusCmd := m.setStatusMessage("Sesión cerrada")
	return m, tea.Batch(cmd, statusCmd)
}

// viewDashboardScreen отображает события пользователя и сводку.
func (m *model) viewDashboardScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mis eventos") + "  " + m.viewSessionBadge() + "\n\n")

	switch {
	case m.mineLoading:
		b.WriteString(m.spinner.View() + " Cargando tus eventos...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case len(m.mine) == 0:
		b.WriteString(subtleStyle.Render("Aún no has creado eventos. Pulsa 'a' para crear el primero.") + "\n")
	default:
		s := events.Summarize(m.mine, m.deps.Now())
		b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d\n",
			labelStyle.Render("Total:"), s.Total,
			labelStyle.Render("Próximos:"), s.Upcoming,
			labelStyle.Render("Pasados:"), s.Past))
		if len(s.Categories) > 0 {
			b.WriteString(labelStyle.Render("Categorías: ") + strings.Join(s.Categories, ", ") + "\n")
		}
		b.WriteString("\n" + m.mineList.View() + "\n")
	}
	return b.String()
}

// updateDeleteConfirmScreen обрабатывает подтверждение удаления события.
func (m *model) updateDeleteConfirmScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.pendingDelete == nil {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y", keyEnter:
		id := m.pendingDelete.ID
		m.state = dashboardScreen
		m.mineLoading = true
		return m, tea.Batch(m.deleteEventCmd(id), m.spinner.Tick)
	case "n", "N", keyEsc:
		m.pendingDelete = nil
		m.state = dashboardScreen
		return m, nil
	}
	return m, nil
}

// handleEventDeleted обновляет список после удаления.
func (m *model) handleEventDeleted(msg eventDeletedMsg) (tea.Model, tea.Cmd) {
	m.pendingDelete = nil
	if msg.err != nil {
		m.mineLoading = false
		m.logger.Warn().Err(msg.err).Int64("id", msg.id).Msg("Не удалось удалить событие")
		return m.setStatusMessage("No se pudo eliminar el evento: " + msg.err.Error())
	}
	_, statusCmd := m.setStatusMessage("Evento eliminado")
	m.loading = true
	return m, tea.Batch(m.loadMineCmd(), m.fetchEventsCmd(m.deps.Query.Refresh()), statusCmd)
}

// viewDeleteConfirmScreen отображает запрос подтверждения удаления.
func (m *model) viewDeleteConfirmScreen() string {
	if m.pendingDelete == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("¿Eliminar evento?") + "\n\n")
	b.WriteString("Esta acción no se puede deshacer. Se eliminará permanentemente el evento ")
	b.WriteString(focusedStyle.Render(events.Sanitize(m.pendingDelete.Name)) + ".\n\n")
	b.WriteString(subtleStyle.Render("(y) Eliminar   (n) Cancelar") + "\n")
	return b.String()
}
