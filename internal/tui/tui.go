// Package tui реализует терминальный интерфейс каталога событий на bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Init - команды, выполняемые при запуске: восстановление сессии,
// загрузка категорий и первая загрузка событий.
func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.mountSessionCmd(),
		m.loadCategoriesCmd(),
		m.fetchEventsCmd(m.deps.Query.Refresh()),
		m.spinner.Tick,
	)
}

// setStatusMessage устанавливает статусное сообщение и запускает таймер для его очистки.
func (m *model) setStatusMessage(status string) (tea.Model, tea.Cmd) {
	m.status = status
	return m, clearStatusCmd(m.statusTimeout)
}

// getMainContentView возвращает основное содержимое для текущего состояния.
func (m *model) getMainContentView() string {
	switch m.state {
	case catalogScreen:
		return m.viewCatalogScreen()
	case searchInputScreen:
		return m.viewSearchInputScreen()
	case dayInputScreen:
		return m.viewDayInputScreen()
	case detailScreen:
		return m.viewDetailScreen()
	case loginScreen:
		return m.viewLoginScreen()
	case registerScreen:
		return m.viewRegisterScreen()
	case dashboardScreen:
		return m.viewDashboardScreen()
	case createScreen:
		return m.viewCreateScreen()
	case deleteConfirmScreen:
		return m.viewDeleteConfirmScreen()
	default:
		return "Estado desconocido"
	}
}

// View отрисовывает пользовательский интерфейс.
func (m *model) View() string {
	mainContent := m.docStyle.Render(m.getMainContentView())
	help := m.helpTextMap[m.state]

	var footer strings.Builder
	if m.status != "" {
		footer.WriteString("\n" + successStyle.Render(m.status))
	}
	return fmt.Sprintf("%s\n%s%s", mainContent, subtleStyle.Render(help), footer.String())
}

// Start запускает TUI и блокируется до выхода пользователя.
func Start(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.notify = p.Send

	if _, err := p.Run(); err != nil {
		m.logger.Error().Err(err).Msg("Ошибка при работе TUI")
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}
