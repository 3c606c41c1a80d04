package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update обрабатывает входящие сообщения.
//
//nolint:gocyclo // Маршрутизация сообщений
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// == Глобальные сообщения (не зависят от экрана) ==
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := m.docStyle.GetFrameSize()
		listWidth := msg.Width - h
		listHeight := msg.Height - v - helpHeight
		m.eventList.SetSize(listWidth, listHeight)
		m.mineList.SetSize(listWidth, listHeight)
		m.resizeInputs(listWidth - inputWidthOffset)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMountedMsg:
		m.session = msg.snapshot
		return m, nil

	case sessionChangedMsg:
		m.session = msg.snapshot
		return m, nil

	case loggedOutMsg:
		return m.handleLoggedOut()

	case categoriesLoadedMsg:
		return m.handleCategoriesLoaded(msg)

	case eventsLoadedMsg:
		return m.handleEventsLoaded(msg)

	case eventLoadedMsg:
		return m.handleEventLoaded(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case registerResultMsg:
		return m.handleRegisterResult(msg)

	case mineLoadedMsg:
		return m.handleMineLoaded(msg)

	case eventCreatedMsg:
		return m.handleEventCreated(msg)

	case eventDeletedMsg:
		return m.handleEventDeleted(msg)

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// == Обновление компонентов в зависимости от состояния ==
	switch m.state {
	case catalogScreen:
		return m.updateCatalogScreen(msg)
	case searchInputScreen:
		return m.updateSearchInputScreen(msg)
	case dayInputScreen:
		return m.updateDayInputScreen(msg)
	case detailScreen:
		return m.updateDetailScreen(msg)
	case loginScreen:
		return m.updateLoginScreen(msg)
	case registerScreen:
		return m.updateRegisterScreen(msg)
	case dashboardScreen:
		return m.updateDashboardScreen(msg)
	case createScreen:
		return m.updateCreateScreen(msg)
	case deleteConfirmScreen:
		return m.updateDeleteConfirmScreen(msg)
	default:
		return m, nil
	}
}

const helpHeight = 6 // Заголовок, фильтры, строка страниц и справка

// busy сообщает, идет ли хотя бы одна загрузка (нужен спиннер).
func (m *model) busy() bool {
	return m.loading || m.detailLoading || m.mineLoading || m.submitting || m.session.Loading
}

// resizeInputs подгоняет ширину полей ввода под окно.
func (m *model) resizeInputs(width int) {
	if width <= 0 {
		return
	}
	m.searchInput.Width = width
	m.dayInput.Width = width
	for _, inputs := range [][]textinput.Model{m.loginInputs, m.registerInputs, m.createInputs} {
		for i := range inputs {
			inputs[i].Width = width
		}
	}
}
