package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

// updateDetailScreen обрабатывает сообщения для карточки события.
func (m *model) updateDetailScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc, keyBack:
			m.state = m.previousState
			m.selected = nil
			m.err = nil
			return m, tea.ClearScreen
		case keyQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleEventLoaded обновляет карточку данными бэкенда.
// Если загрузка не удалась, остается версия из списка и показывается ошибка.
func (m *model) handleEventLoaded(msg eventLoadedMsg) (tea.Model, tea.Cmd) {
	m.detailLoading = false
	if msg.err != nil {
		m.err = msg.err
		m.logger.Warn().Err(msg.err).Msg("Не удалось загрузить событие")
		return m, nil
	}
	if m.selected != nil && msg.event != nil && m.selected.ID == msg.event.ID {
		m.selected = msg.event
	}
	return m, nil
}

// viewDetailScreen отображает карточку события.
func (m *model) viewDetailScreen() string {
	if m.selected == nil {
		return subtleStyle.Render("Evento no seleccionado")
	}
	card := events.NewCard(*m.selected, m.deps.Now())

	var b strings.Builder
	b.WriteString(titleStyle.Render(card.Icon+" "+card.Name) + "  ")
	if card.Category != "" {
		b.WriteString(badgeStyle.Render(card.Category) + " ")
	}
	if card.Past {
		b.WriteString(pastBadgeStyle.Render("Finalizado"))
	}
	b.WriteString("\n\n")

	if m.detailLoading {
		b.WriteString(m.spinner.View() + " Actualizando...\n\n")
	}

	rows := [][2]string{
		{"Fecha", card.LongDate},
		{"Hora", card.Time},
		{"Ubicación", card.Location},
		{"Precio", card.Price},
		{"Organizador", card.Organizer},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]+": ") + row[1] + "\n")
	}
	b.WriteString("\n" + card.Description + "\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if !m.session.IsAuthenticated {
		b.WriteString("\n" + subtleStyle.Render("¿Quieres crear tus propios eventos? Inicia sesión o regístrate.") + "\n")
	}
	return b.String()
}
