package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

// openCreate открывает форму создания события с датой начала по умолчанию - сегодня.
func (m *model) openCreate() tea.Cmd {
	resetInputs(m.createInputs)
	m.createInputs[createFieldStartDate].SetValue(events.Today(m.deps.Now()))
	m.createFocused = createFieldName
	m.err = nil
	m.state = createScreen
	cmds := []tea.Cmd{focusField(m.createInputs, m.createFocused), tea.ClearScreen}
	if len(m.categories) == 0 {
		cmds = append(cmds, m.loadCategoriesCmd())
	}
	return tea.Batch(cmds...)
}

// updateCreateScreen обрабатывает ввод в форме создания события.
// На поле категории стрелки влево/вправо переключают категорию.
func (m *model) updateCreateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.createFocused == createFieldCategory && len(m.categories) > 0 {
		switch keyMsg.String() {
		case keyRight, "l", " ":
			m.createCategory = (m.createCategory + 1) % len(m.categories)
			return m, nil
		case keyLeft, "h":
			m.createCategory = (m.createCategory + len(m.categories) - 1) % len(m.categories)
			return m, nil
		}
	}

	createAction := func() (tea.Model, tea.Cmd) {
		form := m.createForm()
		m.err = nil
		m.submitting = true
		return m, tea.Batch(m.createEventCmd(form), m.spinner.Tick)
	}

	return m.handleFormInput(
		msg,
		m.createInputs,
		&m.createFocused,
		numCreateFields,
		createAction,
		dashboardScreen,
	)
}

// createForm собирает данные формы.
func (m *model) createForm() events.CreateForm {
	form := events.CreateForm{
		Name:        inputValue(m.createInputs, createFieldName),
		Description: inputValue(m.createInputs, createFieldDescription),
		Location:    inputValue(m.createInputs, createFieldLocation),
		StartDate:   inputValue(m.createInputs, createFieldStartDate),
		EndDate:     inputValue(m.createInputs, createFieldEndDate),
		StartTime:   inputValue(m.createInputs, createFieldStartTime),
		Prize:       inputValue(m.createInputs, createFieldPrize),
	}
	if m.createCategory < len(m.categories) {
		form.CategoryID = m.categories[m.createCategory].ID
	}
	return form
}

// handleEventCreated возвращает в кабинет после успешного создания.
func (m *model) handleEventCreated(msg eventCreatedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	focusField(m.createInputs, -1)
	m.err = nil
	name := ""
	if msg.event != nil {
		name = msg.event.Name
	}
	m.state = dashboardScreen
	m.mineLoading = true
	m.loading = true
	_, statusCmd := m.setStatusMessage("Evento creado: " + name)
	return m, tea.Batch(m.loadMineCmd(), m.fetchEventsCmd(m.deps.Query.Refresh()), statusCmd, tea.ClearScreen)
}

// viewCreateScreen отображает форму создания события.
func (m *model) viewCreateScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Crear nuevo evento") + "\n\n")
	b.WriteString(viewInputs(m.createInputs))

	category := subtleStyle.Render("Cargando categorías...")
	if len(m.categories) > 0 {
		c := m.categories[m.createCategory]
		category = events.CategoryIcon(c.Name) + " " + c.Name
	}
	prefix := "  "
	if m.createFocused == createFieldCategory {
		prefix = focusedStyle.Render("> ")
		category = "‹ " + category + " ›"
	}
	b.WriteString(prefix + labelStyle.Render("Categoría: ") + category + "\n")

	if m.submitting {
		b.WriteString("\n" + m.spinner.View() + " Guardando...\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	return b.String()
}
