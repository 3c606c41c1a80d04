package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
)

var errEmptyCredentials = errors.New("Ingresa usuario y contraseña") //nolint:revive,stylecheck // Сообщение для пользователя

// openRegister открывает экран регистрации.
func (m *model) openRegister() tea.Cmd {
	m.state = registerScreen
	m.err = nil
	m.registerFocused = registerFieldFirstName
	return tea.Batch(focusField(m.registerInputs, m.registerFocused), tea.ClearScreen)
}

// updateRegisterScreen обрабатывает ввод данных для регистрации.
func (m *model) updateRegisterScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	registerAction := func() (tea.Model, tea.Cmd) {
		form := auth.RegisterForm{
			FirstName:       m.registerInputs[registerFieldFirstName].Value(),
			LastName:        m.registerInputs[registerFieldLastName].Value(),
			Email:           m.registerInputs[registerFieldEmail].Value(),
			Password:        m.registerInputs[registerFieldPassword].Value(),
			ConfirmPassword: m.registerInputs[registerFieldConfirm].Value(),
		}
		m.err = nil
		m.submitting = true
		return m, tea.Batch(m.registerCmd(form), m.spinner.Tick)
	}

	return m.handleFormInput(
		msg,
		m.registerInputs,
		&m.registerFocused,
		numRegisterFields,
		registerAction,
		catalogScreen,
	)
}

// handleRegisterResult обрабатывает результат регистрации.
// При успехе открывается экран входа с подставленным именем пользователя.
func (m *model) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.err = msg.err
		var vErr *auth.ValidationError
		if errors.As(msg.err, &vErr) {
			m.registerFocused = registerFieldFor(vErr)
		}
		return m, focusField(m.registerInputs, m.registerFocused)
	}

	resetInputs(m.registerInputs)
	focusField(m.registerInputs, -1)
	if msg.user != nil {
		m.loginInputs[loginFieldUsername].SetValue(msg.user.Username)
	}
	m.loginInputs[loginFieldPassword].Reset()
	cmd := m.openLogin(catalogScreen)
	m.loginSuccess = registerSuccessMessage
	return m, cmd
}

// registerFieldFor возвращает первое поле формы с ошибкой.
func registerFieldFor(vErr *auth.ValidationError) int {
	fields := []struct {
		name string
		idx  int
	}{
		{"FirstName", registerFieldFirstName},
		{"LastName", registerFieldLastName},
		{"Email", registerFieldEmail},
		{"Password", registerFieldPassword},
		{"ConfirmPassword", registerFieldConfirm},
	}
	for _, f := range fields {
		if vErr.Has(f.name) {
			return f.idx
		}
	}
	return registerFieldFirstName
}

// viewRegisterScreen отображает экран регистрации.
func (m *model) viewRegisterScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Crear cuenta") + "\n\n")
	b.WriteString(viewInputs(m.registerInputs))
	if m.submitting {
		b.WriteString("\n" + m.spinner.View() + " Registrando...\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	return b.String()
}
