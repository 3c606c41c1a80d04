package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const registerSuccessMessage = "Registro exitoso. Ahora puedes iniciar sesión con tus credenciales."

// openLogin открывает экран входа. После входа выполняется переход на next.
func (m *model) openLogin(next screenState) tea.Cmd {
	m.state = loginScreen
	m.afterLogin = next
	m.err = nil
	m.loginFocused = loginFieldUsername
	if inputValue(m.loginInputs, loginFieldUsername) != "" {
		m.loginFocused = loginFieldPassword
	}
	return tea.Batch(focusField(m.loginInputs, m.loginFocused), tea.ClearScreen)
}

// updateLoginScreen обрабатывает ввод данных для входа.
func (m *model) updateLoginScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+g" {
		return m, m.openRegister()
	}

	loginAction := func() (tea.Model, tea.Cmd) {
		username := inputValue(m.loginInputs, loginFieldUsername)
		password := m.loginInputs[loginFieldPassword].Value()
		if username == "" || password == "" {
			m.err = errEmptyCredentials
			return m, nil
		}
		m.err = nil
		m.loginSuccess = ""
		m.session.Loading = true
		return m, tea.Batch(m.loginCmd(username, password), m.spinner.Tick)
	}

	return m.handleFormInput(
		msg,
		m.loginInputs,
		&m.loginFocused,
		numLoginFields,
		loginAction,
		catalogScreen,
	)
}

// handleLoginResult обрабатывает результат входа.
func (m *model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.session.Loading = false
	if msg.err != nil {
		m.err = msg.err
		m.loginInputs[loginFieldPassword].Reset()
		return m, focusField(m.loginInputs, m.loginFocused)
	}

	m.err = nil
	m.loginSuccess = ""
	resetInputs(m.loginInputs)
	focusField(m.loginInputs, -1)
	m.session = m.deps.Session.Snapshot()
	m.logger.Info().Str("username", msg.username).Msg("Вход выполнен из TUI")

	next := m.afterLogin
	m.afterLogin = catalogScreen
	if next == dashboardScreen {
		_, statusCmd := m.setStatusMessage("¡Bienvenido, " + msg.username + "!")
		return m, tea.Batch(m.openDashboard(), statusCmd)
	}
	m.state = next
	return m.setStatusMessage("¡Bienvenido, " + msg.username + "!")
}

// viewLoginScreen отображает экран входа.
func (m *model) viewLoginScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Iniciar sesión") + "\n\n")
	if m.loginSuccess != "" {
		b.WriteString(successStyle.Render(m.loginSuccess) + "\n\n")
	}
	b.WriteString(viewInputs(m.loginInputs))
	if m.session.Loading {
		b.WriteString("\n" + m.spinner.View() + " Iniciando sesión...\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("¿No tienes cuenta? ") + focusedStyle.Render("(ctrl+g)") + "\n")
	return b.String()
}

// viewInputs отображает поля формы по одному на строке.
func viewInputs(inputs []textinput.Model) string {
	var b strings.Builder
	for i := range inputs {
		b.WriteString(inputs[i].View() + "\n")
	}
	return b.String()
}
