package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
)

// Константы, используемые при инициализации.
const (
	initTextCharLimit     = 256
	initLongTextCharLimit = 2000
	initPasswordCharLimit = 128
	initInputWidth        = 50
	initDateCharLimit     = 64

	docStyleMarginVertical   = 1
	docStyleMarginHorizontal = 2
)

// newModel создает модель и подписывается на изменения сессии.
func newModel(ctx context.Context, deps Deps) *model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &model{
		ctx:            ctx,
		deps:           deps,
		logger:         deps.Logger.With().Str("component", "tui").Logger(),
		notify:         func(tea.Msg) {},
		state:          catalogScreen,
		previousState:  catalogScreen,
		afterLogin:     catalogScreen,
		statusTimeout:  statusMessageTimeout,
		session:        deps.Session.Snapshot(),
		selection:      events.Selection{Category: events.AllLabel, Bucket: events.BucketAll},
		pageNumber:     1,
		loading:        true,
		eventList:      initEventList("Eventos"),
		mineList:       initEventList("Mis eventos"),
		searchInput:    initSearchInput(),
		dayInput:       initDayInput(),
		loginInputs:    initLoginInputs(),
		registerInputs: initRegisterInputs(),
		createInputs:   initCreateInputs(),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		helpTextMap:    initHelpTextMap(),
		docStyle:       lipgloss.NewStyle().Margin(docStyleMarginVertical, docStyleMarginHorizontal),
	}

	// Обработчики вызываются из горутин команд, поэтому только пересылают сообщения.
	deps.Session.Subscribe(func(s auth.Snapshot) {
		m.notify(sessionChangedMsg{snapshot: s})
	})
	deps.Session.OnLogout(func() {
		m.notify(loggedOutMsg{})
	})
	return m
}

// initEventList инициализирует список событий.
func initEventList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(lipgloss.Color("252"))
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(lipgloss.Color("245"))
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("212")).
		BorderLeftForeground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("240")).
		BorderLeftForeground(lipgloss.Color("212"))

	l := list.New([]list.Item{}, delegate, defaultListWidth, defaultListHeight)
	l.Title = title
	l.SetShowHelp(false) // Справка своя
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = list.DefaultStyles().Title.Bold(true)
	return l
}

func newInput(placeholder string, charLimit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = initInputWidth
	return ti
}

func newPasswordInput(placeholder string) textinput.Model {
	ti := newInput(placeholder, initPasswordCharLimit)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

func initSearchInput() textinput.Model {
	return newInput("Buscar eventos por nombre...", initTextCharLimit)
}

func initDayInput() textinput.Model {
	return newInput("AAAA-MM-DD, \"mañana\", \"15 de julio\"...", initDateCharLimit)
}

// initLoginInputs инициализирует поля входа: имя пользователя и пароль.
func initLoginInputs() []textinput.Model {
	inputs := make([]textinput.Model, numLoginFields)
	inputs[loginFieldUsername] = newInput("Usuario", initTextCharLimit)
	inputs[loginFieldPassword] = newPasswordInput("Contraseña")
	return inputs
}

// initRegisterInputs инициализирует поля регистрации.
func initRegisterInputs() []textinput.Model {
	inputs := make([]textinput.Model, numRegisterFields)
	inputs[registerFieldFirstName] = newInput("Nombre (Juan)", initTextCharLimit)
	inputs[registerFieldLastName] = newInput("Apellido (Pérez)", initTextCharLimit)
	inputs[registerFieldEmail] = newInput("Correo electrónico", initTextCharLimit)
	inputs[registerFieldPassword] = newPasswordInput("Contraseña (mínimo 6 caracteres)")
	inputs[registerFieldConfirm] = newPasswordInput("Confirmar contraseña")
	return inputs
}

// initCreateInputs инициализирует текстовые поля формы создания события.
func initCreateInputs() []textinput.Model {
	inputs := make([]textinput.Model, numCreateInputs)
	inputs[createFieldName] = newInput("Nombre del evento", initTextCharLimit)
	inputs[createFieldDescription] = newInput("Descripción", initLongTextCharLimit)
	inputs[createFieldLocation] = newInput("Ubicación", initTextCharLimit)
	inputs[createFieldStartDate] = newInput("Fecha de inicio (AAAA-MM-DD)", initDateCharLimit)
	inputs[createFieldEndDate] = newInput("Fecha de fin (opcional)", initDateCharLimit)
	inputs[createFieldStartTime] = newInput("Hora de inicio HH:MM (opcional)", initDateCharLimit)
	inputs[createFieldPrize] = newInput("Precio (vacío = Gratuito)", initDateCharLimit)
	return inputs
}

// initHelpTextMap возвращает строки подсказок для экранов.
func initHelpTextMap() map[screenState]string {
	return map[screenState]string{
		catalogScreen: "↑/↓: mover | enter: detalle | c: categoría | d: fecha | f: día | /: buscar | " +
			"r: limpiar | n/p: página | m: mis eventos | l: entrar | g: registrarse | q: salir",
		searchInputScreen:   "enter: aplicar | esc: cancelar",
		dayInputScreen:      "enter: aplicar | esc: cancelar",
		detailScreen:        "esc/b: volver | q: salir",
		loginScreen:         "tab: siguiente campo | enter: entrar | ctrl+g: registrarse | esc: volver",
		registerScreen:      "tab: siguiente campo | enter: registrarse | esc: volver",
		dashboardScreen:     "↑/↓: mover | enter: detalle | a: crear | x: eliminar | ctrl+r: recargar | o: cerrar sesión | esc: catálogo",
		createScreen:        "tab: siguiente campo | ←/→: categoría | enter: guardar | esc: cancelar",
		deleteConfirmScreen: "y/enter: eliminar | n/esc: cancelar",
	}
}
