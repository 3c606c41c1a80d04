package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/internal/auth"
	"github.com/ChilyGarcia/imagineapps-frontend/internal/events"
	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// Состояния (экраны) приложения.
type screenState int

const (
	catalogScreen       screenState = iota // Публичный каталог событий
	searchInputScreen                      // Ввод строки поиска
	dayInputScreen                         // Ввод конкретного дня
	detailScreen                           // Карточка события
	loginScreen                            // Вход
	registerScreen                         // Регистрация
	dashboardScreen                        // "Mis eventos"
	createScreen                           // Форма создания события
	deleteConfirmScreen                    // Подтверждение удаления
)

func (s screenState) String() string {
	switch s {
	case catalogScreen:
		return "catalog"
	case searchInputScreen:
		return "search"
	case dayInputScreen:
		return "day"
	case detailScreen:
		return "detail"
	case loginScreen:
		return "login"
	case registerScreen:
		return "register"
	case dashboardScreen:
		return "dashboard"
	case createScreen:
		return "create"
	case deleteConfirmScreen:
		return "delete_confirm"
	default:
		return "unknown"
	}
}

// Константы для TUI.
const (
	defaultListWidth  = 80
	defaultListHeight = 20
	inputWidthOffset  = 4

	keyEnter    = "enter"
	keyQuit     = "q"
	keyBack     = "b"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyUp       = "up"
	keyDown     = "down"
	keyLeft     = "left"
	keyRight    = "right"
	keyRefresh  = "ctrl+r"
)

// Поля формы входа.
const (
	loginFieldUsername = iota
	loginFieldPassword
	numLoginFields
)

// Поля формы регистрации.
const (
	registerFieldFirstName = iota
	registerFieldLastName
	registerFieldEmail
	registerFieldPassword
	registerFieldConfirm
	numRegisterFields
)

// Поля формы создания события. Последний индекс - выбор категории.
const (
	createFieldName = iota
	createFieldDescription
	createFieldLocation
	createFieldStartDate
	createFieldEndDate
	createFieldStartTime
	createFieldPrize
	numCreateInputs
	createFieldCategory = numCreateInputs
	numCreateFields     = numCreateInputs + 1
)

// Deps - зависимости TUI, собранные при запуске приложения.
type Deps struct {
	Session    *auth.Session
	Auth       *auth.Service
	Events     *events.Service
	Query      *events.Query
	Categories *events.CategoriesQuery
	Mapper     *events.Mapper
	Logger     zerolog.Logger
	Now        func() time.Time
}

// eventItem - элемент списка событий. Реализует list.Item.
type eventItem struct {
	event models.Event
	card  events.Card
}

func (i eventItem) Title() string {
	return i.card.Icon + " " + i.card.Name
}

func (i eventItem) Description() string {
	desc := i.card.Date + " · " + i.card.Time + " · " + i.card.Location + " · " + i.card.Price
	if i.card.Past {
		desc += " · finalizado"
	}
	return desc
}

func (i eventItem) FilterValue() string { return i.card.Name }

// Сообщения асинхронных команд.
type (
	sessionMountedMsg struct {
		snapshot auth.Snapshot
	}
	sessionChangedMsg struct {
		snapshot auth.Snapshot
	}
	loggedOutMsg        struct{}
	categoriesLoadedMsg struct {
		state events.CategoriesState
	}
	eventsLoadedMsg struct {
		ticket  events.Ticket
		state   events.QueryState
		applied bool
	}
	eventLoadedMsg struct {
		event *models.Event
		err   error
	}
	loginResultMsg struct {
		username string
		err      error
	}
	registerResultMsg struct {
		user *models.User
		err  error
	}
	mineLoadedMsg struct {
		events []models.Event
		err    error
	}
	eventCreatedMsg struct {
		event *models.Event
		err   error
	}
	eventDeletedMsg struct {
		id  int64
		err error
	}
	clearStatusMsg struct{}
)

// model представляет состояние TUI приложения.
type model struct {
	ctx    context.Context
	deps   Deps
	logger zerolog.Logger
	notify func(tea.Msg) // Отправка сообщений из обработчиков сессии (p.Send)

	state         screenState
	previousState screenState // Экран, с которого открыта карточка события
	afterLogin    screenState // Куда перейти после успешного входа
	session       auth.Snapshot
	status        string
	statusTimeout time.Duration
	err           error

	// Каталог
	selection   events.Selection
	categories  []models.Category
	post        events.PostFilter
	fetched     []models.Event // Ответ бэкенда до клиентских фильтров
	page        events.Page
	pageNumber  int
	loading     bool
	generation  uint64
	eventList   list.Model
	searchInput textinput.Model
	dayInput    textinput.Model
	dayErr      error

	// Карточка события
	selected      *models.Event
	detailLoading bool

	// Вход и регистрация
	loginInputs     []textinput.Model
	loginFocused    int
	loginSuccess    string
	registerInputs  []textinput.Model
	registerFocused int

	// Личный кабинет
	mine          []models.Event
	mineLoading   bool
	mineList      list.Model
	pendingDelete *models.Event

	// Создание события
	createInputs     []textinput.Model
	createFocused    int
	createCategory   int // Индекс в categories
	submitting       bool

	spinner     spinner.Model
	helpTextMap map[screenState]string
	docStyle    lipgloss.Style
	width       int
	height      int
}
