package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focusField переносит фокус на поле idx. Индекс вне inputs снимает фокус со всех полей.
func focusField(inputs []textinput.Model, idx int) tea.Cmd {
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return textinput.Blink
}

// resetInputs очищает значения полей и ставит фокус на первое.
func resetInputs(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].Reset()
	}
	focusField(inputs, 0)
}

// inputValue возвращает значение поля без пробелов по краям.
func inputValue(inputs []textinput.Model, idx int) string {
	return strings.TrimSpace(inputs[idx].Value())
}

// handleFormKeys обрабатывает Tab, Shift+Tab, стрелки и Enter в форме из total полей.
// Поля с индексом >= len(inputs) не являются текстовыми (например, выбор из списка).
// Возвращает модель, команду и флаг, указывающий, была ли клавиша обработана.
func (m *model) handleFormKeys(
	keyMsg tea.KeyMsg,
	inputs []textinput.Model,
	focused *int,
	total int,
	onSubmit func() (tea.Model, tea.Cmd),
) (tea.Model, tea.Cmd, bool) {
	switch keyMsg.String() {
	case keyTab, keyDown:
		*focused = (*focused + 1) % total
		return m, focusField(inputs, *focused), true
	case keyShiftTab, keyUp:
		*focused = (*focused + total - 1) % total
		return m, focusField(inputs, *focused), true
	case keyEnter:
		if *focused < total-1 {
			*focused++
			return m, focusField(inputs, *focused), true
		}
		model, cmd := onSubmit()
		return model, cmd, true
	default:
		return m, nil, false
	}
}

// handleFormInput обрабатывает ввод в форме: Esc возвращает на previousState,
// навигация по полям делегируется handleFormKeys, остальное получает активное поле.
func (m *model) handleFormInput(
	msg tea.Msg,
	inputs []textinput.Model,
	focused *int,
	total int,
	onSubmit func() (tea.Model, tea.Cmd),
	previousState screenState,
) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == keyEsc {
			m.state = previousState
			m.err = nil
			focusField(inputs, -1)
			return m, tea.ClearScreen
		}
		newModel, keyCmd, handled := m.handleFormKeys(keyMsg, inputs, focused, total, onSubmit)
		if handled {
			return newModel, keyCmd
		}
	}

	if *focused < 0 || *focused >= len(inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	inputs[*focused], cmd = inputs[*focused].Update(msg)
	return m, cmd
}
