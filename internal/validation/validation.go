// Package validation оборачивает go-playground/validator и переводит
// ошибки полей в сообщения для пользователя.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error - ошибка проверки формы до отправки запроса.
type Error struct {
	// Fields и Messages идут парами в порядке проверки полей.
	Fields   []string
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Has сообщает, относится ли ошибка к указанному полю.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Messages - перевод пары "Поле.тег" в сообщение для пользователя.
type Messages map[string]string

// Validator проверяет структуры по тегам validate.
type Validator struct {
	validate *validator.Validate
	messages Messages
}

// New создает валидатор с набором сообщений.
func New(messages Messages) *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		messages: messages,
	}
}

// RegisterValidation добавляет собственный тег проверки.
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

// Struct проверяет структуру и возвращает *Error или nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("ошибка проверки формы: %w", err)
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		key := fe.StructField() + "." + fe.Tag()
		msg, ok := v.messages[key]
		if !ok {
			msg = fmt.Sprintf("%s: %s", fe.StructField(), fe.Tag())
		}
		out.Fields = append(out.Fields, fe.StructField())
		out.Messages = append(out.Messages, msg)
	}
	return out
}
