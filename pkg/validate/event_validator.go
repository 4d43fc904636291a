package validate

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
)

// Проверка, что EventValidator удовлетворяет интерфейсу EventValidator.
var _ ports.EventValidator = (*EventValidator)(nil)

// ErrInvalidEvent — базовая (sentinel error) ошибка валидации события.
var ErrInvalidEvent = errors.New("product event validation failed")

const (
	maxTitleLen = 255
	maxImageLen = 2048
)

// EventValidator — валидация событий изменения товара.
type EventValidator struct{}

// NewEventValidator — конструктор EventValidator.
// Возвращает ErrInvalidEvent (с обёрнутой причиной) при любой проблеме.
func NewEventValidator() *EventValidator { return &EventValidator{} }

// Validate — проверяет обязательные поля в зависимости от типа события.
// Для title/image важно только наличие: пустая строка — допустимое значение.
// Ограничение длины совпадает с размерами колонок products, иначе запись всё равно не пройдёт.
func (v *EventValidator) Validate(event *domain.ChangeEvent) error {
	if event == nil {
		return fmt.Errorf("%w: событие не может быть nil", ErrInvalidEvent)
	}
	if event.EntityID <= 0 {
		return fmt.Errorf("%w: id должен быть положительным", ErrInvalidEvent)
	}
	if !event.Kind.RequiresPayload() {
		return nil
	}
	if err := validateText("title", event.Title, maxTitleLen); err != nil {
		return err
	}
	return validateText("image", event.Image, maxImageLen)
}

// validateText — поле обязательно и не длиннее limit символов.
func validateText(field string, value *string, limit int) error {
	if value == nil {
		return fmt.Errorf("%w: %s обязателен", ErrInvalidEvent, field)
	}
	if utf8.RuneCountInString(*value) > limit {
		return fmt.Errorf("%w: %s длиннее %d символов", ErrInvalidEvent, field, limit)
	}
	return nil
}
