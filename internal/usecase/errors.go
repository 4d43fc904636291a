package usecase

import (
	"errors"
	"fmt"

	"github.com/Gunvolt24/wb_products/internal/domain"
)

var (
	// ErrStorage — хранилище не смогло применить событие (ограничение, соединение, отсутствие записи).
	ErrStorage = errors.New("storage failure")
	// ErrUnsupportedEvent — у события нет обработчика.
	ErrUnsupportedEvent = errors.New("unsupported event kind")
)

// DispatchErrorKind — класс ошибки применения события.
type DispatchErrorKind int

const (
	Storage DispatchErrorKind = iota + 1
)

// DispatchError — событие не применено; ноль изменений в хранилище.
type DispatchError struct {
	Kind  DispatchErrorKind
	Event domain.ChangeEvent
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s id=%d: %v: %v", e.Event.Kind, e.Event.EntityID, ErrStorage, e.Err)
}

func (e *DispatchError) Unwrap() []error { return []error{ErrStorage, e.Err} }
