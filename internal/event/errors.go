package event

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload — тело не разбирается или не хватает обязательных полей.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnknownEventType — тег сообщения не соответствует ни одному типу события.
	ErrUnknownEventType = errors.New("unknown event type")
)

// ErrorKind — класс ошибки декодирования.
type ErrorKind int

const (
	MalformedPayload ErrorKind = iota + 1
	UnknownEventType
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedPayload:
		return "malformed_payload"
	case UnknownEventType:
		return "unknown_event_type"
	default:
		return "unknown"
	}
}

// DecodeError — ошибка декодирования сообщения.
// errors.Is срабатывает и на sentinel класса, и на исходную причину.
type DecodeError struct {
	Kind ErrorKind
	Tag  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %q: %s", e.Tag, e.sentinel())
	}
	return fmt.Sprintf("decode %q: %s: %v", e.Tag, e.sentinel(), e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *DecodeError) sentinel() error {
	if e.Kind == UnknownEventType {
		return ErrUnknownEventType
	}
	return ErrMalformedPayload
}

func malformed(tag string, err error) *DecodeError {
	return &DecodeError{Kind: MalformedPayload, Tag: tag, Err: err}
}
