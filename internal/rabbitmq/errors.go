package rabbitmq

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable — брокер недоступен по сети.
	ErrUnreachable = errors.New("broker unreachable")
	// ErrAuthRejected — брокер отклонил учётные данные или vhost.
	ErrAuthRejected = errors.New("broker rejected credentials")
	// ErrTopology — не удалось объявить exchange/очередь/привязку или выставить prefetch.
	ErrTopology = errors.New("topology declaration failed")

	// ErrChannelClosed — канал закрылся во время приёма сообщений.
	ErrChannelClosed = errors.New("channel closed")
	// ErrAlreadyStarted — повторный вызов Run.
	ErrAlreadyStarted = errors.New("consumer already started")
)

// ConnectErrorKind — причина неудачного старта сессии.
type ConnectErrorKind int

const (
	Unreachable ConnectErrorKind = iota + 1
	AuthRejected
	Topology
)

func (k ConnectErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case AuthRejected:
		return "auth_rejected"
	case Topology:
		return "topology"
	default:
		return "unknown"
	}
}

// ConnectError — ошибка Bootstrap. Фатальна для старта процесса, повторов внутри нет.
type ConnectError struct {
	Kind ConnectErrorKind
	Addr string // URL без пароля
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("rabbitmq %s: %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case AuthRejected:
		sentinel = ErrAuthRejected
	case Topology:
		sentinel = ErrTopology
	default:
		sentinel = ErrUnreachable
	}
	return []error{sentinel, e.Err}
}
