package rabbitmq

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AckOutcome — результат попытки подтверждения.
type AckOutcome int

const (
	Acked AckOutcome = iota + 1
	// SkippedClosed — канал закрыт: брокер сам доставит сообщение повторно.
	SkippedClosed
)

func (o AckOutcome) String() string {
	switch o {
	case Acked:
		return "acked"
	case SkippedClosed:
		return "skipped_closed"
	default:
		return "unknown"
	}
}

type ackChannel interface {
	IsClosed() bool
	Ack(tag uint64, multiple bool) error
}

// acknowledge — подтверждает одну доставку, только если канал ещё открыт.
// Вызывается только горутиной, владеющей каналом, и не более одного раза на тег.
func acknowledge(ch ackChannel, tag uint64) (AckOutcome, error) {
	if ch.IsClosed() {
		return SkippedClosed, nil
	}
	if err := ch.Ack(tag, false); err != nil {
		// Канал мог закрыться между проверкой и Ack.
		if ch.IsClosed() || errors.Is(err, amqp.ErrClosed) {
			return SkippedClosed, nil
		}
		return 0, fmt.Errorf("ack delivery_tag=%d: %w", tag, err)
	}
	return Acked, nil
}
