package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/pkg/ctxmeta"
)

var (
	errTaskPanic     = errors.New("dispatch panicked")
	errTaskAbandoned = errors.New("consumer stopped before dispatch")
)

// task — одно сообщение в обработке.
type task struct {
	tag   uint64
	event domain.ChangeEvent
	prev  chan struct{} // done предыдущей задачи того же товара, nil — очереди нет
	done  chan struct{} // закрывается после Apply
}

// ackRequest — результат задачи, который выполняет владелец канала.
type ackRequest struct {
	task *task
	err  error
}

// process — тело задачи: дождаться предыдущего события того же товара,
// применить событие и передать результат владельцу канала.
func (c *Consumer) process(base context.Context, t *task) {
	defer c.wg.Done()

	// Отмена Run не прерывает уже начатую запись: дренаж дожидается её.
	ctx := ctxmeta.WithDeliveryTag(context.WithoutCancel(base), t.tag)
	err := c.dispatch(ctx, t)

	select {
	case c.acks <- ackRequest{task: t, err: err}:
	case <-c.stopped:
	}
}

func (c *Consumer) dispatch(ctx context.Context, t *task) (err error) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errTaskPanic, r)
		}
	}()

	if t.prev != nil {
		select {
		case <-t.prev:
		case <-c.stopped:
			return errTaskAbandoned
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProcessTimeout)
	defer cancel()
	return c.handler.Apply(ctx, t.event)
}

// entityQueue — хвосты очередей по id товара. Используется только горутиной-владельцем.
type entityQueue struct {
	tails map[int64]chan struct{}
}

// enqueue — ставит done в хвост очереди товара и возвращает предыдущий хвост.
func (q *entityQueue) enqueue(id int64, done chan struct{}) chan struct{} {
	prev := q.tails[id]
	q.tails[id] = done
	return prev
}

// release — убирает очередь товара, если завершилась её последняя задача.
func (q *entityQueue) release(id int64, done chan struct{}) {
	if q.tails[id] == done {
		delete(q.tails, id)
	}
}

func (q *entityQueue) len() int { return len(q.tails) }

func failureReason(err error) string {
	switch {
	case errors.Is(err, errTaskPanic):
		return "panic"
	case errors.Is(err, errTaskAbandoned):
		return "abandoned"
	default:
		return "dispatch"
	}
}
