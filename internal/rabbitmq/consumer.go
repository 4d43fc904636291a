package rabbitmq

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
	"github.com/Gunvolt24/wb_products/pkg/ctxmeta"
	"github.com/Gunvolt24/wb_products/pkg/metrics"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// deliveryChannel — методы *amqp.Channel, которые использует цикл приёма.
// Все вызовы делает только горутина Run.
type deliveryChannel interface {
	ackChannel
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	Reject(tag uint64, requeue bool) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
}

// eventDecoder — разбор тела и тега сообщения в событие.
type eventDecoder interface {
	Decode(body []byte, typeTag string) (domain.ChangeEvent, error)
}

// eventHandler — применение события к хранилищу (usecase).
type eventHandler interface {
	Apply(ctx context.Context, event domain.ChangeEvent) error
}

// State — состояние цикла приёма.
type State int32

const (
	StateIdle State = iota
	StateReceiving
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Consumer — цикл приёма сообщений из очереди.
//
// Горутина Run единолично владеет каналом: получает доставки, запускает задачу
// на каждое сообщение и выполняет подтверждения, которые задачи присылают через acks.
// Подтверждение отправляется только после успешного Apply; ошибки оставляют
// сообщение неподтверждённым, и брокер доставит его повторно.
type Consumer struct {
	channel deliveryChannel
	closer  io.Closer
	cfg     ConsumerConfig
	decoder eventDecoder
	handler eventHandler
	log     ports.Logger

	acks    chan ackRequest // задачи → владелец канала
	stopped chan struct{}   // закрывается, когда владелец больше не принимает запросы

	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight map[uint64]*task
	order    entityQueue

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// NewConsumer — потребитель поверх готовой сессии. Сессия закрывается, когда Run завершится, или в Close.
func NewConsumer(session *Session, decoder eventDecoder, handler eventHandler, log ports.Logger) *Consumer {
	return newConsumer(session.Channel(), session, session.Config(), decoder, handler, log)
}

func newConsumer(
	channel deliveryChannel,
	closer io.Closer,
	cfg ConsumerConfig,
	decoder eventDecoder,
	handler eventHandler,
	log ports.Logger,
) *Consumer {
	cfg.Normalize()
	return &Consumer{
		channel:  channel,
		closer:   closer,
		cfg:      cfg,
		decoder:  decoder,
		handler:  handler,
		log:      log,
		acks:     make(chan ackRequest),
		stopped:  make(chan struct{}),
		inFlight: make(map[uint64]*task),
		order:    entityQueue{tails: make(map[int64]chan struct{})},
	}
}

// Run — основной цикл. Блокирует до отмены ctx (возвращает ctx.Err() после дренажа)
// или до закрытия канала (возвращает ошибку, переподключение — забота супервизора).
func (c *Consumer) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateReceiving)) {
		return ErrAlreadyStarted
	}

	deliveries, err := c.channel.Consume(c.cfg.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		c.state.Store(int32(StateStopped))
		close(c.stopped)
		return fmt.Errorf("consume queue=%s: %w", c.cfg.Queue, err)
	}
	closed := c.channel.NotifyClose(make(chan *amqp.Error, 1))

	c.log.Infof(ctx, "rabbitmq consumer started queue=%s consumer_tag=%s prefetch=%d",
		c.cfg.Queue, c.cfg.ConsumerTag, c.cfg.Prefetch)

	for {
		select {
		case <-ctx.Done():
			c.log.Infof(ctx, "rabbitmq consumer stopping: %v (in_flight=%d)", ctx.Err(), c.InFlight())
			c.drain(ctx, deliveries, true)
			return ctx.Err()

		case amqpErr := <-closed:
			c.log.Errorf(ctx, "rabbitmq channel closed: %v (in_flight=%d)", amqpErr, c.InFlight())
			c.drain(ctx, deliveries, false)
			return fmt.Errorf("%w: %v", ErrChannelClosed, amqpErr)

		case d, ok := <-deliveries:
			if !ok {
				c.log.Errorf(ctx, "rabbitmq delivery stream closed queue=%s", c.cfg.Queue)
				c.drain(ctx, nil, false)
				return fmt.Errorf("%w: delivery stream ended", ErrChannelClosed)
			}
			c.receive(ctx, &d)

		case req := <-c.acks:
			c.complete(ctx, req)
		}
	}
}

// Close — закрывает сессию. Безопасен для повторного вызова и вызова после Run.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closeErr = c.closer.Close()
		}
	})
	return c.closeErr
}

// State — текущее состояние цикла.
func (c *Consumer) State() State { return State(c.state.Load()) }

// InFlight — сколько сообщений сейчас в обработке.
func (c *Consumer) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inFlight)
}

// receive — декодирует доставку и запускает задачу. Выполняется горутиной-владельцем.
func (c *Consumer) receive(ctx context.Context, d *amqp.Delivery) {
	metrics.RabbitDeliveriesReceived.WithLabelValues(c.cfg.Queue).Inc()

	event, err := c.decoder.Decode(d.Body, d.ContentType)
	if err != nil {
		c.rejectUndecodable(ctx, d, err)
		return
	}

	t := &task{
		tag:   d.DeliveryTag,
		event: event,
		done:  make(chan struct{}),
	}
	// События одного товара применяются в порядке доставки.
	t.prev = c.order.enqueue(event.EntityID, t.done)
	c.track(t)

	c.wg.Add(1)
	go c.process(ctx, t)
}

// rejectUndecodable — сообщение, которое невозможно разобрать: по умолчанию остаётся
// неподтверждённым, с RejectMalformed отклоняется без повторной доставки.
func (c *Consumer) rejectUndecodable(ctx context.Context, d *amqp.Delivery, err error) {
	if !c.cfg.RejectMalformed || c.channel.IsClosed() {
		metrics.RabbitDeliveriesFailed.WithLabelValues(c.cfg.Queue, "decode").Inc()
		c.log.Warnf(ctx, "decode failed content_type=%q delivery_tag=%d message_id=%s: %v (left unacked)",
			d.ContentType, d.DeliveryTag, d.MessageId, err)
		return
	}
	if rejErr := c.channel.Reject(d.DeliveryTag, false); rejErr != nil {
		c.log.Errorf(ctx, "reject failed delivery_tag=%d: %v", d.DeliveryTag, rejErr)
	}
	metrics.RabbitDeliveriesFailed.WithLabelValues(c.cfg.Queue, "rejected").Inc()
	c.log.Warnf(ctx, "decode failed content_type=%q delivery_tag=%d message_id=%s: %v (rejected)",
		d.ContentType, d.DeliveryTag, d.MessageId, err)
}

// complete — обработка результата задачи на стороне владельца канала.
func (c *Consumer) complete(ctx context.Context, req ackRequest) {
	t := req.task
	c.untrack(t)
	c.order.release(t.event.EntityID, t.done)
	ctx = ctxmeta.WithDeliveryTag(ctx, t.tag)

	if req.err != nil {
		metrics.RabbitDeliveriesFailed.WithLabelValues(c.cfg.Queue, failureReason(req.err)).Inc()
		c.log.Errorf(ctx, "dispatch failed kind=%s product_id=%d delivery_tag=%d: %v (left unacked)",
			t.event.Kind, t.event.EntityID, t.tag, req.err)
		return
	}

	outcome, err := acknowledge(c.channel, t.tag)
	switch {
	case err != nil:
		metrics.RabbitDeliveriesFailed.WithLabelValues(c.cfg.Queue, "ack").Inc()
		c.log.Errorf(ctx, "ack failed delivery_tag=%d: %v", t.tag, err)
	case outcome == SkippedClosed:
		metrics.RabbitAcksSkipped.WithLabelValues(c.cfg.Queue).Inc()
		c.log.Warnf(ctx, "ack skipped, channel closed delivery_tag=%d (broker will redeliver)", t.tag)
	default:
		metrics.RabbitDeliveriesAcked.WithLabelValues(c.cfg.Queue).Inc()
	}
}

// drain — прекращаем приём новых сообщений и ждём незавершённые задачи
// (не дольше DrainTimeout), продолжая выполнять их подтверждения. Затем закрываем сессию.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery, cancelConsumer bool) {
	c.state.Store(int32(StateDraining))

	if cancelConsumer && !c.channel.IsClosed() {
		if err := c.channel.Cancel(c.cfg.ConsumerTag, false); err != nil {
			c.log.Warnf(ctx, "cancel consumer_tag=%s: %v", c.cfg.ConsumerTag, err)
		}
	}

	allDone := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(allDone)
	}()

	timer := time.NewTimer(c.cfg.DrainTimeout)
	defer timer.Stop()

loop:
	for {
		select {
		case req := <-c.acks:
			c.complete(ctx, req)
		case d, ok := <-deliveries:
			if !ok {
				deliveries = nil
				continue
			}
			// Пришло до того, как брокер обработал Cancel: не берём в работу,
			// после закрытия канала сообщение вернётся в очередь.
			c.log.Infof(ctx, "late delivery skipped delivery_tag=%d (will be redelivered)", d.DeliveryTag)
		case <-allDone:
			break loop
		case <-timer.C:
			c.log.Warnf(ctx, "drain timeout %s exceeded, in_flight=%d left unacked", c.cfg.DrainTimeout, c.InFlight())
			break loop
		}
	}

	close(c.stopped)
	c.state.Store(int32(StateStopped))
	if err := c.Close(); err != nil {
		c.log.Warnf(ctx, "close rabbitmq session: %v", err)
	}
	c.log.Infof(ctx, "rabbitmq consumer stopped queue=%s", c.cfg.Queue)
}

func (c *Consumer) track(t *task) {
	c.mu.Lock()
	c.inFlight[t.tag] = t
	c.mu.Unlock()
	metrics.RabbitInFlight.Inc()
}

func (c *Consumer) untrack(t *task) {
	c.mu.Lock()
	delete(c.inFlight, t.tag)
	c.mu.Unlock()
	metrics.RabbitInFlight.Dec()
}
