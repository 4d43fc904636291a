package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Gunvolt24/wb_products/internal/ports"
)

// topologyChannel — часть *amqp.Channel, нужная для объявления топологии.
type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
}

// Session — одно соединение и один канал на процесс. Создаётся Bootstrap,
// передаётся потребителю явно; канал использует только горутина-владелец.
type Session struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     ConsumerConfig

	closeOnce sync.Once
	closeErr  error
}

// Channel — канал сессии.
func (s *Session) Channel() *amqp.Channel { return s.channel }

// Config — нормализованная конфигурация, с которой поднята сессия.
func (s *Session) Config() ConsumerConfig { return s.cfg }

// Close — закрывает канал, затем соединение. Повторные вызовы возвращают первый результат.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.channel != nil && !s.channel.IsClosed() {
			if err := s.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				errs = append(errs, fmt.Errorf("close channel: %w", err))
			}
		}
		if s.conn != nil && !s.conn.IsClosed() {
			if err := s.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
				errs = append(errs, fmt.Errorf("close connection: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Bootstrap — подключается к брокеру, открывает канал, объявляет топологию
// и выставляет prefetch. Ошибки — *ConnectError; повторов нет.
func Bootstrap(ctx context.Context, cfg ConsumerConfig, log ports.Logger) (*Session, error) {
	return bootstrap(ctx, cfg, log, declareTopology)
}

// BootstrapPublisher — сессия продюсера: объявляется только exchange,
// очередь и prefetch остаются заботой потребителя.
func BootstrapPublisher(ctx context.Context, cfg ConsumerConfig, log ports.Logger) (*Session, error) {
	return bootstrap(ctx, cfg, log, declareExchange)
}

func bootstrap(
	ctx context.Context,
	cfg ConsumerConfig,
	log ports.Logger,
	declare func(topologyChannel, *ConsumerConfig) error,
) (*Session, error) {
	cfg.Normalize()
	addr := RedactURL(cfg.URL)

	if err := ctx.Err(); err != nil {
		return nil, &ConnectError{Kind: Unreachable, Addr: addr, Err: err}
	}

	conn, err := amqp.DialConfig(cfg.URL, cfg.amqpConfig())
	if err != nil {
		return nil, &ConnectError{Kind: classifyDialError(err), Addr: addr, Err: err}
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Kind: Unreachable, Addr: addr, Err: fmt.Errorf("open channel: %w", err)}
	}

	if err := declare(channel, &cfg); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, &ConnectError{Kind: Topology, Addr: addr, Err: err}
	}

	log.Infof(ctx, "rabbitmq session ready addr=%s exchange=%s queue=%s routing_key=%s prefetch=%d",
		addr, cfg.Exchange, cfg.Queue, cfg.RoutingKey, cfg.Prefetch)

	return &Session{conn: conn, channel: channel, cfg: cfg}, nil
}

// declareTopology — exchange (direct, durable), очередь (auto-delete), привязка, prefetch.
func declareTopology(ch topologyChannel, cfg *ConsumerConfig) error {
	if err := declareExchange(ch, cfg); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(cfg.Queue, false, true, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %q to %q key=%q: %w", cfg.Queue, cfg.Exchange, cfg.RoutingKey, err)
	}
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("qos prefetch=%d: %w", cfg.Prefetch, err)
	}
	return nil
}

func declareExchange(ch topologyChannel, cfg *ConsumerConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}
	return nil
}

// classifyDialError — отказ в доступе отличаем от сетевых проблем.
func classifyDialError(err error) ConnectErrorKind {
	var amqpErr *amqp.Error
	switch {
	case errors.Is(err, amqp.ErrCredentials), errors.Is(err, amqp.ErrSASL), errors.Is(err, amqp.ErrVhost):
		return AuthRejected
	case errors.As(err, &amqpErr) && amqpErr.Code == amqp.AccessRefused:
		return AuthRejected
	default:
		return Unreachable
	}
}
