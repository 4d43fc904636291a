package rabbitmq

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/event"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newMessageID — монотонный ULID: сортируется по времени публикации.
func newMessageID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher — отправка событий изменения товара в exchange сервиса.
// Тип события передаётся в ContentType, тело — JSON.
type Publisher struct {
	channel    publishChannel
	exchange   string
	routingKey string
	appID      string
}

// NewPublisher — публикует через канал сессии в её exchange с её ключом маршрутизации.
func NewPublisher(session *Session) *Publisher {
	cfg := session.Config()
	return newPublisher(session.Channel(), cfg.Exchange, cfg.RoutingKey, cfg.ConnectionName)
}

func newPublisher(channel publishChannel, exchange, routingKey, appID string) *Publisher {
	return &Publisher{channel: channel, exchange: exchange, routingKey: routingKey, appID: appID}
}

// Publish — отправляет событие; возвращает MessageId опубликованного сообщения.
func (p *Publisher) Publish(ctx context.Context, ev domain.ChangeEvent) (string, error) {
	body, tag, err := event.Encode(ev)
	if err != nil {
		return "", fmt.Errorf("encode %s id=%d: %w", ev.Kind, ev.EntityID, err)
	}

	msg := amqp.Publishing{
		ContentType:  tag,
		DeliveryMode: amqp.Persistent,
		MessageId:    newMessageID(),
		Timestamp:    time.Now().UTC(),
		AppId:        p.appID,
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return "", fmt.Errorf("publish %s id=%d: %w", ev.Kind, ev.EntityID, err)
	}
	return msg.MessageId, nil
}
