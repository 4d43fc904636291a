//go:build integration

package testutil

import (
	"context"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// UniqueQueue — уникальное имя очереди на основе базового префикса.
// Пример: base="products-itest" → "products-itest-20250826T010203123456789".
func UniqueQueue(base string) string {
	s := time.Now().UTC().Format("20060102T150405.000000000")
	s = strings.ReplaceAll(s, ".", "")
	return fmt.Sprintf("%s-%s", base, s)
}

// WaitQueueConsumers — ждёт, пока у очереди появится хотя бы n консьюмеров.
// Очередь объявляет сам потребитель, поэтому публиковать раньше бессмысленно:
// сообщение без привязанной очереди брокер отбросит.
func WaitQueueConsumers(ctx context.Context, amqpURL, queue string, n int) error {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Пассивное объявление закрывает канал при отсутствии очереди,
		// поэтому на каждую попытку — свой канал.
		ch, err := conn.Channel()
		if err != nil {
			return err
		}
		q, qerr := ch.QueueDeclarePassive(queue, false, true, false, false, nil)
		_ = ch.Close()
		if qerr == nil && q.Consumers >= n {
			return nil
		}

		if time.Now().After(deadline) {
			if qerr != nil {
				return fmt.Errorf("queue %q not ready: %w", queue, qerr)
			}
			return fmt.Errorf("queue %q has %d consumers, want %d", queue, q.Consumers, n)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
