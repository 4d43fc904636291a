package ports

import "context"

// MessageConsumer — потребитель очереди: Run блокирует до отмены контекста, Close освобождает соединение.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
