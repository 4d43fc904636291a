// Пакет ctxmeta — нейтральный слой для работы с метаданными запроса,
// которые прокидываются через context.Context (request_id, trace_id и т.д.).
// Идея: HTTP-слой и логгер зависят от небольшого общего пакета, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемые типы — чтобы избежать коллизий).
	KeyRequestID   ctxKey = "request_id"
	KeyDeliveryTag ctxKey = "delivery_tag"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDeliveryTag кладёт тег доставки RabbitMQ в контекст (0 — ничего не делает).
func WithDeliveryTag(ctx context.Context, tag uint64) context.Context {
	if ctx == nil || tag == 0 {
		return ctx
	}
	return context.WithValue(ctx, KeyDeliveryTag, tag)
}

// DeliveryTagFromContext достаёт тег доставки из контекста.
func DeliveryTagFromContext(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	if v, ok := ctx.Value(KeyDeliveryTag).(uint64); ok && v != 0 {
		return v, true
	}
	return 0, false
}
