package ports

import "github.com/Gunvolt24/wb_products/internal/domain"

// EventValidator — проверка полей события. Чистая функция: без I/O и контекста.
type EventValidator interface {
	Validate(event *domain.ChangeEvent) error
}
