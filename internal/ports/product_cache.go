package ports

import (
	"context"

	"github.com/Gunvolt24/wb_products/internal/domain"
)

// ProductCache — кэш товаров для read-API.
// Требования к реализации: потокобезопасность; возврат копий сущности.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*domain.Product, bool)
	Set(ctx context.Context, product *domain.Product) error
	// Invalidate — удалить запись (вызывается после каждой мутации).
	Invalidate(ctx context.Context, id int64)
}
