package ports

import (
	"context"

	"github.com/Gunvolt24/wb_products/internal/domain"
)

// ProductReadService — сервис, которым пользуется HTTP-слой.
type ProductReadService interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	Like(ctx context.Context, id int64) (int, error)
}
