package ports

import (
	"context"
	"errors"

	"github.com/Gunvolt24/wb_products/internal/domain"
)

var (
	// ErrProductNotFound — изменяемой записи нет в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists — товар с таким id уже создан.
	ErrProductExists = errors.New("product already exists")
)

// ProductRepository — хранилище товаров. Каждая мутация выполняется в собственной транзакции.
type ProductRepository interface {
	Create(ctx context.Context, id int64, title, image string) error
	// Update — обновление по id; likes == nil оставляет счётчик без изменений.
	Update(ctx context.Context, id int64, title, image string, likes *int) error
	Delete(ctx context.Context, id int64) error
	// Like — атомарный инкремент счётчика, возвращает новое значение.
	Like(ctx context.Context, id int64) (int, error)
	GetAll(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	// GetByID — (nil, nil), если записи нет.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}
