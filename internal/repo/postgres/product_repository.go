package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
)

// Проверка, что ProductRepository удовлетворяет интерфейсу ports.ProductRepository.
var _ ports.ProductRepository = (*ProductRepository)(nil)

const uniqueViolation = "23505"

// ProductRepository — реализация репозитория товаров на Postgres (pgxpool).
// Каждая мутация — отдельная транзакция: либо одно изменение, либо ни одного.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository — конструктор ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create — вставка нового товара с id из события. Повтор id → ports.ErrProductExists.
func (r *ProductRepository) Create(ctx context.Context, id int64, title, image string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, title, image, likes)
			VALUES ($1, $2, $3, 0)
		`, id, title, image)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert product id=%d: %w", id, ports.ErrProductExists)
		}
		if err != nil {
			return fmt.Errorf("insert product id=%d: %w", id, err)
		}
		return nil
	})
}

// Update — обновление по id. likes == nil — счётчик не меняется.
func (r *ProductRepository) Update(ctx context.Context, id int64, title, image string, likes *int) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET title = $2, image = $3, likes = COALESCE($4, likes)
			WHERE id = $1
		`, id, title, image, likes)
		if err != nil {
			return fmt.Errorf("update product id=%d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("update product id=%d: %w", id, ports.ErrProductNotFound)
		}
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete product id=%d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("delete product id=%d: %w", id, ports.ErrProductNotFound)
		}
		return nil
	})
}

// Like — атомарный инкремент, без транзакции (одна команда).
func (r *ProductRepository) Like(ctx context.Context, id int64) (int, error) {
	var likes int
	err := r.pool.QueryRow(ctx, `
		UPDATE products SET likes = likes + 1 WHERE id = $1 RETURNING likes
	`, id).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("like product id=%d: %w", id, ports.ErrProductNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("like product id=%d: %w", id, err)
	}
	return likes, nil
}

// GetAll — страница товаров по возрастанию id.
func (r *ProductRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, image, likes
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Image, &p.Likes); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return products, nil
}

// GetByID — получить товар по id. Если не нашли, возвращает (nil, nil).
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, image, likes FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Image, &p.Likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select product id=%d: %w", id, err)
	}
	return &p, nil
}

// inTx — выполняет fn в транзакции; ошибка fn откатывает изменения.
func (r *ProductRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	if err := fn(transaction); err != nil {
		return err
	}
	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
