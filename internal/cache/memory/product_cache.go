package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
	"github.com/Gunvolt24/wb_products/pkg/metrics"
)

var _ ports.ProductCache = (*ProductLRU)(nil)

type entry struct {
	id        int64
	product   domain.Product
	expiresAt time.Time
}

// ProductLRU — потокобезопасный LRU-кэш товаров с TTL (ttl <= 0 — без истечения).
// Наружу отдаются только копии.
type ProductLRU struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[int64]*list.Element

	mu sync.Mutex
}

func NewProductLRU(capacity int, ttl time.Duration) *ProductLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &ProductLRU{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[int64]*list.Element),
	}
}

// Get — при попадании продлевает TTL и поднимает запись в начало списка.
func (c *ProductLRU) Get(_ context.Context, id int64) (*domain.Product, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return nil, false
	}
	c.ll.MoveToFront(elem)
	ent.expiresAt = c.expiryFrom(now)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	product := ent.product
	return &product, true
}

func (c *ProductLRU) Set(_ context.Context, product *domain.Product) error {
	if product == nil || product.ID <= 0 {
		return nil
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[product.ID]; ok {
		ent := elem.Value.(*entry)
		ent.product = *product
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	c.index[product.ID] = c.ll.PushFront(&entry{
		id:        product.ID,
		product:   *product,
		expiresAt: c.expiryFrom(now),
	})
	metrics.CacheSize.Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	return nil
}

// Invalidate — удалить запись; отсутствие записи не ошибка.
func (c *ProductLRU) Invalidate(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[id]; ok {
		c.removeElement(elem)
		metrics.CacheOps.WithLabelValues("invalidated").Inc()
	}
}

// WarmUp — заполнить кэш списком товаров (например, первой страницей из БД при старте).
func (c *ProductLRU) WarmUp(ctx context.Context, products []*domain.Product) error {
	for _, product := range products {
		if err := c.Set(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// Len — текущее число записей.
func (c *ProductLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
