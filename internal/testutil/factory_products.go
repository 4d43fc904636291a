package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"

	"github.com/Gunvolt24/wb_products/internal/domain"
)

var nextID atomic.Int64

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// NextProductID — уникальный id в пределах процесса тестов.
func NextProductID() int64 { return nextID.Add(1) }

// MakeProduct — мини-генератор валидного товара.
func MakeProduct(opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:    NextProductID(),
		Title: "product-" + UniqSuffix(),
		Image: "https://img.example/" + UniqSuffix() + ".png",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithID(id int64) func(*domain.Product) {
	return func(p *domain.Product) { p.ID = id }
}

func WithLikes(n int) func(*domain.Product) {
	return func(p *domain.Product) { p.Likes = n }
}
