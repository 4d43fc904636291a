package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
	"github.com/Gunvolt24/wb_products/pkg/metrics"
)

// Проверка, что ProductService удовлетворяет порту read-API.
var _ ports.ProductReadService = (*ProductService)(nil)

var tracer = otel.Tracer("github.com/Gunvolt24/wb_products/internal/usecase")

// ProductService — прикладная логика работы с товарами (без знаний о транспорте).
type ProductService struct {
	repo  ports.ProductRepository // прямой доступ к хранилищу
	cache ports.ProductCache      // кэш read-API
	log   ports.Logger
}

// NewProductService — DI-конструктор.
func NewProductService(repo ports.ProductRepository, cache ports.ProductCache, log ports.Logger) *ProductService {
	return &ProductService{repo: repo, cache: cache, log: log}
}

// Apply — применить событие изменения товара к хранилищу:
//
//	created → Create(id, title, image)
//	updated → Update(id, title, image) по id, счётчик лайков не трогаем
//	deleted → Delete(id)
//
// Ошибка хранилища возвращается как *DispatchError и никогда не проглатывается.
// После успешной мутации запись в кэше инвалидируется.
func (s *ProductService) Apply(ctx context.Context, event domain.ChangeEvent) (err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Apply")
	span.SetAttributes(
		attribute.String("product.event", event.Kind.String()),
		attribute.Int64("product.id", event.EntityID),
	)
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.DispatchDuration.WithLabelValues(event.Kind.String(), result).Observe(time.Since(start).Seconds())
		span.End()
	}()

	switch event.Kind {
	case domain.KindCreated:
		err = s.repo.Create(ctx, event.EntityID, event.TitleValue(), event.ImageValue())
	case domain.KindUpdated:
		err = s.repo.Update(ctx, event.EntityID, event.TitleValue(), event.ImageValue(), nil)
	case domain.KindDeleted:
		err = s.repo.Delete(ctx, event.EntityID)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, event.Kind)
	}
	if err != nil {
		s.log.Errorf(ctx, "apply %s failed product_id=%d err=%v", event.Kind, event.EntityID, err)
		return &DispatchError{Kind: Storage, Event: event, Err: err}
	}

	s.cache.Invalidate(ctx, event.EntityID)
	s.log.Infof(ctx, "applied %s product_id=%d", event.Kind, event.EntityID)
	return nil
}

// GetProduct — сначала из кэша, при промахе — из БД с записью в кэш.
// Возвращает (nil, nil), если товара нет.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if product, found := s.cache.Get(ctx, id); found {
		s.log.Infof(ctx, "cache hit for product=%d", id)
		return product, nil
	}
	s.log.Infof(ctx, "cache miss for product=%d", id)

	start := time.Now()
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed product_id=%d err=%v", id, err)
		return nil, err
	}
	if product != nil {
		if setErr := s.cache.Set(ctx, product); setErr != nil {
			s.log.Warnf(ctx, "cache.Set failed product_id=%d err=%v", id, setErr)
		}
	}

	s.log.Infof(ctx, "db fetch product_id=%d took=%s", id, time.Since(start))
	return product, nil
}

// ListProducts — проксирование в репозиторий (пагинация уже валидирована на верхнем уровне).
func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return s.repo.GetAll(ctx, limit, offset)
}

// Like — инкремент счётчика лайков; кэш инвалидируется, чтобы чтение увидело новое значение.
func (s *ProductService) Like(ctx context.Context, id int64) (int, error) {
	likes, err := s.repo.Like(ctx, id)
	if err != nil {
		s.log.Warnf(ctx, "repo.Like failed product_id=%d err=%v", id, err)
		return 0, err
	}
	s.cache.Invalidate(ctx, id)
	return likes, nil
}
