//go:build integration

package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/wb_products/internal/cache/memory"
	"github.com/Gunvolt24/wb_products/internal/domain"
	pgrepo "github.com/Gunvolt24/wb_products/internal/repo/postgres"
	"github.com/Gunvolt24/wb_products/internal/testutil"
	rest "github.com/Gunvolt24/wb_products/internal/transport/http"
	"github.com/Gunvolt24/wb_products/internal/usecase"
	"github.com/Gunvolt24/wb_products/pkg/logger"
)

type stack struct {
	repo *pgrepo.ProductRepository
	ts   *httptest.Server
}

// startStack — Postgres в контейнере, миграции, сервис и HTTP-сервер.
func startStack(t *testing.T, ctx context.Context) *stack {
	t.Helper()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	repo := pgrepo.NewProductRepository(pg.Pool)
	svc := usecase.NewProductService(repo, cachemem.NewProductLRU(100, time.Minute), logg)

	h := rest.NewHandler(svc, logg, 2*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, ""))
	t.Cleanup(ts.Close)

	return &stack{repo: repo, ts: ts}
}

// 1) GET /api/products/:id — 200, затем 404 для несуществующего id
func TestHTTP_GetProduct_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	s := startStack(t, ctx)

	p := testutil.MakeProduct()
	require.NoError(t, s.repo.Create(ctx, p.ID, p.Title, p.Image))

	resp, err := http.Get(fmt.Sprintf("%s/api/products/%d", s.ts.URL, p.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, p.Title, got.Title)
	require.Zero(t, got.Likes)

	resp404, err := http.Get(s.ts.URL + "/api/products/999999")
	require.NoError(t, err)
	defer resp404.Body.Close()
	require.Equal(t, http.StatusNotFound, resp404.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp404.Body).Decode(&body))
	require.Equal(t, "product not found", body["error"])
}

// 2) GET /api/products — 404 на пустой таблице, затем пагинация
func TestHTTP_ListProducts_Pagination_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	s := startStack(t, ctx)

	resp, err := http.Get(s.ts.URL + "/api/products")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	for i := 0; i < 4; i++ {
		p := testutil.MakeProduct()
		require.NoError(t, s.repo.Create(ctx, p.ID, p.Title, p.Image))
	}

	respPage, err := http.Get(s.ts.URL + "/api/products?limit=2&offset=1")
	require.NoError(t, err)
	defer respPage.Body.Close()
	require.Equal(t, http.StatusOK, respPage.StatusCode)

	var got []domain.Product
	require.NoError(t, json.NewDecoder(respPage.Body).Decode(&got))
	require.Len(t, got, 2)
	require.Less(t, got[0].ID, got[1].ID)
}

// 3) POST /api/products/:id/like — счётчик растёт, чтение видит новое значение
func TestHTTP_Like_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	s := startStack(t, ctx)

	p := testutil.MakeProduct()
	require.NoError(t, s.repo.Create(ctx, p.ID, p.Title, p.Image))
	url := fmt.Sprintf("%s/api/products/%d", s.ts.URL, p.ID)

	// прогреваем кэш чтением
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()

	for i := 1; i <= 2; i++ {
		respLike, err := http.Post(url+"/like", "application/json", http.NoBody)
		require.NoError(t, err)
		var liked struct {
			Likes int `json:"likes"`
		}
		require.NoError(t, json.NewDecoder(respLike.Body).Decode(&liked))
		respLike.Body.Close()
		require.Equal(t, http.StatusOK, respLike.StatusCode)
		require.Equal(t, i, liked.Likes)
	}

	respGet, err := http.Get(url)
	require.NoError(t, err)
	defer respGet.Body.Close()
	var got domain.Product
	require.NoError(t, json.NewDecoder(respGet.Body).Decode(&got))
	require.Equal(t, 2, got.Likes)

	respMissing, err := http.Post(s.ts.URL+"/api/products/999999/like", "application/json", http.NoBody)
	require.NoError(t, err)
	respMissing.Body.Close()
	require.Equal(t, http.StatusNotFound, respMissing.StatusCode)
}

// 4) /ping, /metrics, 404 и 405
func TestHTTP_Health_Metrics_And_Errors_TC(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	h := rest.NewHandler(noOpService{}, logg, 2*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, ""))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pong", string(readAll(t, resp.Body)))

	respM, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer respM.Body.Close()
	require.Equal(t, http.StatusOK, respM.StatusCode)
	require.NotEmpty(t, readAll(t, respM.Body))

	resp404, err := http.Get(ts.URL + "/no/such/route")
	require.NoError(t, err)
	defer resp404.Body.Close()
	require.Equal(t, http.StatusNotFound, resp404.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp404.Body).Decode(&got))
	require.Equal(t, "route not found", got["error"])

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/products/1", http.NoBody)
	resp405, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp405.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp405.StatusCode)
	require.Equal(t, "GET", resp405.Header.Get("Allow"))
}

// 5) Таймаут запросов: Handler с коротким reqTimeout должен вернуть 500
func TestHTTP_GetProduct_Timeout_500_TC(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	h := rest.NewHandler(slowService{}, logg, 10*time.Millisecond)
	ts := httptest.NewServer(rest.NewRouter(h, ""))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/products/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "internal server error", got["error"])
}

// --- функции помощники ---

// noOpService — заглушка для роутера, где неважно, что вернёт бизнес-логика.
type noOpService struct{}

func (noOpService) GetProduct(context.Context, int64) (*domain.Product, error) { return nil, nil }
func (noOpService) ListProducts(context.Context, int, int) ([]*domain.Product, error) {
	return nil, nil
}
func (noOpService) Like(context.Context, int64) (int, error) { return 0, nil }

// slowService — всегда ждёт ctx.Done() и возвращает ошибку контекста.
type slowService struct{}

func (slowService) GetProduct(ctx context.Context, _ int64) (*domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowService) ListProducts(ctx context.Context, _, _ int) ([]*domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowService) Like(ctx context.Context, _ int64) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}
