package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
	"github.com/Gunvolt24/wb_products/internal/ports/mocks"
	rest "github.com/Gunvolt24/wb_products/internal/transport/http"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockProductReadService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockProductReadService(ctrl)
	h := rest.NewHandler(svc, noopLogger{}, 0)
	return rest.NewRouter(h, ""), svc
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetProduct_Found(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().GetProduct(gomock.Any(), int64(1)).
		Return(&domain.Product{ID: 1, Title: "Widget", Image: "w.png", Likes: 2}, nil)

	w := serve(r, http.MethodGet, "/api/products/1")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != 1 || got.Title != "Widget" || got.Likes != 2 {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().GetProduct(gomock.Any(), int64(42)).Return(nil, nil)

	w := serve(r, http.MethodGet, "/api/products/42")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestGetProduct_InvalidID(t *testing.T) {
	r, _ := newRouter(t)

	for _, id := range []string{"abc", "0", "-5"} {
		w := serve(r, http.MethodGet, "/api/products/"+id)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id=%s: want 400, got %d", id, w.Code)
		}
	}
}

func TestGetProduct_InternalError(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().GetProduct(gomock.Any(), int64(7)).Return(nil, errors.New("db error"))

	w := serve(r, http.MethodGet, "/api/products/7")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListProducts_Defaults(t *testing.T) {
	r, svc := newRouter(t)
	ret := []*domain.Product{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	svc.EXPECT().ListProducts(gomock.Any(), 20, 0).Return(ret, nil)

	w := serve(r, http.MethodGet, "/api/products")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got []*domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListProducts_WithParams(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().ListProducts(gomock.Any(), 3, 7).Return([]*domain.Product{{ID: 8}}, nil)

	w := serve(r, http.MethodGet, "/api/products?limit=3&offset=7")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListProducts_Empty_404(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().ListProducts(gomock.Any(), 20, 0).Return(nil, nil)

	w := serve(r, http.MethodGet, "/api/products")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListProducts_ServiceError(t *testing.T) {
	r, svc := newRouter(t)
	svc.EXPECT().ListProducts(gomock.Any(), 20, 0).Return(nil, errors.New("service error"))

	w := serve(r, http.MethodGet, "/api/products")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestLike(t *testing.T) {
	tests := []struct {
		name     string
		likes    int
		err      error
		wantCode int
	}{
		{"ok", 5, nil, http.StatusOK},
		{"not found", 0, fmt.Errorf("like: %w", ports.ErrProductNotFound), http.StatusNotFound},
		{"storage error", 0, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newRouter(t)
			svc.EXPECT().Like(gomock.Any(), int64(3)).Return(tt.likes, tt.err)

			w := serve(r, http.MethodPost, "/api/products/3/like")
			if w.Code != tt.wantCode {
				t.Fatalf("want %d, got %d, body=%s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var got struct {
				ID    int64 `json:"id"`
				Likes int   `json:"likes"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if got.ID != 3 || got.Likes != 5 {
				t.Fatalf("unexpected body: %+v", got)
			}
		})
	}
}

func TestNoRoute_404(t *testing.T) {
	r, _ := newRouter(t)

	w := serve(r, http.MethodGet, "/no-such-route")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestMethodNotAllowed_405(t *testing.T) {
	r, _ := newRouter(t)

	w := serve(r, http.MethodDelete, "/api/products/123")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d, body=%s", w.Code, w.Body.String())
	}
	if allow := w.Header().Get("Allow"); allow != "GET" {
		t.Fatalf("want Allow: GET, got %q", allow)
	}
}

func TestPing_200(t *testing.T) {
	r, _ := newRouter(t)

	w := serve(r, http.MethodGet, "/ping")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("want 200 pong, got %d %q", w.Code, w.Body.String())
	}
}

func TestMetrics_200(t *testing.T) {
	r, _ := newRouter(t)

	w := serve(r, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	// Содержимое может меняться — достаточно проверить, что не пусто.
	if w.Body.Len() == 0 {
		t.Fatal("metrics body is empty")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("X-Request-ID", "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "rid-1" {
		t.Fatalf("want X-Request-ID rid-1, got %q", got)
	}
}
