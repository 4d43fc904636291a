package app_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/wb_products/config"
	"github.com/Gunvolt24/wb_products/internal/app"
	"github.com/Gunvolt24/wb_products/internal/ports/mocks"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фейковый консьюмер: ждёт отмены контекста и имитирует дренаж
type fakeConsumer struct {
	runCalls   int32
	closeCalls int32
	drained    int32
	drainDelay time.Duration
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	<-ctx.Done()
	time.Sleep(f.drainDelay)
	atomic.StoreInt32(&f.drained, 1)
	return ctx.Err()
}

func (f *fakeConsumer) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func newServer() *http.Server {
	// HTTP-сервер на случайном свободном порту
	return &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}
}

func TestAppRun_GracefulShutdown(t *testing.T) {
	fc := &fakeConsumer{drainDelay: 50 * time.Millisecond}
	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: newServer(),
		Consumer:   fc,
	}

	// Запуск и быстрая остановка
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&fc.runCalls) == 0 {
		t.Fatalf("consumer.Run should be called")
	}
	// Close только после завершения дренажа
	if atomic.LoadInt32(&fc.drained) == 0 {
		t.Fatalf("Run returned before consumer drained")
	}
	if atomic.LoadInt32(&fc.closeCalls) == 0 {
		t.Fatalf("consumer.Close should be called")
	}
}

func TestAppRun_ConsumerFailure_ReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	consumer := mocks.NewMockMessageConsumer(ctrl)

	boom := errors.New("channel closed")
	consumer.EXPECT().Run(gomock.Any()).Return(boom)
	consumer.EXPECT().Close().Return(nil)

	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: newServer(),
		Consumer:   consumer,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("want consumer error, got %v", err)
	}
}

func TestConsumerConfig_FromServiceConfig(t *testing.T) {
	r := config.RabbitMQ{
		Host: "mq", Port: "5672", User: "u", Password: "p", VHost: "/",
		Exchange: "products", Queue: "main", RoutingKey: "main", Prefetch: 3,
		ProcessTimeout: 2 * time.Second, DrainTimeout: time.Second, RejectMalformed: true,
	}

	got := app.ConsumerConfig(r)
	if got.URL != "amqp://u:p@mq:5672/" {
		t.Fatalf("URL: got %q", got.URL)
	}
	if got.Prefetch != 3 || got.ProcessTimeout != 2*time.Second || got.DrainTimeout != time.Second || !got.RejectMalformed {
		t.Fatalf("unexpected consumer config: %+v", got)
	}
}
