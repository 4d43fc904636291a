package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/wb_products/config"
	cachemem "github.com/Gunvolt24/wb_products/internal/cache/memory"
	"github.com/Gunvolt24/wb_products/internal/event"
	"github.com/Gunvolt24/wb_products/internal/ports"
	"github.com/Gunvolt24/wb_products/internal/rabbitmq"
	"github.com/Gunvolt24/wb_products/internal/repo/postgres"
	rest "github.com/Gunvolt24/wb_products/internal/transport/http"
	"github.com/Gunvolt24/wb_products/internal/usecase"
	"github.com/Gunvolt24/wb_products/pkg/logger"
	"github.com/Gunvolt24/wb_products/pkg/metrics"
	"github.com/Gunvolt24/wb_products/pkg/telemetry"
	"github.com/Gunvolt24/wb_products/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер
	Consumer        ports.MessageConsumer // потребитель очереди товаров
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// ConsumerConfig — параметры брокера из конфигурации сервиса.
func ConsumerConfig(r config.RabbitMQ) rabbitmq.ConsumerConfig {
	return rabbitmq.ConsumerConfig{
		URL:             r.ConnectionURL(),
		ConnectionName:  r.ConnectionName,
		Exchange:        r.Exchange,
		Queue:           r.Queue,
		RoutingKey:      r.RoutingKey,
		Prefetch:        r.Prefetch,
		ConsumerTag:     r.ConsumerTag,
		ProcessTimeout:  r.ProcessTimeout,
		DrainTimeout:    r.DrainTimeout,
		Heartbeat:       r.Heartbeat,
		DialTimeout:     r.DialTimeout,
		RejectMalformed: r.RejectMalformed,
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
// Недоступный брокер, отказ в доступе или ошибка топологии — *rabbitmq.ConnectError, старт прерывается.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Пул подключений Postgres
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Сборка зависимостей доменного слоя.
	productCache := cachemem.NewProductLRU(cfg.Cache.Capacity, cfg.Cache.TTL)
	productRepo := postgres.NewProductRepository(pool)
	productService := usecase.NewProductService(productRepo, productCache, logg)

	// Прогрев кэша первой страницей каталога.
	if n := cfg.Cache.WarmUpN; n > 0 {
		products, wErr := productService.ListProducts(ctx, n, 0)
		if wErr == nil {
			wErr = productCache.WarmUp(ctx, products)
		}
		if wErr != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", wErr)
		} else {
			logg.Infof(ctx, "cache warmed up: %d products", productCache.Len())
		}
	}

	// Подключение к брокеру и объявление топологии; без брокера сервис не стартует.
	session, err := rabbitmq.Bootstrap(ctx, ConsumerConfig(cfg.RabbitMQ), logg)
	if err != nil {
		logg.Errorf(ctx, "rabbitmq bootstrap failed: %v", err)
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		pool.Close()
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	decoder := event.NewDecoder(validate.NewEventValidator())
	consumer := rabbitmq.NewConsumer(session, decoder, productService, logg)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(productService, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Consumer:        consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if err := consumer.Close(); err != nil {
			logg.Warnf(ctx, "rabbitmq consumer close error: %v", err)
		}

		pool.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
// Консьюмер дренирует незавершённые сообщения до закрытия сессии. Возвращает ошибку
// фонового компонента (например, закрытие канала брокером), отмена контекста ошибкой не считается.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumerDone := make(chan error, 1)
	httpErr := make(chan error, 1)

	// Запуск консьюмера.
	go func() {
		a.Logger.Infof(ctx, "rabbitmq consumer starting")
		consumerDone <- a.Consumer.Run(runCtx)
	}()

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	consumerStopped := false
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-consumerDone:
		consumerStopped = true
		runErr = backgroundError(ctx, a.Logger, "rabbitmq consumer", err)
	case err := <-httpErr:
		runErr = backgroundError(ctx, a.Logger, "http server", err)
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), gt)
	defer cancelShutdown()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка консьюмера: отмена приёма и ожидание дренажа.
	cancel()
	if !consumerStopped {
		if err := <-consumerDone; err != nil && !isCancel(err) {
			a.Logger.Warnf(ctx, "rabbitmq consumer stopped with error: %v", err)
		}
	}
	if err := a.Consumer.Close(); err != nil {
		a.Logger.Warnf(ctx, "rabbitmq consumer close error: %v", err)
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}

func backgroundError(ctx context.Context, log ports.Logger, component string, err error) error {
	if err == nil || isCancel(err) {
		log.Infof(ctx, "%s stopped: %v", component, err)
		return nil
	}
	log.Errorf(ctx, "%s failed: %v", component, err)
	return err
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
