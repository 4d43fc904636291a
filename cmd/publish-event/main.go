package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/wb_products/config"
	"github.com/Gunvolt24/wb_products/internal/app"
	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/rabbitmq"
	"github.com/Gunvolt24/wb_products/pkg/logger"
	"github.com/Gunvolt24/wb_products/pkg/validate"
)

// CLI-продюсер: публикует события изменения товара в exchange сервиса.
// Одно событие из флагов или поток JSONL ({"kind":"product_created","id":1,"title":"...","image":"..."}).
func main() {
	kindStr := flag.String("kind", "", "event kind: product_created|product_updated|product_deleted")
	id := flag.Int64("id", 0, "product id")
	title := flag.String("title", "", "product title (created/updated)")
	image := flag.String("image", "", "product image (created/updated)")
	inputPath := flag.String("in", "", "path to .jsonl with events; \"-\" reads stdin")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator := validate.NewEventValidator()

	events, err := collectEvents(ctx, validator, *inputPath, *kindStr, *id, *title, *image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "events: %v\n", err)
		os.Exit(2)
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to publish")
		os.Exit(2)
	}

	if err := publish(ctx, events); err != nil {
		fmt.Fprintf(os.Stderr, "publish: %v\n", err)
		os.Exit(1)
	}
}

// publish — подключение к exchange сервиса и отправка событий по порядку.
func publish(ctx context.Context, events []domain.ChangeEvent) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = cleanupLogger() }()

	consumerCfg := app.ConsumerConfig(cfg.RabbitMQ)
	consumerCfg.ConnectionName = "products-publisher"

	session, err := rabbitmq.BootstrapPublisher(ctx, consumerCfg, logg)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	publisher := rabbitmq.NewPublisher(session)
	for _, ev := range events {
		msgID, err := publisher.Publish(ctx, ev)
		if err != nil {
			return err
		}
		logg.Infof(ctx, "published %s product_id=%d message_id=%s", ev.Kind, ev.EntityID, msgID)
	}
	return nil
}

func collectEvents(
	ctx context.Context,
	validator *validate.EventValidator,
	inputPath, kindStr string,
	id int64,
	title, image string,
) ([]domain.ChangeEvent, error) {
	if inputPath != "" {
		var in io.Reader = os.Stdin
		if inputPath != "-" {
			f, err := os.Open(inputPath)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			in = f
		}
		events, res, err := validate.ReadEventsJSONL(ctx, validator, in)
		if err != nil {
			return nil, err
		}
		if res.InvalidLinesCount > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d invalid lines (valid=%d)\n", res.InvalidLinesCount, res.ValidLinesCount)
		}
		return events, nil
	}

	kind, ok := domain.ParseEventKind(kindStr)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kindStr)
	}
	var ev domain.ChangeEvent
	switch kind {
	case domain.KindCreated:
		ev = domain.NewCreated(id, title, image)
	case domain.KindUpdated:
		ev = domain.NewUpdated(id, title, image)
	default:
		ev = domain.NewDeleted(id)
	}
	if err := validator.Validate(&ev); err != nil {
		return nil, err
	}
	return []domain.ChangeEvent{ev}, nil
}
