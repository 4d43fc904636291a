package logger_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gunvolt24/wb_products/pkg/ctxmeta"
	"github.com/Gunvolt24/wb_products/pkg/logger"
)

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := logger.NewZapLoggerFrom(zap.New(core))

	ctx := ctxmeta.WithDeliveryTag(ctxmeta.WithRequestID(context.Background(), "req-1"), 7)
	log.Warnf(ctx, "dispatch failed product_id=%d", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "dispatch failed product_id=3" || e.Level != zap.WarnLevel {
		t.Fatalf("unexpected entry: %+v", e)
	}
	fields := e.ContextMap()
	if fields["request_id"] != "req-1" {
		t.Fatalf("request_id = %v", fields["request_id"])
	}
	if fields["delivery_tag"] != uint64(7) {
		t.Fatalf("delivery_tag = %v (%T)", fields["delivery_tag"], fields["delivery_tag"])
	}
}

func TestZapLogger_NoContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := logger.NewZapLoggerFrom(zap.New(core))

	log.Infof(context.Background(), "started")
	log.Errorf(nil, "nil ctx is tolerated") //nolint:staticcheck // проверяем nil-контекст

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if len(entries[0].Context) != 0 {
		t.Fatalf("unexpected fields: %v", entries[0].Context)
	}
}
