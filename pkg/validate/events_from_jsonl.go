package validate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
)

// JSONLResult — статистика разбора потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
}

// eventLine — формат строки JSONL: тип события лежит рядом с полями товара.
type eventLine struct {
	Kind  string  `json:"kind"`
	ID    int64   `json:"id"`
	Title *string `json:"title"`
	Image *string `json:"image"`
}

// ReadEventsJSONL — читает события из JSONL, валидирует каждую строку и возвращает валидные.
// Пустые строки пропускаются, невалидные считаются и отбрасываются.
func ReadEventsJSONL(ctx context.Context, validator ports.EventValidator, ir io.Reader) ([]domain.ChangeEvent, JSONLResult, error) {
	var (
		res    JSONLResult
		events []domain.ChangeEvent
	)

	scanner := bufio.NewScanner(ir)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return events, res, err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		event, err := EventFromJSONLine(validator, line)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}
		events = append(events, event)
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return events, res, fmt.Errorf("scan: %w", err)
	}
	return events, res, nil
}

// EventFromJSONLine — разбирает одну строку JSONL в событие и валидирует его.
func EventFromJSONLine(validator ports.EventValidator, raw []byte) (domain.ChangeEvent, error) {
	var line eventLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("%w: invalid json: %v", ErrInvalidEvent, err)
	}
	kind, ok := domain.ParseEventKind(line.Kind)
	if !ok {
		return domain.ChangeEvent{}, fmt.Errorf("%w: неизвестный kind %q", ErrInvalidEvent, line.Kind)
	}

	event := domain.ChangeEvent{Kind: kind, EntityID: line.ID}
	if kind.RequiresPayload() {
		event.Title, event.Image = line.Title, line.Image
	}
	if err := validator.Validate(&event); err != nil {
		return domain.ChangeEvent{}, err
	}
	return event, nil
}
