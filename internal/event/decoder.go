// Package event — преобразование сообщений очереди в события изменения товара и обратно.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/Gunvolt24/wb_products/internal/domain"
	"github.com/Gunvolt24/wb_products/internal/ports"
)

// payload — тело сообщения. Продюсер присылает сериализованный товар целиком
// (в том числе likes), поэтому лишние поля допускаются.
type payload struct {
	ID    *int64  `json:"id"`
	Title *string `json:"title,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Decoder — разбор тела сообщения и тега типа в domain.ChangeEvent. Без побочных эффектов.
type Decoder struct {
	validator ports.EventValidator
}

// NewDecoder — конструктор; validator проверяет обязательные поля для типа события.
func NewDecoder(validator ports.EventValidator) *Decoder {
	return &Decoder{validator: validator}
}

// Decode — неизвестный тег → UnknownEventType, битое тело или нехватка полей → MalformedPayload.
// Присутствующие title/image принимаются как есть, включая пустые строки.
func (d *Decoder) Decode(body []byte, typeTag string) (domain.ChangeEvent, error) {
	kind, ok := domain.ParseEventKind(typeTag)
	if !ok {
		return domain.ChangeEvent{}, &DecodeError{Kind: UnknownEventType, Tag: typeTag}
	}

	var p payload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return domain.ChangeEvent{}, malformed(typeTag, err)
	}
	// После объекта не должно быть лишних данных.
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return domain.ChangeEvent{}, malformed(typeTag, errors.New("trailing data"))
	}
	if p.ID == nil {
		return domain.ChangeEvent{}, malformed(typeTag, errors.New("id is required"))
	}

	event := domain.ChangeEvent{Kind: kind, EntityID: *p.ID}
	if kind.RequiresPayload() {
		event.Title, event.Image = p.Title, p.Image
	}

	if err := d.validator.Validate(&event); err != nil {
		return domain.ChangeEvent{}, malformed(typeTag, err)
	}
	return event, nil
}

// Encode — обратное преобразование для продюсера: тело сообщения и тег для content-type.
func Encode(event domain.ChangeEvent) ([]byte, string, error) {
	p := payload{ID: &event.EntityID}
	if event.Kind.RequiresPayload() {
		p.Title, p.Image = event.Title, event.Image
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, "", err
	}
	return body, event.Kind.String(), nil
}
