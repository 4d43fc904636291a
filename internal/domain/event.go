package domain

import "strings"

// EventKind — тип изменения товара. Строковое значение совпадает с тегом в content-type сообщения.
type EventKind string

const (
	KindCreated EventKind = "product_created"
	KindUpdated EventKind = "product_updated"
	KindDeleted EventKind = "product_deleted"
)

// ParseEventKind — сопоставляет тег сообщения с типом события (без учёта регистра и пробелов).
func ParseEventKind(tag string) (EventKind, bool) {
	switch EventKind(strings.ToLower(strings.TrimSpace(tag))) {
	case KindCreated:
		return KindCreated, true
	case KindUpdated:
		return KindUpdated, true
	case KindDeleted:
		return KindDeleted, true
	default:
		return "", false
	}
}

func (k EventKind) String() string { return string(k) }

// RequiresPayload — нужны ли title/image для данного типа события.
func (k EventKind) RequiresPayload() bool {
	return k == KindCreated || k == KindUpdated
}

// ChangeEvent — одно изменение товара, полученное из очереди.
// Created/Updated несут title и image, Deleted — только id.
type ChangeEvent struct {
	Kind     EventKind `json:"-"`
	EntityID int64     `json:"id"`
	Title    *string   `json:"title,omitempty"`
	Image    *string   `json:"image,omitempty"`
}

// TitleValue — title или пустая строка.
func (e *ChangeEvent) TitleValue() string {
	if e.Title == nil {
		return ""
	}
	return *e.Title
}

// ImageValue — image или пустая строка.
func (e *ChangeEvent) ImageValue() string {
	if e.Image == nil {
		return ""
	}
	return *e.Image
}

// NewCreated, NewUpdated, NewDeleted — конструкторы событий (продюсер, тесты).
func NewCreated(id int64, title, image string) ChangeEvent {
	return ChangeEvent{Kind: KindCreated, EntityID: id, Title: &title, Image: &image}
}

func NewUpdated(id int64, title, image string) ChangeEvent {
	return ChangeEvent{Kind: KindUpdated, EntityID: id, Title: &title, Image: &image}
}

func NewDeleted(id int64) ChangeEvent {
	return ChangeEvent{Kind: KindDeleted, EntityID: id}
}
