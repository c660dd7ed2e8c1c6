package catalog

import (
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Aggregate type constant for Item
const AggregateTypeItem = "CatalogItem"

// Item domain event types
const (
	EventTypeItemCreated = "CatalogItemCreated"
	EventTypeItemUpdated = "CatalogItemUpdated"
)

// ItemCreatedEvent is raised when a catalog item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		SKU:             item.SKU,
		Name:            item.Name,
	}
}

// ItemUpdatedEvent is raised when a catalog item changes
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	SKU string `json:"sku"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent
func NewItemUpdatedEvent(item *Item) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeItem, item.ID),
		SKU:             item.SKU,
	}
}
