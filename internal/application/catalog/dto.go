package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadcraft/backend/internal/domain/catalog"
)

// CreateItemInput contains the data needed to create a catalog item
type CreateItemInput struct {
	SKU         string
	Name        string
	Category    string
	Description string
	Fabric      string
	BasePrice   decimal.Decimal
}

// UpdateItemInput contains the data for a catalog item update. Nil
// pointers leave the field unchanged.
type UpdateItemInput struct {
	ItemID      uuid.UUID
	Name        *string
	Category    *string
	Description *string
	Fabric      *string
	BasePrice   *decimal.Decimal
}

// ListItemsInput contains filter options for listing catalog items
type ListItemsInput struct {
	Filter catalog.ItemFilter
}

// ItemInfo is the catalog item representation returned to callers
type ItemInfo struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Description  string          `json:"description,omitempty"`
	Fabric       string          `json:"fabric,omitempty"`
	BasePrice    decimal.Decimal `json:"base_price"`
	Status       string          `json:"status"`
	ImageKey     string          `json:"image_key,omitempty"`
	ThumbnailKey string          `json:"thumbnail_key,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewItemInfo builds an ItemInfo from a catalog item aggregate
func NewItemInfo(item *catalog.Item) ItemInfo {
	return ItemInfo{
		ID:           item.ID,
		SKU:          item.SKU,
		Name:         item.Name,
		Category:     item.Category,
		Description:  item.Description,
		Fabric:       item.Fabric,
		BasePrice:    item.BasePrice,
		Status:       string(item.Status),
		ImageKey:     item.ImageKey,
		ThumbnailKey: item.ThumbnailKey,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
