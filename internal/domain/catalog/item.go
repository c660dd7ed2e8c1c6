package catalog

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// ItemStatus represents the status of a catalog item
type ItemStatus string

const (
	ItemStatusActive       ItemStatus = "active"
	ItemStatusInactive     ItemStatus = "inactive"
	ItemStatusDiscontinued ItemStatus = "discontinued"
)

// Item is a sellable apparel template in the catalog. Orders freeze the
// item's name, SKU and price into their line items at creation time, so
// later catalog edits never rewrite order history.
type Item struct {
	shared.BaseAggregateRoot
	SKU          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Category     string          `gorm:"type:varchar(100);index"`
	Description  string          `gorm:"type:text"`
	Fabric       string          `gorm:"type:varchar(200)"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       ItemStatus      `gorm:"type:varchar(20);not null;default:'active'"`
	ImageKey     string          `gorm:"type:varchar(500)"`
	ThumbnailKey string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "catalog_items"
}

// NewItem creates a new active catalog item
func NewItem(sku, name string, basePrice decimal.Decimal) (*Item, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		Name:              strings.TrimSpace(name),
		BasePrice:         basePrice,
		Status:            ItemStatusActive,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// Update updates the item's descriptive fields
func (i *Item) Update(name, category, description, fabric string) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	if category != "" && len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	i.Name = strings.TrimSpace(name)
	i.Category = strings.TrimSpace(category)
	i.Description = description
	i.Fabric = strings.TrimSpace(fabric)
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// SetBasePrice sets the item's base price
func (i *Item) SetBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}

	i.BasePrice = price
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// SetImage sets the item's catalog image storage keys
func (i *Item) SetImage(imageKey, thumbnailKey string) {
	i.ImageKey = imageKey
	i.ThumbnailKey = thumbnailKey
	i.Touch()
	i.IncrementVersion()
}

// Activate makes the item orderable
func (i *Item) Activate() error {
	if i.Status == ItemStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATE", "Discontinued items cannot be reactivated")
	}
	if i.Status == ItemStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Item is already active")
	}

	i.Status = ItemStatusActive
	i.Touch()
	i.IncrementVersion()

	return nil
}

// Deactivate hides the item from ordering without discontinuing it
func (i *Item) Deactivate() error {
	if i.Status != ItemStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active items can be deactivated")
	}

	i.Status = ItemStatusInactive
	i.Touch()
	i.IncrementVersion()

	return nil
}

// Discontinue permanently retires the item
func (i *Item) Discontinue() error {
	if i.Status == ItemStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATE", "Item is already discontinued")
	}

	i.Status = ItemStatusDiscontinued
	i.Touch()
	i.IncrementVersion()

	return nil
}

// IsOrderable reports whether new order lines may reference the item
func (i *Item) IsOrderable() bool {
	return i.Status == ItemStatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	skuRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	if !skuRegex.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateItemName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot exceed 200 characters")
	}
	return nil
}
