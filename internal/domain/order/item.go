package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Item is a line of an order. Name, SKU and price are frozen from the
// catalog at the time the line is created.
type Item struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CatalogItemID uuid.UUID
	Name          string
	SKU           string
	Size          string
	Color         string
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2)"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)"` // Quantity * UnitPrice
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates a new order line
func NewItem(orderID, catalogItemID uuid.UUID, name, sku, size, color string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if catalogItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATALOG_ITEM", "Catalog item ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	qty := decimal.NewFromInt(int64(quantity))

	return &Item{
		ID:            uuid.New(),
		OrderID:       orderID,
		CatalogItemID: catalogItemID,
		Name:          name,
		SKU:           sku,
		Size:          strings.TrimSpace(size),
		Color:         strings.TrimSpace(color),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Amount:        qty.Mul(unitPrice),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Update changes the line's variant fields and recalculates the amount
func (i *Item) Update(size, color string, quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	i.Size = strings.TrimSpace(size)
	i.Color = strings.TrimSpace(color)
	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.Amount = decimal.NewFromInt(int64(quantity)).Mul(unitPrice)
	i.UpdatedAt = time.Now()

	return nil
}
