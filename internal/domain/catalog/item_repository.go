package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the interface for catalog item persistence
type ItemRepository interface {
	// Create creates a new catalog item
	Create(ctx context.Context, item *Item) error

	// Update updates an existing catalog item
	Update(ctx context.Context, item *Item) error

	// Delete hard-deletes a catalog item. Callers must ensure the item is
	// not referenced by any order line.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a catalog item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindBySKU finds a catalog item by SKU
	FindBySKU(ctx context.Context, sku string) (*Item, error)

	// FindAll returns catalog items matching the filter with a total count
	FindAll(ctx context.Context, filter ItemFilter) ([]*Item, int64, error)

	// ExistsBySKU checks if a SKU already exists
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// ItemFilter contains filter options for querying catalog items
type ItemFilter struct {
	// Search keyword for name or SKU
	Keyword string

	// Filter by category
	Category string

	// Filter by status
	Status *ItemStatus

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewItemFilter creates a new ItemFilter with default values
func NewItemFilter() ItemFilter {
	return ItemFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
