package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for order persistence. Save persists
// the order and its lines atomically: lines missing from the aggregate
// are deleted, the rest upserted, inside one database transaction.
type Repository interface {
	// Create creates a new order with its items
	Create(ctx context.Context, o *Order) error

	// Save persists the order and reconciles its items in one transaction
	Save(ctx context.Context, o *Order) error

	// SaveWithLock persists the order with optimistic locking on Version
	SaveWithLock(ctx context.Context, o *Order) error

	// Delete hard-deletes an order and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an order by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its business number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll returns orders matching the filter with a total count
	FindAll(ctx context.Context, filter Filter) ([]*Order, int64, error)

	// CountByStatus returns the number of orders per status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// SumCompletedTotal returns the summed total of completed orders
	SumCompletedTotal(ctx context.Context) (decimal.Decimal, error)

	// NextSequence returns the next order sequence number for a year
	NextSequence(ctx context.Context, year int) (int64, error)

	// ExistsByCatalogItem reports whether any order line references the
	// given catalog item
	ExistsByCatalogItem(ctx context.Context, catalogItemID uuid.UUID) (bool, error)
}

// Filter contains filter options for querying orders
type Filter struct {
	// Search keyword for order number or customer name
	Keyword string

	// Filter by status
	Status *Status

	// Scope filters; nil means unrestricted
	CustomerID     *uuid.UUID
	SalespersonID  *uuid.UUID
	DesignerID     *uuid.UUID
	ManufacturerID *uuid.UUID

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewFilter creates a new Filter with default values
func NewFilter() Filter {
	return Filter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
