package crm

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *Customer) error

	// Update updates an existing customer
	Update(ctx context.Context, customer *Customer) error

	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail finds an active customer by email
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindAll returns customers matching the filter with a total count
	FindAll(ctx context.Context, filter CustomerFilter) ([]*Customer, int64, error)

	// Count returns the number of customers matching the filter
	Count(ctx context.Context, filter CustomerFilter) (int64, error)
}

// CustomerFilter contains filter options for querying customers
type CustomerFilter struct {
	// Search keyword for name, company, or email
	Keyword string

	// Filter by status
	Status *CustomerStatus

	// Filter by owning salesperson
	CreatedBy *uuid.UUID

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewCustomerFilter creates a new CustomerFilter with default values
func NewCustomerFilter() CustomerFilter {
	return CustomerFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
