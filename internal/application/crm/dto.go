package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadcraft/backend/internal/domain/crm"
)

// CreateCustomerInput contains the data needed to create a customer
type CreateCustomerInput struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// UpdateCustomerInput contains the data for a customer update. Nil
// pointers leave the field unchanged.
type UpdateCustomerInput struct {
	CustomerID uuid.UUID
	Name       *string
	Company    *string
	Email      *string
	Phone      *string
	Address    *string
	Notes      *string
}

// ListCustomersInput contains filter options for listing customers
type ListCustomersInput struct {
	Filter crm.CustomerFilter
}

// CustomerInfo is the customer representation returned to callers
type CustomerInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomerInfo builds a CustomerInfo from a customer aggregate
func NewCustomerInfo(customer *crm.Customer) CustomerInfo {
	return CustomerInfo{
		ID:        customer.ID,
		Name:      customer.Name,
		Company:   customer.Company,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Address:   customer.Address,
		Notes:     customer.Notes,
		Status:    string(customer.Status),
		CreatedBy: customer.CreatedBy,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}
