package crm

import (
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Aggregate type constant for Customer
const AggregateTypeCustomer = "Customer"

// Customer domain event types
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
)

// CustomerCreatedEvent is raised when a customer record is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		Name:            customer.Name,
		Email:           customer.Email,
	}
}

// CustomerUpdatedEvent is raised when a customer record changes
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, customer.ID),
		Name:            customer.Name,
	}
}
