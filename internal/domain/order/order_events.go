package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Order domain event types
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderAssigned      = "OrderAssigned"
)

// OrderCreatedEvent is raised when an order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// OrderStatusChangedEvent is raised on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	OldStatus   Status          `json:"old_status"`
	NewStatus   Status          `json:"new_status"`
	Total       decimal.Decimal `json:"total"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, oldStatus, newStatus Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		Total:           o.Total,
	}
}

// OrderAssignedEvent is raised when staff is assigned to an order
type OrderAssignedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	RoleName    string    `json:"role_name"` // "designer" or "manufacturer"
	AssigneeID  uuid.UUID `json:"assignee_id"`
}

// NewOrderAssignedEvent creates a new OrderAssignedEvent
func NewOrderAssignedEvent(o *Order, roleName string, assigneeID uuid.UUID) *OrderAssignedEvent {
	return &OrderAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAssigned, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		RoleName:        roleName,
		AssigneeID:      assigneeID,
	}
}
