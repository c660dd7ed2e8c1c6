package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Order is the aggregate root for a custom-apparel order. It owns its
// line items; totals are always derived from the items and the tax rate,
// never accepted from the outside.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber    string `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID
	CustomerName   string
	SalespersonID  *uuid.UUID
	DesignerID     *uuid.UUID
	ManufacturerID *uuid.UUID
	Items          []Item          `gorm:"foreignKey:OrderID"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,4)"` // Frozen at creation
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         Status `gorm:"type:varchar(20);not null;index"`
	Notes          string
	CreatedBy      uuid.UUID
	SubmittedAt    *time.Time
	DesignStartAt  *time.Time
	ApprovedAt     *time.Time
	ProductionAt   *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemSpec is the desired state of one order line, used when creating an
// order or reconciling its items. A nil ID means a new line; a non-nil ID
// must match an existing line.
type ItemSpec struct {
	ID            *uuid.UUID
	CatalogItemID uuid.UUID
	Name          string
	SKU           string
	Size          string
	Color         string
	Quantity      int
	UnitPrice     decimal.Decimal
}

// NewOrder creates a new draft order
func NewOrder(orderNumber string, customerID uuid.UUID, customerName string, taxRate decimal.Decimal, createdBy uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be in [0, 1)")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Creator is required")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Items:             make([]Item, 0),
		Subtotal:          decimal.Zero,
		TaxRate:           taxRate,
		TaxAmount:         decimal.Zero,
		Total:             decimal.Zero,
		Status:            StatusDraft,
		CreatedBy:         createdBy,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// CanModifyItems reports whether line items may still change
func (o *Order) CanModifyItems() bool {
	return o.Status == StatusDraft || o.Status == StatusPendingDesign
}

// AddItem adds a new line to the order
func (o *Order) AddItem(spec ItemSpec) (*Item, error) {
	if !o.CanModifyItems() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to an order in %s status", o.Status))
	}

	item, err := NewItem(o.ID, spec.CatalogItemID, spec.Name, spec.SKU, spec.Size, spec.Color, spec.Quantity, spec.UnitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.Touch()

	return item, nil
}

// RemoveItem removes a line from the order
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if !o.CanModifyItems() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove items from an order in %s status", o.Status))
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ReconcileItems replaces the order's lines with the desired list.
// Specs carrying an ID update the matching line, specs without an ID
// become new lines, and existing lines absent from the list are removed.
// Totals are recalculated afterwards.
func (o *Order) ReconcileItems(specs []ItemSpec) error {
	if !o.CanModifyItems() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change items of an order in %s status", o.Status))
	}
	if len(specs) == 0 {
		return shared.NewDomainError("NO_ITEMS", "An order must keep at least one item")
	}

	existing := make(map[uuid.UUID]*Item, len(o.Items))
	for idx := range o.Items {
		existing[o.Items[idx].ID] = &o.Items[idx]
	}

	next := make([]Item, 0, len(specs))
	for _, spec := range specs {
		if spec.ID != nil {
			current, ok := existing[*spec.ID]
			if !ok {
				return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found: "+spec.ID.String())
			}
			updated := *current
			if err := updated.Update(spec.Size, spec.Color, spec.Quantity, spec.UnitPrice); err != nil {
				return err
			}
			next = append(next, updated)
			continue
		}

		item, err := NewItem(o.ID, spec.CatalogItemID, spec.Name, spec.SKU, spec.Size, spec.Color, spec.Quantity, spec.UnitPrice)
		if err != nil {
			return err
		}
		next = append(next, *item)
	}

	o.Items = next
	o.recalculateTotals()
	o.Touch()
	o.IncrementVersion()

	return nil
}

// GetItem returns a line by its ID
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// SetNotes sets the order notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.Touch()
}

// AssignSalesperson sets the responsible salesperson
func (o *Order) AssignSalesperson(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Salesperson ID cannot be empty")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign staff to a closed order")
	}

	o.SalespersonID = &userID
	o.Touch()
	o.IncrementVersion()

	return nil
}

// AssignDesigner sets the designer responsible for artwork
func (o *Order) AssignDesigner(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Designer ID cannot be empty")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign staff to a closed order")
	}

	o.DesignerID = &userID
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderAssignedEvent(o, "designer", userID))

	return nil
}

// AssignManufacturer sets the manufacturer responsible for production
func (o *Order) AssignManufacturer(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Manufacturer ID cannot be empty")
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign staff to a closed order")
	}

	o.ManufacturerID = &userID
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderAssignedEvent(o, "manufacturer", userID))

	return nil
}

// SubmitDesign moves a draft order into the design queue.
// Requires at least one item.
func (o *Order) SubmitDesign() error {
	if !o.Status.CanTransitionTo(StatusPendingDesign) {
		return o.transitionError(StatusPendingDesign)
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit an order without items")
	}

	now := time.Now()
	o.Status = StatusPendingDesign
	o.SubmittedAt = &now
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, StatusDraft, StatusPendingDesign))

	return nil
}

// StartDesign marks design work as started. Requires an assigned designer.
func (o *Order) StartDesign() error {
	if !o.Status.CanTransitionTo(StatusInDesign) {
		return o.transitionError(StatusInDesign)
	}
	if o.DesignerID == nil {
		return shared.NewDomainError("NO_DESIGNER", "A designer must be assigned before design starts")
	}

	now := time.Now()
	prev := o.Status
	o.Status = StatusInDesign
	o.DesignStartAt = &now
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, StatusInDesign))

	return nil
}

// ApproveDesign records customer approval of the artwork
func (o *Order) ApproveDesign() error {
	if !o.Status.CanTransitionTo(StatusDesignApproved) {
		return o.transitionError(StatusDesignApproved)
	}

	now := time.Now()
	prev := o.Status
	o.Status = StatusDesignApproved
	o.ApprovedAt = &now
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, StatusDesignApproved))

	return nil
}

// StartProduction marks production as started. Requires an assigned
// manufacturer.
func (o *Order) StartProduction() error {
	if !o.Status.CanTransitionTo(StatusInProduction) {
		return o.transitionError(StatusInProduction)
	}
	if o.ManufacturerID == nil {
		return shared.NewDomainError("NO_MANUFACTURER", "A manufacturer must be assigned before production starts")
	}

	now := time.Now()
	prev := o.Status
	o.Status = StatusInProduction
	o.ProductionAt = &now
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, StatusInProduction))

	return nil
}

// Complete marks the order as delivered
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return o.transitionError(StatusCompleted)
	}

	now := time.Now()
	prev := o.Status
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, StatusCompleted))

	return nil
}

// Cancel terminates the order early. A reason is required.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return o.transitionError(StatusCancelled)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	prev := o.Status
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, prev, StatusCancelled))

	return nil
}

// IsDeletable reports whether the order may be hard-deleted
func (o *Order) IsDeletable() bool {
	return o.Status == StatusDraft
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all line quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o *Order) transitionError(target Status) error {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
}

// recalculateTotals derives subtotal, tax and total from the lines
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal
	o.TaxAmount = subtotal.Mul(o.TaxRate).Round(2)
	o.Total = o.Subtotal.Add(o.TaxAmount)
}
