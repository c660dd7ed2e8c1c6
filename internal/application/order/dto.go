package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
)

// Principal identifies the authenticated caller of an order operation.
// CustomerID is set for customer-role users linked to a CRM record and
// scopes what they can see.
type Principal struct {
	ID         uuid.UUID
	Name       string
	Role       identity.Role
	CustomerID *uuid.UUID
}

func (p Principal) actor() auditapp.Actor {
	return auditapp.Actor{ID: p.ID, Name: p.Name, Role: string(p.Role)}
}

// ItemInput describes one desired order line. A nil ID creates a new
// line priced from the catalog; a non-nil ID updates an existing line.
type ItemInput struct {
	ID            *uuid.UUID
	CatalogItemID uuid.UUID
	Size          string
	Color         string
	Quantity      int
}

// CreateOrderInput contains the data needed to create an order
type CreateOrderInput struct {
	CustomerID uuid.UUID
	Notes      string
	Items      []ItemInput
}

// UpdateOrderInput carries a partial order update. Nil Notes leaves the
// notes unchanged; nil Items leaves the lines unchanged.
type UpdateOrderInput struct {
	OrderID uuid.UUID
	Notes   *string
	Items   []ItemInput
}

// AssignInput assigns a staff member to an order
type AssignInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

// CancelInput cancels an order with a required reason
type CancelInput struct {
	OrderID uuid.UUID
	Reason  string
}

// ListOrdersInput contains filter options for listing orders
type ListOrdersInput struct {
	Filter order.Filter
}

// ItemInfo is one order line as returned to callers
type ItemInfo struct {
	ID            uuid.UUID       `json:"id"`
	CatalogItemID uuid.UUID       `json:"catalog_item_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Size          string          `json:"size,omitempty"`
	Color         string          `json:"color,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"`
}

// Info is the order representation returned to callers
type Info struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	SalespersonID  *uuid.UUID      `json:"salesperson_id,omitempty"`
	DesignerID     *uuid.UUID      `json:"designer_id,omitempty"`
	ManufacturerID *uuid.UUID      `json:"manufacturer_id,omitempty"`
	Items          []ItemInfo      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewInfo builds an Info from an order aggregate
func NewInfo(o *order.Order) Info {
	items := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemInfo{
			ID:            item.ID,
			CatalogItemID: item.CatalogItemID,
			Name:          item.Name,
			SKU:           item.SKU,
			Size:          item.Size,
			Color:         item.Color,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Amount:        item.Amount,
		}
	}

	return Info{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		SalespersonID:  o.SalespersonID,
		DesignerID:     o.DesignerID,
		ManufacturerID: o.ManufacturerID,
		Items:          items,
		Subtotal:       o.Subtotal,
		TaxRate:        o.TaxRate,
		TaxAmount:      o.TaxAmount,
		Total:          o.Total,
		Status:         string(o.Status),
		Notes:          o.Notes,
		CancelReason:   o.CancelReason,
		SubmittedAt:    o.SubmittedAt,
		CompletedAt:    o.CompletedAt,
		CancelledAt:    o.CancelledAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// StatsSummary aggregates order counts per status and completed revenue
type StatsSummary struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"by_status"`
	CompletedRevenue decimal.Decimal  `json:"completed_revenue"`
	RevenueDisplay   string           `json:"revenue_display"`
}
