// Package order contains the order-management application services.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/catalog"
	"github.com/threadcraft/backend/internal/domain/crm"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Service handles the order lifecycle: creation, item reconciliation,
// staff assignment, status transitions and stats.
type Service struct {
	orderRepo    order.Repository
	customerRepo crm.CustomerRepository
	catalogRepo  catalog.ItemRepository
	userRepo     identity.UserRepository
	recorder     *auditapp.Recorder
	taxRate      decimal.Decimal
	logger       *zap.Logger
}

// NewService creates a new order service. taxRate is the rate frozen
// into orders at creation time.
func NewService(
	orderRepo order.Repository,
	customerRepo crm.CustomerRepository,
	catalogRepo catalog.ItemRepository,
	userRepo identity.UserRepository,
	recorder *auditapp.Recorder,
	taxRate decimal.Decimal,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		catalogRepo:  catalogRepo,
		userRepo:     userRepo,
		recorder:     recorder,
		taxRate:      taxRate,
		logger:       logger,
	}
}

// Create creates a draft order for a customer. Line prices, names and
// SKUs are frozen from the catalog at this moment.
func (s *Service) Create(ctx context.Context, principal Principal, input CreateOrderInput) (*Info, error) {
	if principal.Role == identity.RoleCustomer {
		if principal.CustomerID == nil || *principal.CustomerID != input.CustomerID {
			return nil, shared.NewDomainError("FORBIDDEN", "Customers can only create orders for their own account")
		}
	}

	customer, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("CUSTOMER_ARCHIVED", "Cannot create orders for an archived customer")
	}

	orderNumber, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, customer.ID, customer.Name, s.taxRate, principal.ID)
	if err != nil {
		return nil, err
	}
	if principal.Role == identity.RoleSalesperson {
		if err := o.AssignSalesperson(principal.ID); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		o.SetNotes(input.Notes)
	}

	for _, itemInput := range input.Items {
		spec, err := s.resolveItemSpec(ctx, itemInput)
		if err != nil {
			return nil, err
		}
		if _, err := o.AddItem(*spec); err != nil {
			return nil, err
		}
	}

	if err := s.createWithFreshNumber(ctx, o); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, principal.actor(), "order.created", "Order", o.ID, map[string]interface{}{
		"order_number": o.OrderNumber,
		"customer_id":  o.CustomerID.String(),
	})

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int("items", o.ItemCount()))

	info := NewInfo(o)
	return &info, nil
}

// Get returns one order, enforcing role scoping
func (s *Service) Get(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	o, err := s.findScoped(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	info := NewInfo(o)
	return &info, nil
}

// List returns orders visible to the caller. Customers see their own
// orders, designers and manufacturers the ones assigned to them, and
// admin/salesperson see everything.
func (s *Service) List(ctx context.Context, principal Principal, input ListOrdersInput) ([]Info, int64, error) {
	filter := input.Filter
	switch principal.Role {
	case identity.RoleCustomer:
		if principal.CustomerID == nil {
			return []Info{}, 0, nil
		}
		filter.CustomerID = principal.CustomerID
	case identity.RoleDesigner:
		designerID := principal.ID
		filter.DesignerID = &designerID
	case identity.RoleManufacturer:
		manufacturerID := principal.ID
		filter.ManufacturerID = &manufacturerID
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]Info, len(orders))
	for i, o := range orders {
		infos[i] = NewInfo(o)
	}
	return infos, total, nil
}

// Update applies a partial update: notes and/or the full desired item
// list. Items carrying an ID update the matching line, items without one
// become new lines priced from the catalog, and lines missing from the
// list are removed. Totals are rederived; the write uses optimistic
// locking.
func (s *Service) Update(ctx context.Context, principal Principal, input UpdateOrderInput) (*Info, error) {
	o, err := s.findScoped(ctx, principal, input.OrderID)
	if err != nil {
		return nil, err
	}

	if input.Notes != nil {
		o.SetNotes(*input.Notes)
	}

	if input.Items != nil {
		specs := make([]order.ItemSpec, 0, len(input.Items))
		for _, itemInput := range input.Items {
			// Existing lines keep their frozen name, SKU and price;
			// only new lines are priced from the catalog.
			if itemInput.ID != nil {
				existing := o.GetItem(*itemInput.ID)
				if existing == nil {
					return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found: "+itemInput.ID.String())
				}
				specs = append(specs, order.ItemSpec{
					ID:            itemInput.ID,
					CatalogItemID: existing.CatalogItemID,
					Name:          existing.Name,
					SKU:           existing.SKU,
					Size:          itemInput.Size,
					Color:         itemInput.Color,
					Quantity:      itemInput.Quantity,
					UnitPrice:     existing.UnitPrice,
				})
				continue
			}

			spec, err := s.resolveItemSpec(ctx, itemInput)
			if err != nil {
				return nil, err
			}
			specs = append(specs, *spec)
		}
		if err := o.ReconcileItems(specs); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, principal.actor(), "order.updated", "Order", o.ID, map[string]interface{}{
		"order_number": o.OrderNumber,
	})

	info := NewInfo(o)
	return &info, nil
}

// Delete hard-deletes a draft order
func (s *Service) Delete(ctx context.Context, principal Principal, id uuid.UUID) error {
	o, err := s.findScoped(ctx, principal, id)
	if err != nil {
		return err
	}

	if !o.IsDeletable() {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, principal.actor(), "order.deleted", "Order", id, map[string]interface{}{
		"order_number": o.OrderNumber,
	})
	return nil
}

// SubmitDesign moves a draft order into the design queue
func (s *Service) SubmitDesign(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	return s.transition(ctx, principal, id, "order.design_submitted", func(o *order.Order) error {
		return o.SubmitDesign()
	})
}

// StartDesign marks design work as started
func (s *Service) StartDesign(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	return s.transition(ctx, principal, id, "order.design_started", func(o *order.Order) error {
		return o.StartDesign()
	})
}

// ApproveDesign records customer approval of the artwork
func (s *Service) ApproveDesign(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	return s.transition(ctx, principal, id, "order.design_approved", func(o *order.Order) error {
		return o.ApproveDesign()
	})
}

// StartProduction marks production as started
func (s *Service) StartProduction(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	return s.transition(ctx, principal, id, "order.production_started", func(o *order.Order) error {
		return o.StartProduction()
	})
}

// Complete marks the order as delivered
func (s *Service) Complete(ctx context.Context, principal Principal, id uuid.UUID) (*Info, error) {
	return s.transition(ctx, principal, id, "order.completed", func(o *order.Order) error {
		return o.Complete()
	})
}

// Cancel terminates the order early with a reason
func (s *Service) Cancel(ctx context.Context, principal Principal, input CancelInput) (*Info, error) {
	return s.transition(ctx, principal, input.OrderID, "order.cancelled", func(o *order.Order) error {
		return o.Cancel(input.Reason)
	})
}

// AssignDesigner assigns a designer-role user to the order
func (s *Service) AssignDesigner(ctx context.Context, principal Principal, input AssignInput) (*Info, error) {
	if err := s.checkStaffRole(ctx, input.UserID, identity.RoleDesigner); err != nil {
		return nil, err
	}
	return s.transition(ctx, principal, input.OrderID, "order.designer_assigned", func(o *order.Order) error {
		return o.AssignDesigner(input.UserID)
	})
}

// AssignManufacturer assigns a manufacturer-role user to the order
func (s *Service) AssignManufacturer(ctx context.Context, principal Principal, input AssignInput) (*Info, error) {
	if err := s.checkStaffRole(ctx, input.UserID, identity.RoleManufacturer); err != nil {
		return nil, err
	}
	return s.transition(ctx, principal, input.OrderID, "order.manufacturer_assigned", func(o *order.Order) error {
		return o.AssignManufacturer(input.UserID)
	})
}

// Stats returns order counts per status and completed revenue
func (s *Service) Stats(ctx context.Context) (*StatsSummary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.orderRepo.SumCompletedTotal(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(order.AllStatuses()))
	var total int64
	for _, status := range order.AllStatuses() {
		byStatus[string(status)] = counts[status]
		total += counts[status]
	}

	return &StatsSummary{
		Total:            total,
		ByStatus:         byStatus,
		CompletedRevenue: revenue,
		RevenueDisplay:   formatRevenue(revenue),
	}, nil
}

// transition loads an order, applies a state change and persists it with
// optimistic locking
func (s *Service) transition(ctx context.Context, principal Principal, id uuid.UUID, action string, fn func(*order.Order) error) (*Info, error) {
	o, err := s.findScoped(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := fn(o); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, principal.actor(), action, "Order", o.ID, map[string]interface{}{
		"order_number": o.OrderNumber,
		"from":         string(from),
		"to":           string(o.Status),
	})

	s.logger.Info("Order state changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("action", action),
		zap.String("status", string(o.Status)))

	info := NewInfo(o)
	return &info, nil
}

// findScoped loads an order and checks the caller may see it
func (s *Service) findScoped(ctx context.Context, principal Principal, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canView(principal, o) {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
	}
	return o, nil
}

func (s *Service) canView(principal Principal, o *order.Order) bool {
	switch principal.Role {
	case identity.RoleAdmin, identity.RoleSalesperson:
		return true
	case identity.RoleCustomer:
		return principal.CustomerID != nil && *principal.CustomerID == o.CustomerID
	case identity.RoleDesigner:
		return o.DesignerID != nil && *o.DesignerID == principal.ID
	case identity.RoleManufacturer:
		return o.ManufacturerID != nil && *o.ManufacturerID == principal.ID
	}
	return false
}

// resolveItemSpec turns a new-line input into a spec, freezing name,
// SKU and unit price from the catalog
func (s *Service) resolveItemSpec(ctx context.Context, input ItemInput) (*order.ItemSpec, error) {
	item, err := s.catalogRepo.FindByID(ctx, input.CatalogItemID)
	if err != nil {
		return nil, shared.NewDomainError("CATALOG_ITEM_NOT_FOUND", "Catalog item not found")
	}
	if !item.IsOrderable() {
		return nil, shared.NewDomainError("ITEM_NOT_ORDERABLE", fmt.Sprintf("Catalog item %s is not orderable", item.SKU))
	}

	return &order.ItemSpec{
		CatalogItemID: item.ID,
		Name:          item.Name,
		SKU:           item.SKU,
		Size:          input.Size,
		Color:         input.Color,
		Quantity:      input.Quantity,
		UnitPrice:     item.BasePrice,
	}, nil
}

// checkStaffRole verifies the assignee exists, is active and carries the
// expected role
func (s *Service) checkStaffRole(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "Assignee not found")
	}
	if user.Role != role {
		return shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Assignee must have the %s role", role))
	}
	if user.Status != identity.UserStatusActive {
		return shared.NewDomainError("USER_INACTIVE", "Assignee is not active")
	}
	return nil
}

// orderNumberAttempts bounds the retries when concurrent creates race
// on the same sequence number
const orderNumberAttempts = 3

// createWithFreshNumber persists a new order. The number was read from
// the sequence before the insert, so a concurrent create can claim it
// first; when that happens we allocate a fresh number and try again.
func (s *Service) createWithFreshNumber(ctx context.Context, o *order.Order) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		if err = s.orderRepo.Create(ctx, o); err == nil {
			return nil
		}

		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "ORDER_NUMBER_TAKEN" {
			return err
		}

		number, numErr := s.nextOrderNumber(ctx)
		if numErr != nil {
			return numErr
		}
		o.OrderNumber = number
	}
	return err
}

// nextOrderNumber allocates the next TC-<year>-<seq> business number
func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	seq, err := s.orderRepo.NextSequence(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TC-%d-%06d", year, seq), nil
}

// formatRevenue renders a dollar amount with thousands grouping
func formatRevenue(amount decimal.Decimal) string {
	printer := message.NewPrinter(language.English)
	value, _ := amount.Round(2).Float64()
	return printer.Sprintf("$%.2f", value)
}
