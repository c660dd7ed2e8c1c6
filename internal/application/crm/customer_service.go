// Package crm contains the customer-management application services.
package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/crm"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// CustomerService handles customer record management. Salespeople work
// on their own records; admins see everything.
type CustomerService struct {
	customerRepo crm.CustomerRepository
	recorder     *auditapp.Recorder
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo crm.CustomerRepository, recorder *auditapp.Recorder, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new customer owned by the acting salesperson
func (s *CustomerService) Create(ctx context.Context, actor auditapp.Actor, input CreateCustomerInput) (*CustomerInfo, error) {
	if input.Email != "" {
		if existing, err := s.customerRepo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
			return nil, shared.NewDomainError("CUSTOMER_EXISTS", "An active customer with this email already exists")
		} else if err != nil && err != shared.ErrNotFound {
			return nil, err
		}
	}

	customer, err := crm.NewCustomer(input.Name, input.Email, actor.ID)
	if err != nil {
		return nil, err
	}
	if input.Company != "" {
		if err := customer.Update(input.Name, input.Company); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" || input.Address != "" {
		if err := customer.SetContact(input.Email, input.Phone, input.Address); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		customer.SetNotes(input.Notes)
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "customer.created", "Customer", customer.ID, map[string]interface{}{
		"name": customer.Name,
	})

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("name", customer.Name))

	info := NewCustomerInfo(customer)
	return &info, nil
}

// Get returns one customer, enforcing owner scoping for salespeople
func (s *CustomerService) Get(ctx context.Context, actor auditapp.Actor, id uuid.UUID) (*CustomerInfo, error) {
	customer, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	info := NewCustomerInfo(customer)
	return &info, nil
}

// List returns customers matching the filter. Salespeople only see the
// records they own.
func (s *CustomerService) List(ctx context.Context, actor auditapp.Actor, input ListCustomersInput) ([]CustomerInfo, int64, error) {
	filter := input.Filter
	if actor.Role != string(identity.RoleAdmin) {
		ownerID := actor.ID
		filter.CreatedBy = &ownerID
	}

	customers, total, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]CustomerInfo, len(customers))
	for i, customer := range customers {
		infos[i] = NewCustomerInfo(customer)
	}
	return infos, total, nil
}

// Update updates a customer's fields. Nil inputs leave fields unchanged.
func (s *CustomerService) Update(ctx context.Context, actor auditapp.Actor, input UpdateCustomerInput) (*CustomerInfo, error) {
	customer, err := s.findScoped(ctx, actor, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil || input.Company != nil {
		name := customer.Name
		if input.Name != nil {
			name = *input.Name
		}
		company := customer.Company
		if input.Company != nil {
			company = *input.Company
		}
		if err := customer.Update(name, company); err != nil {
			return nil, err
		}
	}

	if input.Email != nil || input.Phone != nil || input.Address != nil {
		email := customer.Email
		if input.Email != nil {
			email = *input.Email
		}
		phone := customer.Phone
		if input.Phone != nil {
			phone = *input.Phone
		}
		address := customer.Address
		if input.Address != nil {
			address = *input.Address
		}
		if err := customer.SetContact(email, phone, address); err != nil {
			return nil, err
		}
	}

	if input.Notes != nil {
		customer.SetNotes(*input.Notes)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "customer.updated", "Customer", customer.ID, nil)

	info := NewCustomerInfo(customer)
	return &info, nil
}

// Archive soft-deletes a customer. Existing orders keep their reference.
func (s *CustomerService) Archive(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	customer, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := customer.Archive(); err != nil {
		return err
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "customer.archived", "Customer", id, nil)
	return nil
}

// Restore re-activates an archived customer
func (s *CustomerService) Restore(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	customer, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := customer.Restore(); err != nil {
		return err
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "customer.restored", "Customer", id, nil)
	return nil
}

// findScoped loads a customer and checks the actor may touch it
func (s *CustomerService) findScoped(ctx context.Context, actor auditapp.Actor, id uuid.UUID) (*crm.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != string(identity.RoleAdmin) && customer.CreatedBy != actor.ID {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this customer")
	}
	return customer, nil
}
