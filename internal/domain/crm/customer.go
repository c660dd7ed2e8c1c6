package crm

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer record
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusArchived CustomerStatus = "archived"
)

// Customer is the contact record orders are placed against. CreatedBy is
// the salesperson (or admin) who owns the record.
type Customer struct {
	shared.BaseAggregateRoot
	Name      string         `gorm:"type:varchar(200);not null"`
	Company   string         `gorm:"type:varchar(200)"`
	Email     string         `gorm:"type:varchar(200);index"`
	Phone     string         `gorm:"type:varchar(50);index"`
	Address   string         `gorm:"type:text"`
	Notes     string         `gorm:"type:text"`
	Status    CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer record
func NewCustomer(name, email string, createdBy uuid.UUID) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if email != "" {
		if err := validateCustomerEmail(email); err != nil {
			return nil, err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Creator is required")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		Status:            CustomerStatusActive,
		CreatedBy:         createdBy,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, company string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if company != "" && len(company) > 200 {
		return shared.NewDomainError("INVALID_COMPANY", "Company cannot exceed 200 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.Company = strings.TrimSpace(company)
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetContact sets the customer's contact information
func (c *Customer) SetContact(email, phone, address string) error {
	if email != "" {
		if err := validateCustomerEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.Address = strings.TrimSpace(address)
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetNotes sets free-form notes on the customer
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
}

// Archive soft-deletes the customer record
func (c *Customer) Archive() error {
	if c.Status == CustomerStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Customer is already archived")
	}

	c.Status = CustomerStatusArchived
	c.Touch()
	c.IncrementVersion()

	return nil
}

// Restore re-activates an archived customer record
func (c *Customer) Restore() error {
	if c.Status != CustomerStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Customer is not archived")
	}

	c.Status = CustomerStatusActive
	c.Touch()
	c.IncrementVersion()

	return nil
}

// IsActive reports whether the customer can be attached to new orders
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateCustomerEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
