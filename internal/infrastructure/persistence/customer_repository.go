package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/crm"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormCustomerRepository implements crm.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *crm.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// Update updates an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, customer *crm.Customer) error {
	result := r.db.WithContext(ctx).Save(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	var customer crm.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds an active customer by email
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*crm.Customer, error) {
	var customer crm.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND status = ?", strings.ToLower(email), crm.CustomerStatusActive).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll returns customers matching the filter with a total count
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter crm.CustomerFilter) ([]*crm.Customer, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Customer{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var customers []*crm.Customer
	if err := query.
		Order(sortClause("customers", filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// Count returns the number of customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter crm.CustomerFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Customer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter crm.CustomerFilter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

var _ crm.CustomerRepository = (*GormCustomerRepository)(nil)
