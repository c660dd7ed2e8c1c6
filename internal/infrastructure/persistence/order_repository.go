package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create creates a new order with its items. Two writers racing on the
// same order number trip the unique index; that surfaces as
// ORDER_NUMBER_TAKEN so callers can pick a fresh number and retry.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ORDER_NUMBER_TAKEN", "Order number is already in use")
		}
		return err
	}
	return nil
}

// Save persists the order and reconciles its items in one transaction.
// Lines missing from the aggregate are deleted, the rest upserted; a
// failure anywhere rolls the whole write back.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}
		return r.reconcileItems(tx, o)
	})
}

// SaveWithLock persists the order with optimistic locking on Version
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := o.Version
		o.Version++
		o.UpdatedAt = time.Now()

		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, currentVersion).
			Select("*").
			Omit("id", "created_at", "Items").
			Updates(o)
		if result.Error != nil {
			o.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			o.Version = currentVersion
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.reconcileItems(tx, o)
	})
}

// reconcileItems deletes removed lines and upserts the current ones
func (r *GormOrderRepository) reconcileItems(tx *gorm.DB, o *order.Order) error {
	if o.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.Item{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete hard-deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.Item{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds an order by ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its business number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll returns orders matching the filter with a total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.Filter) ([]*order.Order, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var orders []*order.Order
	if err := query.
		Preload("Items").
		Order(sortClause("orders", filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// CountByStatus returns the number of orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	type statusCount struct {
		Status order.Status
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumCompletedTotal returns the summed total of completed orders
func (r *GormOrderRepository) SumCompletedTotal(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("SUM(total)").
		Where("status = ?", order.StatusCompleted).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// NextSequence returns the next order sequence number for a year by
// inspecting the highest existing order number with that year's prefix
func (r *GormOrderRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	prefix := fmt.Sprintf("TC-%d-", year)

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Scan(&lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if lastNumber == "" {
		return 1, nil
	}

	seq, err := strconv.ParseInt(strings.TrimPrefix(lastNumber, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed order number %q: %w", lastNumber, err)
	}
	return seq + 1, nil
}

// ExistsByCatalogItem reports whether any order line references the
// given catalog item
func (r *GormOrderRepository) ExistsByCatalogItem(ctx context.Context, catalogItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Item{}).
		Where("catalog_item_id = ?", catalogItemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.Filter) *gorm.DB {
	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SalespersonID != nil {
		query = query.Where("salesperson_id = ?", *filter.SalespersonID)
	}
	if filter.DesignerID != nil {
		query = query.Where("designer_id = ?", *filter.DesignerID)
	}
	if filter.ManufacturerID != nil {
		query = query.Where("manufacturer_id = ?", *filter.ManufacturerID)
	}
	return query
}

var _ order.Repository = (*GormOrderRepository)(nil)
