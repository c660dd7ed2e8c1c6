package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/catalog"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormCatalogItemRepository implements catalog.ItemRepository using GORM
type GormCatalogItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogItemRepository creates a new GormCatalogItemRepository
func NewGormCatalogItemRepository(db *gorm.DB) *GormCatalogItemRepository {
	return &GormCatalogItemRepository{db: db}
}

// Create creates a new catalog item
func (r *GormCatalogItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update updates an existing catalog item
func (r *GormCatalogItemRepository) Update(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).Save(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a catalog item
func (r *GormCatalogItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a catalog item by ID
func (r *GormCatalogItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKU finds a catalog item by SKU
func (r *GormCatalogItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("sku = ?", strings.ToUpper(sku)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll returns catalog items matching the filter with a total count
func (r *GormCatalogItemRepository) FindAll(ctx context.Context, filter catalog.ItemFilter) ([]*catalog.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Item{})

	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var items []*catalog.Item
	if err := query.
		Order(sortClause("catalog_items", filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ExistsBySKU checks if a SKU already exists
func (r *GormCatalogItemRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("sku = ?", strings.ToUpper(sku)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.ItemRepository = (*GormCatalogItemRepository)(nil)
