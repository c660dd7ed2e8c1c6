package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/design"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormImageRepository implements design.ImageRepository using GORM
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// Create creates a new image record
func (r *GormImageRepository) Create(ctx context.Context, image *design.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// Update updates an existing image record
func (r *GormImageRepository) Update(ctx context.Context, image *design.Image) error {
	result := r.db.WithContext(ctx).Save(image)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an image by ID
func (r *GormImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*design.Image, error) {
	var image design.Image
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// FindByOrderID returns the active images of an order, newest first
func (r *GormImageRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*design.Image, error) {
	var images []*design.Image
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, design.ImageStatusActive).
		Order("created_at DESC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// CountByOrderID returns the number of active images on an order
func (r *GormImageRepository) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&design.Image{}).
		Where("order_id = ? AND status = ?", orderID, design.ImageStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ design.ImageRepository = (*GormImageRepository)(nil)
