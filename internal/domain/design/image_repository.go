package design

import (
	"context"

	"github.com/google/uuid"
)

// ImageRepository defines the interface for design image persistence
type ImageRepository interface {
	// Create creates a new image record
	Create(ctx context.Context, image *Image) error

	// Update updates an existing image record
	Update(ctx context.Context, image *Image) error

	// FindByID finds an image by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Image, error)

	// FindByOrderID returns the active images of an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Image, error)

	// CountByOrderID returns the number of active images on an order
	CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
}
