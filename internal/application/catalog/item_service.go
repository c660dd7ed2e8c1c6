// Package catalog contains the catalog-management application services.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/catalog"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// ItemService handles catalog item management
type ItemService struct {
	itemRepo  catalog.ItemRepository
	orderRepo order.Repository
	recorder  *auditapp.Recorder
	logger    *zap.Logger
}

// NewItemService creates a new catalog item service
func NewItemService(
	itemRepo catalog.ItemRepository,
	orderRepo order.Repository,
	recorder *auditapp.Recorder,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		recorder:  recorder,
		logger:    logger,
	}
}

// Create creates a new catalog item with a unique SKU
func (s *ItemService) Create(ctx context.Context, actor auditapp.Actor, input CreateItemInput) (*ItemInfo, error) {
	exists, err := s.itemRepo.ExistsBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SKU_TAKEN", "An item with this SKU already exists")
	}

	item, err := catalog.NewItem(input.SKU, input.Name, input.BasePrice)
	if err != nil {
		return nil, err
	}
	if input.Category != "" || input.Description != "" || input.Fabric != "" {
		if err := item.Update(input.Name, input.Category, input.Description, input.Fabric); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "catalog_item.created", "CatalogItem", item.ID, map[string]interface{}{
		"sku":  item.SKU,
		"name": item.Name,
	})

	s.logger.Info("Catalog item created",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU))

	info := NewItemInfo(item)
	return &info, nil
}

// Get returns one catalog item
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*ItemInfo, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := NewItemInfo(item)
	return &info, nil
}

// GetBySKU returns one catalog item by SKU
func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*ItemInfo, error) {
	item, err := s.itemRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	info := NewItemInfo(item)
	return &info, nil
}

// List returns catalog items matching the filter
func (s *ItemService) List(ctx context.Context, input ListItemsInput) ([]ItemInfo, int64, error) {
	items, total, err := s.itemRepo.FindAll(ctx, input.Filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]ItemInfo, len(items))
	for i, item := range items {
		infos[i] = NewItemInfo(item)
	}
	return infos, total, nil
}

// Update updates a catalog item's fields. Order lines created earlier
// keep the values frozen at order time.
func (s *ItemService) Update(ctx context.Context, actor auditapp.Actor, input UpdateItemInput) (*ItemInfo, error) {
	item, err := s.itemRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil || input.Category != nil || input.Description != nil || input.Fabric != nil {
		name := item.Name
		if input.Name != nil {
			name = *input.Name
		}
		category := item.Category
		if input.Category != nil {
			category = *input.Category
		}
		description := item.Description
		if input.Description != nil {
			description = *input.Description
		}
		fabric := item.Fabric
		if input.Fabric != nil {
			fabric = *input.Fabric
		}
		if err := item.Update(name, category, description, fabric); err != nil {
			return nil, err
		}
	}

	if input.BasePrice != nil {
		if err := item.SetBasePrice(*input.BasePrice); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "catalog_item.updated", "CatalogItem", item.ID, nil)

	info := NewItemInfo(item)
	return &info, nil
}

// SetImage attaches uploaded image storage keys to a catalog item
func (s *ItemService) SetImage(ctx context.Context, actor auditapp.Actor, id uuid.UUID, imageKey, thumbnailKey string) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	item.SetImage(imageKey, thumbnailKey)

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "catalog_item.image_set", "CatalogItem", id, map[string]interface{}{
		"image_key": imageKey,
	})
	return nil
}

// Activate makes an inactive item orderable again
func (s *ItemService) Activate(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, "catalog_item.activated", func(item *catalog.Item) error {
		return item.Activate()
	})
}

// Deactivate hides an item from ordering
func (s *ItemService) Deactivate(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, "catalog_item.deactivated", func(item *catalog.Item) error {
		return item.Deactivate()
	})
}

// Discontinue permanently retires an item
func (s *ItemService) Discontinue(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, "catalog_item.discontinued", func(item *catalog.Item) error {
		return item.Discontinue()
	})
}

// Delete hard-deletes a catalog item. Items referenced by any order line
// cannot be deleted; discontinue them instead.
func (s *ItemService) Delete(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.orderRepo.ExistsByCatalogItem(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewDomainError("ITEM_IN_USE", "Item is referenced by existing orders and cannot be deleted. Discontinue it instead")
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "catalog_item.deleted", "CatalogItem", id, map[string]interface{}{
		"sku": item.SKU,
	})

	s.logger.Info("Catalog item deleted",
		zap.String("item_id", id.String()),
		zap.String("sku", item.SKU))
	return nil
}

func (s *ItemService) transition(ctx context.Context, actor auditapp.Actor, id uuid.UUID, action string, fn func(*catalog.Item) error) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(item); err != nil {
		return err
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, action, "CatalogItem", id, nil)
	return nil
}
