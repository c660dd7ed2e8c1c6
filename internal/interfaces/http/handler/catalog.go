package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	catalogapp "github.com/threadcraft/backend/internal/application/catalog"
	"github.com/threadcraft/backend/internal/domain/catalog"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles catalog item endpoints
type CatalogHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(itemService *catalogapp.ItemService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(log),
		itemService: itemService,
	}
}

// CreateItemRequest is the catalog item creation request body
type CreateItemRequest struct {
	SKU         string          `json:"sku" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=200"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Fabric      string          `json:"fabric"`
	BasePrice   decimal.Decimal `json:"base_price" binding:"required"`
}

// UpdateItemRequest carries a partial catalog item update. The SKU is
// immutable after creation.
type UpdateItemRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Fabric      *string          `json:"fabric"`
	BasePrice   *decimal.Decimal `json:"base_price"`
}

// SetItemImageRequest sets the stored image keys of a catalog item
type SetItemImageRequest struct {
	ImageKey     string `json:"image_key" binding:"required"`
	ThumbnailKey string `json:"thumbnail_key"`
}

// ListItemsRequest holds catalog listing query parameters
type ListItemsRequest struct {
	dto.ListRequest
	Category string `form:"category"`
	Status   string `form:"status"`
}

// Create handles POST /catalog/items
func (h *CatalogHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.itemService.Create(c.Request.Context(), actor, catalogapp.CreateItemInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Fabric:      req.Fabric,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List handles GET /catalog/items
func (h *CatalogHandler) List(c *gin.Context) {
	var req ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	filter := catalog.ItemFilter{
		Keyword:   req.Search,
		Category:  req.Category,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortDir,
	}
	if req.Status != "" {
		status := catalog.ItemStatus(req.Status)
		filter.Status = &status
	}

	infos, total, err := h.itemService.List(c.Request.Context(), catalogapp.ListItemsInput{Filter: filter})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /catalog/items/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	info, err := h.itemService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Update handles PATCH /catalog/items/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.itemService.Update(c.Request.Context(), actor, catalogapp.UpdateItemInput{
		ItemID:      id,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Fabric:      req.Fabric,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// SetImage handles PUT /catalog/items/:id/image
func (h *CatalogHandler) SetImage(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SetItemImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.itemService.SetImage(c.Request.Context(), actor, id, req.ImageKey, req.ThumbnailKey); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate handles POST /catalog/items/:id/activate
func (h *CatalogHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.itemService.Activate)
}

// Deactivate handles POST /catalog/items/:id/deactivate
func (h *CatalogHandler) Deactivate(c *gin.Context) {
	h.lifecycle(c, h.itemService.Deactivate)
}

// Discontinue handles POST /catalog/items/:id/discontinue
func (h *CatalogHandler) Discontinue(c *gin.Context) {
	h.lifecycle(c, h.itemService.Discontinue)
}

// Delete handles DELETE /catalog/items/:id. Items referenced by any
// order cannot be deleted.
func (h *CatalogHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.itemService.Delete)
}

func (h *CatalogHandler) lifecycle(c *gin.Context, op func(context.Context, auditapp.Actor, uuid.UUID) error) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
