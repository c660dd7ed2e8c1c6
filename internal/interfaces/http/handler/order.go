package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	orderapp "github.com/threadcraft/backend/internal/application/order"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
	"github.com/threadcraft/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
	userRepo     identity.UserRepository
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orderService *orderapp.Service, userRepo identity.UserRepository, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  NewBaseHandler(log),
		orderService: orderService,
		userRepo:     userRepo,
	}
}

// OrderItemRequest is one desired order line. A present ID updates an
// existing line; an absent one adds a new line priced from the catalog.
type OrderItemRequest struct {
	ID            *string `json:"id" binding:"omitempty,uuid"`
	CatalogItemID string  `json:"catalog_item_id" binding:"required,uuid"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest is the order creation request body
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" binding:"required,uuid"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest carries a partial order update. Omitting items
// leaves the lines untouched.
type UpdateOrderRequest struct {
	Notes *string            `json:"notes"`
	Items []OrderItemRequest `json:"items" binding:"omitempty,dive"`
}

// AssignRequest assigns a staff member to an order
type AssignRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// CancelOrderRequest cancels an order; the reason is mandatory
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListOrdersRequest holds order listing query parameters
type ListOrdersRequest struct {
	dto.ListRequest
	Status     string `form:"status"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// principal resolves the authenticated caller into an order principal.
// Customer-role users are linked to their CRM record so scoping can be
// applied; the link comes from the user record, not the token.
func (h *OrderHandler) principal(c *gin.Context) (orderapp.Principal, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return orderapp.Principal{}, false
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Error(c, dto.ErrCodeTokenInvalid, "Invalid token claims")
		return orderapp.Principal{}, false
	}

	p := orderapp.Principal{
		ID:   userID,
		Name: claims.Username,
		Role: identity.Role(claims.Role),
	}

	if p.Role == identity.RoleCustomer {
		user, err := h.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			h.Error(c, dto.ErrCodeUnauthorized, "User account not found")
			return orderapp.Principal{}, false
		}
		p.CustomerID = user.CustomerID
	}

	return p, true
}

func toItemInputs(items []OrderItemRequest) ([]orderapp.ItemInput, error) {
	inputs := make([]orderapp.ItemInput, 0, len(items))
	for _, item := range items {
		catalogItemID, err := uuid.Parse(item.CatalogItemID)
		if err != nil {
			return nil, err
		}
		input := orderapp.ItemInput{
			CatalogItemID: catalogItemID,
			Size:          item.Size,
			Color:         item.Color,
			Quantity:      item.Quantity,
		}
		if item.ID != nil {
			lineID, err := uuid.Parse(*item.ID)
			if err != nil {
				return nil, err
			}
			input.ID = &lineID
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid customer ID format")
		return
	}

	items, err := toItemInputs(req.Items)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid item ID format")
		return
	}

	info, err := h.orderService.Create(c.Request.Context(), principal, orderapp.CreateOrderInput{
		CustomerID: customerID,
		Notes:      req.Notes,
		Items:      items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	filter := order.Filter{
		Keyword:   req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortDir,
	}
	if req.Status != "" {
		status := order.Status(req.Status)
		filter.Status = &status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}

	infos, total, err := h.orderService.List(c.Request.Context(), principal, orderapp.ListOrdersInput{Filter: filter})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	info, err := h.orderService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Update handles PATCH /orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	input := orderapp.UpdateOrderInput{
		OrderID: id,
		Notes:   req.Notes,
	}
	if req.Items != nil {
		items, err := toItemInputs(req.Items)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid item ID format")
			return
		}
		input.Items = items
	}

	info, err := h.orderService.Update(c.Request.Context(), principal, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Delete handles DELETE /orders/:id. Only draft orders can be deleted.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// SubmitDesign handles POST /orders/:id/submit-design
func (h *OrderHandler) SubmitDesign(c *gin.Context) {
	h.transition(c, h.orderService.SubmitDesign)
}

// StartDesign handles POST /orders/:id/start-design
func (h *OrderHandler) StartDesign(c *gin.Context) {
	h.transition(c, h.orderService.StartDesign)
}

// ApproveDesign handles POST /orders/:id/approve-design
func (h *OrderHandler) ApproveDesign(c *gin.Context) {
	h.transition(c, h.orderService.ApproveDesign)
}

// StartProduction handles POST /orders/:id/start-production
func (h *OrderHandler) StartProduction(c *gin.Context) {
	h.transition(c, h.orderService.StartProduction)
}

// Complete handles POST /orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	info, err := h.orderService.Cancel(c.Request.Context(), principal, orderapp.CancelInput{
		OrderID: id,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// AssignDesigner handles PUT /orders/:id/assign/designer
func (h *OrderHandler) AssignDesigner(c *gin.Context) {
	h.assign(c, h.orderService.AssignDesigner)
}

// AssignManufacturer handles PUT /orders/:id/assign/manufacturer
func (h *OrderHandler) AssignManufacturer(c *gin.Context) {
	h.assign(c, h.orderService.AssignManufacturer)
}

// Stats handles GET /orders/stats/summary
func (h *OrderHandler) Stats(c *gin.Context) {
	summary, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *OrderHandler) transition(c *gin.Context, op func(context.Context, orderapp.Principal, uuid.UUID) (*orderapp.Info, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	info, err := op(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

func (h *OrderHandler) assign(c *gin.Context, op func(context.Context, orderapp.Principal, orderapp.AssignInput) (*orderapp.Info, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid user ID format")
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	info, err := op(c.Request.Context(), principal, orderapp.AssignInput{
		OrderID: id,
		UserID:  userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}
