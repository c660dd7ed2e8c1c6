package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	crmapp "github.com/threadcraft/backend/internal/application/crm"
	"github.com/threadcraft/backend/internal/domain/crm"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
)

// CustomerHandler handles CRM customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *crmapp.CustomerService
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(customerService *crmapp.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler:     NewBaseHandler(log),
		customerService: customerService,
	}
}

// CreateCustomerRequest is the customer creation request body
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Company string `json:"company"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// UpdateCustomerRequest carries a partial customer update
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Company *string `json:"company"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ListCustomersRequest holds customer listing query parameters
type ListCustomersRequest struct {
	dto.ListRequest
	Status string `form:"status"`
}

// Create handles POST /crm/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.customerService.Create(c.Request.Context(), actor, crmapp.CreateCustomerInput{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List handles GET /crm/customers
func (h *CustomerHandler) List(c *gin.Context) {
	var req ListCustomersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	filter := crm.CustomerFilter{
		Keyword:   req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortDir,
	}
	if req.Status != "" {
		status := crm.CustomerStatus(req.Status)
		filter.Status = &status
	}

	infos, total, err := h.customerService.List(c.Request.Context(), actor, crmapp.ListCustomersInput{Filter: filter})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /crm/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.customerService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Update handles PATCH /crm/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.customerService.Update(c.Request.Context(), actor, crmapp.UpdateCustomerInput{
		CustomerID: id,
		Name:       req.Name,
		Company:    req.Company,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Archive handles POST /crm/customers/:id/archive
func (h *CustomerHandler) Archive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.customerService.Archive(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Restore handles POST /crm/customers/:id/restore
func (h *CustomerHandler) Restore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.customerService.Restore(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
