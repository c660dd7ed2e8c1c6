package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	identityapp "github.com/threadcraft/backend/internal/application/identity"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a user handler
func NewUserHandler(userService *identityapp.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(log),
		userService: userService,
	}
}

// CreateUserRequest is the direct user creation request body
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required"`
}

// UpdateUserRequest carries a partial profile update
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	DisplayName *string `json:"display_name"`
}

// ChangeRoleRequest is the role change request body
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// LinkCustomerRequest links a customer-role user to a CRM record
type LinkCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// ListUsersRequest holds user listing query parameters
type ListUsersRequest struct {
	dto.ListRequest
	Role   string `form:"role"`
	Status string `form:"status"`
}

// Create handles POST /identity/users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.userService.Create(c.Request.Context(), actor, identityapp.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Role:        identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List handles GET /identity/users
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	filter := identity.UserFilter{
		Keyword:   req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortDir,
	}
	if req.Role != "" {
		role := identity.Role(req.Role)
		filter.Role = &role
	}
	if req.Status != "" {
		status := identity.UserStatus(req.Status)
		filter.Status = &status
	}

	infos, total, err := h.userService.List(c.Request.Context(), identityapp.ListUsersInput{Filter: filter})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /identity/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	info, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Update handles PATCH /identity/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.userService.Update(c.Request.Context(), actor, identityapp.UpdateUserInput{
		UserID:      id,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// ChangeRole handles PUT /identity/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	info, err := h.userService.ChangeRole(c.Request.Context(), actor, identityapp.ChangeRoleInput{
		UserID: id,
		Role:   identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Activate handles POST /identity/users/:id/activate
func (h *UserHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.userService.Activate)
}

// Deactivate handles POST /identity/users/:id/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.lifecycle(c, h.userService.Deactivate)
}

// Delete handles DELETE /identity/users/:id. The account must already
// be deactivated.
func (h *UserHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.userService.Delete)
}

// Unlock handles POST /identity/users/:id/unlock
func (h *UserHandler) Unlock(c *gin.Context) {
	h.lifecycle(c, h.userService.Unlock)
}

// LinkCustomer handles PUT /identity/users/:id/customer
func (h *UserHandler) LinkCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req LinkCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid customer ID format")
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.userService.LinkCustomer(c.Request.Context(), actor, id, customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// lifecycle runs a single-ID state-change operation
func (h *UserHandler) lifecycle(c *gin.Context, op func(context.Context, auditapp.Actor, uuid.UUID) error) {
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
