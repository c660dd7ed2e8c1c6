package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/threadcraft/backend/internal/application/identity"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
)

// InvitationHandler handles invitation endpoints
type InvitationHandler struct {
	BaseHandler
	invitationService *identityapp.InvitationService
}

// NewInvitationHandler creates an invitation handler
func NewInvitationHandler(invitationService *identityapp.InvitationService, log *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		BaseHandler:       NewBaseHandler(log),
		invitationService: invitationService,
	}
}

// CreateInvitationRequest is the invitation creation request body
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest is the invitation acceptance request body
type AcceptInvitationRequest struct {
	Token       string `json:"token" binding:"required"`
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

// ListInvitationsRequest holds invitation listing query parameters
type ListInvitationsRequest struct {
	dto.ListRequest
	Status string `form:"status"`
	Email  string `form:"email"`
}

// Create handles POST /identity/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	result, err := h.invitationService.Create(c.Request.Context(), actor, identityapp.CreateInvitationInput{
		Email: req.Email,
		Role:  identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List handles GET /identity/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	var req ListInvitationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	filter := identity.InvitationFilter{
		Email:     req.Email,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortDir,
	}
	if req.Status != "" {
		status := identity.InvitationStatus(req.Status)
		filter.Status = &status
	}

	infos, total, err := h.invitationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /identity/invitations/:id
func (h *InvitationHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	info, err := h.invitationService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Revoke handles DELETE /identity/invitations/:id
func (h *InvitationHandler) Revoke(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByToken handles GET /identity/invitations/token/:token. It is
// public so an invitee can preview the invitation before registering.
func (h *InvitationHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.Error(c, dto.ErrCodeInvalidInput, "Token is required")
		return
	}

	info, err := h.invitationService.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Accept handles POST /identity/invitations/accept. It is public:
// the token is the credential.
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.invitationService.Accept(c.Request.Context(), identityapp.AcceptInvitationInput{
		Token:       req.Token,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}
