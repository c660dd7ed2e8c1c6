package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/audit"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
)

// AuditHandler exposes read access to the audit trail
type AuditHandler struct {
	BaseHandler
	queryService *auditapp.QueryService
}

// NewAuditHandler creates an audit handler
func NewAuditHandler(queryService *auditapp.QueryService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(log),
		queryService: queryService,
	}
}

// ListLogsRequest holds audit log query parameters
type ListLogsRequest struct {
	dto.ListRequest
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// LogInfo is one audit record as returned to clients
type LogInfo struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actor_id"`
	ActorName  string                 `json:"actor_name"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	Detail     map[string]interface{} `json:"detail"`
	CreatedAt  time.Time              `json:"created_at"`
}

func newLogInfo(log *audit.Log) LogInfo {
	return LogInfo{
		ID:         log.ID,
		ActorID:    log.ActorID,
		ActorName:  log.ActorName,
		ActorRole:  log.ActorRole,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Detail:     log.DetailMap(),
		CreatedAt:  log.CreatedAt,
	}
}

// List handles GET /audit/logs
func (h *AuditHandler) List(c *gin.Context) {
	var req ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Normalize()

	filter := audit.LogFilter{
		Action:     req.Action,
		EntityType: req.EntityType,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid actor ID format")
			return
		}
		filter.ActorID = &actorID
	}
	if req.EntityID != "" {
		entityID, err := uuid.Parse(req.EntityID)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid entity ID format")
			return
		}
		filter.EntityID = &entityID
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid 'from' timestamp, expected RFC3339")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid 'to' timestamp, expected RFC3339")
			return
		}
		filter.To = &to
	}

	logs, total, err := h.queryService.List(c.Request.Context(), auditapp.ListInput{Filter: filter})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	infos := make([]LogInfo, len(logs))
	for i, log := range logs {
		infos[i] = newLogInfo(log)
	}

	h.SuccessWithMeta(c, infos, total, req.Page, req.PageSize)
}

// Get handles GET /audit/logs/:id
func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	log, err := h.queryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newLogInfo(log))
}
