package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/shared"
	"github.com/threadcraft/backend/internal/infrastructure/logger"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
	"github.com/threadcraft/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler
func NewBaseHandler(log *zap.Logger) BaseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return BaseHandler{logger: log}
}

// getRequestID extracts the request ID from context
func (h *BaseHandler) getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 response for a binding failure
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	resp := dto.NewValidationErrorResponse("Request validation failed", h.getRequestID(c), bindingDetails(err))
	c.JSON(http.StatusBadRequest, resp)
}

// HandleError converts an application error into an HTTP response.
// Domain errors carry their own code; anything else is an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, code, domainErr.Message)
		return
	}

	log := logger.FromContext(c.Request.Context())
	log.Error("Unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", h.getRequestID(c)),
		zap.Error(err))

	h.Error(c, dto.ErrCodeInternal, "An internal error occurred")
}

// parseID binds and parses the :id path parameter as a UUID
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// currentActor builds an audit actor from the authenticated JWT claims
func (h *BaseHandler) currentActor(c *gin.Context) (auditapp.Actor, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return auditapp.Actor{}, false
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Error(c, dto.ErrCodeTokenInvalid, "Invalid token claims")
		return auditapp.Actor{}, false
	}

	return auditapp.Actor{
		ID:   userID,
		Name: claims.Username,
		Role: claims.Role,
	}, true
}

// bindingDetails extracts per-field messages from a binding error
func bindingDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return details
	}
	return []dto.ValidationDetail{{Message: err.Error()}}
}
