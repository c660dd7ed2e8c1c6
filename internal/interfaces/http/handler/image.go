package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	designapp "github.com/threadcraft/backend/internal/application/design"
	"github.com/threadcraft/backend/internal/domain/design"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/interfaces/http/dto"
	"github.com/threadcraft/backend/internal/interfaces/http/middleware"
)

// ImageHandler handles design image endpoints
type ImageHandler struct {
	BaseHandler
	imageService *designapp.ImageService
	userRepo     identity.UserRepository
}

// NewImageHandler creates an image handler
func NewImageHandler(imageService *designapp.ImageService, userRepo identity.UserRepository, log *zap.Logger) *ImageHandler {
	return &ImageHandler{
		BaseHandler:  NewBaseHandler(log),
		imageService: imageService,
		userRepo:     userRepo,
	}
}

func (h *ImageHandler) principal(c *gin.Context) (designapp.Principal, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return designapp.Principal{}, false
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Error(c, dto.ErrCodeTokenInvalid, "Invalid token claims")
		return designapp.Principal{}, false
	}

	p := designapp.Principal{
		ID:   userID,
		Name: claims.Username,
		Role: identity.Role(claims.Role),
	}

	if p.Role == identity.RoleCustomer {
		user, err := h.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			h.Error(c, dto.ErrCodeUnauthorized, "User account not found")
			return designapp.Principal{}, false
		}
		p.CustomerID = user.CustomerID
	}

	return p, true
}

// Upload handles POST /orders/:id/images. The request is multipart:
// a "file" part plus a "kind" form value (mockup, reference, production).
func (h *ImageHandler) Upload(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, dto.ErrCodeBadRequest, "Missing file upload")
		return
	}

	kind := design.ImageKind(c.PostForm("kind"))
	if kind == "" {
		kind = design.ImageKindReference
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, dto.ErrCodeBadRequest, "Unable to read file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.Error(c, dto.ErrCodeBadRequest, "Unable to read file upload")
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	info, err := h.imageService.Upload(c.Request.Context(), principal, designapp.UploadInput{
		OrderID:     orderID,
		Kind:        kind,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List handles GET /orders/:id/images
func (h *ImageHandler) List(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	infos, err := h.imageService.List(c.Request.Context(), principal, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, infos)
}

// Delete handles DELETE /orders/:id/images/:imageId
func (h *ImageHandler) Delete(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid image ID format")
		return
	}

	principal, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), principal, orderID, imageID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
