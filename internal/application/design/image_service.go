// Package design contains the design-image application services: the
// upload pipeline (validate, decode, resize variants, store, rollback
// on partial failure) and image listing with presigned download URLs.
package design

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/webp"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/design"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
	"github.com/threadcraft/backend/internal/infrastructure/storage"
)

// VariantSizes configures the longest edge, in pixels, of each
// generated rendition
type VariantSizes struct {
	Thumbnail int
	Medium    int
	Large     int
}

// DefaultVariantSizes returns the standard rendition sizes
func DefaultVariantSizes() VariantSizes {
	return VariantSizes{Thumbnail: 200, Medium: 800, Large: 1600}
}

// downloadURLTTL is how long presigned download URLs stay valid
const downloadURLTTL = 15 * time.Minute

// Principal identifies the authenticated caller of an image operation
type Principal struct {
	ID         uuid.UUID
	Name       string
	Role       identity.Role
	CustomerID *uuid.UUID
}

func (p Principal) actor() auditapp.Actor {
	return auditapp.Actor{ID: p.ID, Name: p.Name, Role: string(p.Role)}
}

// ImageService handles design image upload, listing and deletion
type ImageService struct {
	imageRepo     design.ImageRepository
	orderRepo     order.Repository
	store         storage.ObjectStorage
	recorder      *auditapp.Recorder
	sizes         VariantSizes
	maxUploadSize int64
	logger        *zap.Logger
}

// NewImageService creates a new image service. maxUploadSize of zero
// falls back to the domain bound.
func NewImageService(
	imageRepo design.ImageRepository,
	orderRepo order.Repository,
	store storage.ObjectStorage,
	recorder *auditapp.Recorder,
	sizes VariantSizes,
	maxUploadSize int64,
	logger *zap.Logger,
) *ImageService {
	if maxUploadSize <= 0 || maxUploadSize > design.MaxImageFileSize {
		maxUploadSize = design.MaxImageFileSize
	}
	return &ImageService{
		imageRepo:     imageRepo,
		orderRepo:     orderRepo,
		store:         store,
		recorder:      recorder,
		sizes:         sizes,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// UploadInput contains one image upload
type UploadInput struct {
	OrderID     uuid.UUID
	Kind        design.ImageKind
	FileName    string
	ContentType string
	Data        []byte
}

// ImageInfo is the image representation returned to callers. URLs are
// presigned and short-lived.
type ImageInfo struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	Kind         string    `json:"kind"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	URL          string    `json:"url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	MediumURL    string    `json:"medium_url,omitempty"`
	LargeURL     string    `json:"large_url,omitempty"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
}

// Upload validates the file, decodes it, generates resized variants,
// stores everything and records the image. If any store write fails,
// the keys written so far are deleted before the error is returned.
func (s *ImageService) Upload(ctx context.Context, principal Principal, input UploadInput) (*ImageInfo, error) {
	if err := design.ValidateFileName(input.FileName); err != nil {
		return nil, err
	}
	if err := design.ValidateContentType(input.ContentType); err != nil {
		return nil, err
	}
	size := int64(len(input.Data))
	if err := design.ValidateFileSize(size); err != nil {
		return nil, err
	}
	if size > s.maxUploadSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum allowed size")
	}

	o, err := s.findScopedOrder(ctx, principal, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot attach images to a closed order")
	}

	// Decode before anything is stored: the bytes must actually be a
	// whitelisted image, whatever the declared content type says.
	src, err := decodeImage(input.Data, input.ContentType)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMAGE", "File is not a decodable image")
	}
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	imageID := uuid.New()
	keyPrefix := fmt.Sprintf("orders/%s/images/%s", o.ID, imageID)
	ext := fileExtension(input.FileName, input.ContentType)

	originalKey := fmt.Sprintf("%s/original%s", keyPrefix, ext)
	uploaded := make([]string, 0, 4)

	rollback := func() {
		for _, key := range uploaded {
			if err := s.store.DeleteObject(ctx, key); err != nil {
				s.logger.Error("Failed to roll back uploaded object",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}

	if err := s.store.Upload(ctx, originalKey, input.Data, input.ContentType); err != nil {
		return nil, err
	}
	uploaded = append(uploaded, originalKey)

	variants := design.VariantKeys{}

	// GIF and WebP sources keep only the original: resizing would drop
	// animation frames or is not supported by the encoder.
	if resizableContentType(input.ContentType) {
		for _, variant := range []struct {
			name string
			size int
			key  *string
		}{
			{"thumbnail", s.sizes.Thumbnail, &variants.Thumbnail},
			{"medium", s.sizes.Medium, &variants.Medium},
			{"large", s.sizes.Large, &variants.Large},
		} {
			data, err := s.renderVariant(src, variant.size, input.ContentType)
			if err != nil {
				rollback()
				return nil, err
			}
			key := fmt.Sprintf("%s/%s%s", keyPrefix, variant.name, ext)
			if err := s.store.Upload(ctx, key, data, input.ContentType); err != nil {
				rollback()
				return nil, err
			}
			uploaded = append(uploaded, key)
			*variant.key = key
		}
	}

	img, err := design.NewImage(o.ID, input.Kind, input.FileName, input.ContentType, size, originalKey, variants, principal.ID)
	if err != nil {
		rollback()
		return nil, err
	}
	img.ID = imageID
	img.SetDimensions(width, height)

	if err := s.imageRepo.Create(ctx, img); err != nil {
		rollback()
		return nil, err
	}

	s.recorder.Record(ctx, principal.actor(), "order.image_uploaded", "DesignImage", img.ID, map[string]interface{}{
		"order_id":  o.ID.String(),
		"kind":      string(img.Kind),
		"file_name": img.FileName,
	})

	s.logger.Info("Design image uploaded",
		zap.String("order_id", o.ID.String()),
		zap.String("image_id", img.ID.String()),
		zap.Int64("size", size))

	return s.toInfo(ctx, img), nil
}

// List returns the active images of an order with presigned URLs
func (s *ImageService) List(ctx context.Context, principal Principal, orderID uuid.UUID) ([]*ImageInfo, error) {
	if _, err := s.findScopedOrder(ctx, principal, orderID); err != nil {
		return nil, err
	}

	images, err := s.imageRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	infos := make([]*ImageInfo, len(images))
	for i, img := range images {
		infos[i] = s.toInfo(ctx, img)
	}
	return infos, nil
}

// Delete soft-deletes an image record and removes its stored objects.
// The image must belong to the given order. Storage cleanup is
// best-effort; a failed delete leaves an orphaned object but never a
// dangling record.
func (s *ImageService) Delete(ctx context.Context, principal Principal, orderID, imageID uuid.UUID) error {
	img, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.OrderID != orderID {
		return shared.ErrNotFound
	}

	if _, err := s.findScopedOrder(ctx, principal, img.OrderID); err != nil {
		return err
	}

	if err := img.MarkDeleted(); err != nil {
		return err
	}
	if err := s.imageRepo.Update(ctx, img); err != nil {
		return err
	}

	for _, key := range img.AllStorageKeys() {
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logger.Error("Failed to delete stored image object",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	s.recorder.Record(ctx, principal.actor(), "order.image_deleted", "DesignImage", imageID, map[string]interface{}{
		"order_id":  img.OrderID.String(),
		"file_name": img.FileName,
	})
	return nil
}

// renderVariant scales the source down so its longest edge fits the
// given size and re-encodes it in the original format
func (s *ImageService) renderVariant(src image.Image, size int, contentType string) ([]byte, error) {
	resized := imaging.Fit(src, size, size, imaging.Lanczos)

	format, err := formatForContentType(contentType)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, shared.NewDomainError("IMAGE_ENCODE_ERROR", "Failed to encode image variant")
	}
	return buf.Bytes(), nil
}

func (s *ImageService) toInfo(ctx context.Context, img *design.Image) *ImageInfo {
	info := &ImageInfo{
		ID:          img.ID,
		OrderID:     img.OrderID,
		Kind:        string(img.Kind),
		FileName:    img.FileName,
		ContentType: img.ContentType,
		FileSize:    img.FileSize,
		Width:       img.Width,
		Height:      img.Height,
		UploadedBy:  img.UploadedBy,
	}

	info.URL = s.presign(ctx, img.StorageKey)
	info.ThumbnailURL = s.presign(ctx, img.Variants.Thumbnail)
	info.MediumURL = s.presign(ctx, img.Variants.Medium)
	info.LargeURL = s.presign(ctx, img.Variants.Large)
	return info
}

func (s *ImageService) presign(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, _, err := s.store.GenerateDownloadURL(ctx, key, downloadURLTTL)
	if err != nil {
		s.logger.Error("Failed to presign download URL",
			zap.String("key", key),
			zap.Error(err))
		return ""
	}
	return url
}

func (s *ImageService) findScopedOrder(ctx context.Context, principal Principal, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch principal.Role {
	case identity.RoleAdmin, identity.RoleSalesperson:
		allowed = true
	case identity.RoleCustomer:
		allowed = principal.CustomerID != nil && *principal.CustomerID == o.CustomerID
	case identity.RoleDesigner:
		allowed = o.DesignerID != nil && *o.DesignerID == principal.ID
	case identity.RoleManufacturer:
		allowed = o.ManufacturerID != nil && *o.ManufacturerID == principal.ID
	}
	if !allowed {
		return nil, shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
	}
	return o, nil
}

// decodeImage fully decodes the upload. imaging covers jpeg, png and
// gif; webp only ships a decoder, which is all validation needs.
func decodeImage(data []byte, contentType string) (image.Image, error) {
	if strings.EqualFold(contentType, "image/webp") {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data))
}

// resizableContentType reports whether variants are generated for the
// given source type
func resizableContentType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}

func formatForContentType(contentType string) (imaging.Format, error) {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return imaging.JPEG, nil
	case "image/png":
		return imaging.PNG, nil
	}
	return imaging.JPEG, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "No encoder for content type: "+contentType)
}

// fileExtension derives a storage-key extension from the file name,
// falling back to the content type
func fileExtension(fileName, contentType string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		return ext
	}
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
