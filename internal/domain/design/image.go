package design

import (
	"strings"

	"github.com/google/uuid"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// MaxImageFileSize is the maximum allowed upload size (20MB)
const MaxImageFileSize = 20 * 1024 * 1024

// ImageKind classifies what an image attached to an order is for
type ImageKind string

const (
	ImageKindMockup     ImageKind = "mockup"     // Designer-produced mockup
	ImageKindReference  ImageKind = "reference"  // Customer-supplied reference art
	ImageKindProduction ImageKind = "production" // Print-ready production file
)

// IsValid checks if the image kind is valid
func (k ImageKind) IsValid() bool {
	switch k {
	case ImageKindMockup, ImageKindReference, ImageKindProduction:
		return true
	}
	return false
}

// ImageStatus represents the status of a design image
type ImageStatus string

const (
	ImageStatusActive  ImageStatus = "active"
	ImageStatusDeleted ImageStatus = "deleted"
)

// AllowedImageContentTypes is the whitelist of acceptable upload types.
// SVG stays out: it can embed script.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// VariantKeys holds the storage keys of the resized renditions of an
// image. Empty keys mean the variant was not generated (e.g. animated
// sources keep only the original).
type VariantKeys struct {
	Thumbnail string `gorm:"column:thumbnail_key;type:varchar(500)"`
	Medium    string `gorm:"column:medium_key;type:varchar(500)"`
	Large     string `gorm:"column:large_key;type:varchar(500)"`
}

// All returns the non-empty variant keys
func (v VariantKeys) All() []string {
	keys := make([]string, 0, 3)
	for _, k := range []string{v.Thumbnail, v.Medium, v.Large} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Image is a design artifact attached to an order, stored in object
// storage as the original plus generated size variants.
type Image struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	Kind        ImageKind   `gorm:"type:varchar(20);not null"`
	Status      ImageStatus `gorm:"type:varchar(20);not null;default:'active'"`
	FileName    string      `gorm:"type:varchar(255);not null"`
	ContentType string      `gorm:"type:varchar(100);not null"`
	FileSize    int64       `gorm:"not null"`
	Width       int
	Height      int
	StorageKey  string      `gorm:"type:varchar(500);not null"`
	Variants    VariantKeys `gorm:"embedded"`
	UploadedBy  uuid.UUID   `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Image) TableName() string {
	return "design_images"
}

// NewImage creates an active design image record
func NewImage(orderID uuid.UUID, kind ImageKind, fileName, contentType string, fileSize int64, storageKey string, variants VariantKeys, uploadedBy uuid.UUID) (*Image, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_IMAGE_KIND", "Unknown image kind: "+string(kind))
	}
	if err := ValidateFileName(fileName); err != nil {
		return nil, err
	}
	if err := ValidateContentType(contentType); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(fileSize); err != nil {
		return nil, err
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if uploadedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Uploader is required")
	}

	return &Image{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Kind:              kind,
		Status:            ImageStatusActive,
		FileName:          fileName,
		ContentType:       contentType,
		FileSize:          fileSize,
		StorageKey:        storageKey,
		Variants:          variants,
		UploadedBy:        uploadedBy,
	}, nil
}

// SetDimensions records the decoded pixel size of the original
func (i *Image) SetDimensions(width, height int) {
	i.Width = width
	i.Height = height
	i.Touch()
}

// MarkDeleted soft-deletes the image record
func (i *Image) MarkDeleted() error {
	if i.Status == ImageStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Image is already deleted")
	}

	i.Status = ImageStatusDeleted
	i.Touch()
	i.IncrementVersion()

	return nil
}

// AllStorageKeys returns the original key plus all variant keys
func (i *Image) AllStorageKeys() []string {
	return append([]string{i.StorageKey}, i.Variants.All()...)
}

// ValidateFileName checks an uploaded file name
func ValidateFileName(fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	if strings.ContainsAny(fileName, "/\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}

// ValidateContentType checks the upload against the image whitelist
func ValidateContentType(contentType string) error {
	if !AllowedImageContentTypes[strings.ToLower(contentType)] {
		return shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "Content type not allowed: "+contentType)
	}
	return nil
}

// ValidateFileSize checks the upload size bound
func ValidateFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if size > MaxImageFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum allowed size")
	}
	return nil
}
