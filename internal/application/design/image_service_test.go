package design

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/audit"
	"github.com/threadcraft/backend/internal/domain/design"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
	"github.com/threadcraft/backend/internal/infrastructure/storage"
)

// memoryImageRepository is an in-memory design.ImageRepository
type memoryImageRepository struct {
	mu     sync.Mutex
	images map[uuid.UUID]*design.Image
}

func newMemoryImageRepository() *memoryImageRepository {
	return &memoryImageRepository{images: make(map[uuid.UUID]*design.Image)}
}

func (r *memoryImageRepository) Create(_ context.Context, img *design.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[img.ID] = img
	return nil
}

func (r *memoryImageRepository) Update(_ context.Context, img *design.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.images[img.ID]; !ok {
		return shared.ErrNotFound
	}
	r.images[img.ID] = img
	return nil
}

func (r *memoryImageRepository) FindByID(_ context.Context, id uuid.UUID) (*design.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.images[id]; ok {
		return img, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryImageRepository) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]*design.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*design.Image, 0)
	for _, img := range r.images {
		if img.OrderID == orderID && img.Status == design.ImageStatusActive {
			matched = append(matched, img)
		}
	}
	return matched, nil
}

func (r *memoryImageRepository) CountByOrderID(_ context.Context, orderID uuid.UUID) (int64, error) {
	images, _ := r.FindByOrderID(context.Background(), orderID)
	return int64(len(images)), nil
}

// stubOrderRepository serves a fixed set of orders
type stubOrderRepository struct {
	order.Repository
	orders map[uuid.UUID]*order.Order
}

func (r *stubOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

// noopLogRepository discards audit records
type noopLogRepository struct{}

func (noopLogRepository) Create(context.Context, *audit.Log) error { return nil }

func (noopLogRepository) FindByID(context.Context, uuid.UUID) (*audit.Log, error) {
	return nil, shared.ErrNotFound
}

func (noopLogRepository) FindAll(context.Context, audit.LogFilter) ([]*audit.Log, int64, error) {
	return nil, 0, nil
}

type imageTestEnv struct {
	svc       *ImageService
	imageRepo *memoryImageRepository
	store     *storage.MemoryObjectStorage
	order     *order.Order
}

func newImageTestEnv(t *testing.T) *imageTestEnv {
	t.Helper()

	o, err := order.NewOrder("TC-2026-000001", uuid.New(), "Acme Corp", decimal.NewFromFloat(0.1), uuid.New())
	require.NoError(t, err)

	imageRepo := newMemoryImageRepository()
	store := storage.NewMemoryObjectStorage()
	recorder := auditapp.NewRecorder(&noopLogRepository{}, zap.NewNop())
	orderRepo := &stubOrderRepository{orders: map[uuid.UUID]*order.Order{o.ID: o}}

	svc := NewImageService(imageRepo, orderRepo, store, recorder,
		DefaultVariantSizes(), design.MaxImageFileSize, zap.NewNop())

	return &imageTestEnv{svc: svc, imageRepo: imageRepo, store: store, order: o}
}

func testPrincipal() Principal {
	return Principal{ID: uuid.New(), Name: "sales", Role: identity.RoleSalesperson}
}

// testPNG encodes a solid-color PNG of the given size
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores original and three variants", func(t *testing.T) {
		env := newImageTestEnv(t)

		info, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindMockup,
			FileName:    "mockup.png",
			ContentType: "image/png",
			Data:        testPNG(t, 1200, 900),
		})

		require.NoError(t, err)
		assert.Equal(t, "mockup", info.Kind)
		assert.Equal(t, 1200, info.Width)
		assert.Equal(t, 900, info.Height)
		assert.NotEmpty(t, info.URL)
		assert.NotEmpty(t, info.ThumbnailURL)
		assert.NotEmpty(t, info.MediumURL)
		assert.NotEmpty(t, info.LargeURL)
		// Original plus thumbnail, medium and large
		assert.Equal(t, 4, env.store.Len())

		stored, err := env.imageRepo.FindByID(ctx, info.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Variants.Thumbnail)

		thumbData, _, ok := env.store.Get(stored.Variants.Thumbnail)
		require.True(t, ok)
		thumb, err := png.Decode(bytes.NewReader(thumbData))
		require.NoError(t, err)
		assert.Equal(t, 200, thumb.Bounds().Dx())
		assert.Equal(t, 150, thumb.Bounds().Dy())
	})

	t.Run("gif keeps only the original", func(t *testing.T) {
		env := newImageTestEnv(t)

		// A minimal single-pixel GIF
		gifData := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x00\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

		info, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindReference,
			FileName:    "sketch.gif",
			ContentType: "image/gif",
			Data:        gifData,
		})

		require.NoError(t, err)
		assert.Empty(t, info.ThumbnailURL)
		assert.Equal(t, 1, env.store.Len())
		// Dimensions still come from a real decode
		assert.Equal(t, 1, info.Width)
		assert.Equal(t, 1, info.Height)
	})

	t.Run("rejects garbage bytes declared as gif", func(t *testing.T) {
		env := newImageTestEnv(t)

		_, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindReference,
			FileName:    "broken.gif",
			ContentType: "image/gif",
			Data:        []byte("this is not an image at all"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE", domainErr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("rejects garbage bytes declared as webp", func(t *testing.T) {
		env := newImageTestEnv(t)

		_, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindReference,
			FileName:    "broken.webp",
			ContentType: "image/webp",
			Data:        []byte("RIFF....WEBPnot really"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE", domainErr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("rejects svg", func(t *testing.T) {
		env := newImageTestEnv(t)

		_, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindReference,
			FileName:    "logo.svg",
			ContentType: "image/svg+xml",
			Data:        []byte("<svg></svg>"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_CONTENT_TYPE", domainErr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("stores nothing when decode fails", func(t *testing.T) {
		env := newImageTestEnv(t)

		_, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindMockup,
			FileName:    "broken.png",
			ContentType: "image/png",
			Data:        []byte("not a png at all"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE", domainErr.Code)
		assert.Equal(t, 0, env.store.Len())
	})

	t.Run("rejects closed order", func(t *testing.T) {
		env := newImageTestEnv(t)
		require.NoError(t, env.order.Cancel("customer backed out"))

		_, err := env.svc.Upload(ctx, testPrincipal(), UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindMockup,
			FileName:    "late.png",
			ContentType: "image/png",
			Data:        testPNG(t, 10, 10),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("unassigned designer is refused", func(t *testing.T) {
		env := newImageTestEnv(t)
		principal := Principal{ID: uuid.New(), Name: "designer", Role: identity.RoleDesigner}

		_, err := env.svc.Upload(ctx, principal, UploadInput{
			OrderID:     env.order.ID,
			Kind:        design.ImageKindMockup,
			FileName:    "mockup.png",
			ContentType: "image/png",
			Data:        testPNG(t, 10, 10),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})
}

func TestImageService_List(t *testing.T) {
	ctx := context.Background()
	env := newImageTestEnv(t)
	principal := testPrincipal()

	_, err := env.svc.Upload(ctx, principal, UploadInput{
		OrderID:     env.order.ID,
		Kind:        design.ImageKindMockup,
		FileName:    "one.png",
		ContentType: "image/png",
		Data:        testPNG(t, 100, 100),
	})
	require.NoError(t, err)

	infos, err := env.svc.List(ctx, principal, env.order.ID)

	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "one.png", infos[0].FileName)
	assert.NotEmpty(t, infos[0].URL)
}

func TestImageService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newImageTestEnv(t)
	principal := testPrincipal()

	info, err := env.svc.Upload(ctx, principal, UploadInput{
		OrderID:     env.order.ID,
		Kind:        design.ImageKindMockup,
		FileName:    "gone.png",
		ContentType: "image/png",
		Data:        testPNG(t, 100, 100),
	})
	require.NoError(t, err)
	require.Equal(t, 4, env.store.Len())

	// The image is addressed through its order; a different order ID
	// must not reach it
	err = env.svc.Delete(ctx, principal, uuid.New(), info.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 4, env.store.Len())

	require.NoError(t, env.svc.Delete(ctx, principal, env.order.ID, info.ID))

	// Record soft-deleted, objects removed
	stored, err := env.imageRepo.FindByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, design.ImageStatusDeleted, stored.Status)
	assert.Equal(t, 0, env.store.Len())

	infos, err := env.svc.List(ctx, principal, env.order.ID)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Deleting twice fails
	assert.Error(t, env.svc.Delete(ctx, principal, env.order.ID, info.ID))
}
