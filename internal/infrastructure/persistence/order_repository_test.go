package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadcraft/backend/internal/domain/order"
	"github.com/threadcraft/backend/internal/domain/shared"
)

func newPersistedOrder(t *testing.T, repo *GormOrderRepository, number string) *order.Order {
	t.Helper()

	o, err := order.NewOrder(number, uuid.New(), "Acme Corp", decimal.NewFromFloat(0.1), uuid.New())
	require.NoError(t, err)

	_, err = o.AddItem(order.ItemSpec{
		CatalogItemID: uuid.New(),
		Name:          "Classic Tee",
		SKU:           "TEE-001",
		Size:          "L",
		Color:         "black",
		Quantity:      10,
		UnitPrice:     decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestGormOrderRepository_CreateAndFindByID(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	o := newPersistedOrder(t, repo, "TC-2026-000001")

	found, err := repo.FindByID(context.Background(), o.ID)

	require.NoError(t, err)
	assert.Equal(t, "TC-2026-000001", found.OrderNumber)
	assert.Equal(t, order.StatusDraft, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Classic Tee", found.Items[0].Name)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(220))) // 200 + 10% tax
}

func TestGormOrderRepository_Create_DuplicateOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	newPersistedOrder(t, repo, "TC-2026-000001")

	dup, err := order.NewOrder("TC-2026-000001", uuid.New(), "Globex Industries", decimal.NewFromFloat(0.1), uuid.New())
	require.NoError(t, err)

	err = repo.Create(ctx, dup)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ORDER_NUMBER_TAKEN", domainErr.Code)
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	o := newPersistedOrder(t, repo, "TC-2026-000007")

	found, err := repo.FindByOrderNumber(context.Background(), "TC-2026-000007")

	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
}

func TestGormOrderRepository_Save_ReconcilesItems(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := newPersistedOrder(t, repo, "TC-2026-000001")

	// Add a second line, then reload and replace the list: keep the
	// second line with a new quantity, drop the first, add a third.
	_, err := o.AddItem(order.ItemSpec{
		CatalogItemID: uuid.New(),
		Name:          "Hoodie",
		SKU:           "HOOD-01",
		Size:          "M",
		Color:         "navy",
		Quantity:      2,
		UnitPrice:     decimal.NewFromInt(45),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	var hoodieID uuid.UUID
	for _, item := range loaded.Items {
		if item.SKU == "HOOD-01" {
			hoodieID = item.ID
		}
	}
	require.NotEqual(t, uuid.Nil, hoodieID)

	err = loaded.ReconcileItems([]order.ItemSpec{
		{
			ID:        &hoodieID,
			Size:      "M",
			Color:     "navy",
			Quantity:  5,
			UnitPrice: decimal.NewFromInt(45),
		},
		{
			CatalogItemID: uuid.New(),
			Name:          "Cap",
			SKU:           "CAP-01",
			Size:          "one-size",
			Color:         "white",
			Quantity:      3,
			UnitPrice:     decimal.NewFromInt(15),
		},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	final, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 2)

	skus := map[string]int{}
	for _, item := range final.Items {
		skus[item.SKU] = item.Quantity
	}
	assert.Equal(t, map[string]int{"HOOD-01": 5, "CAP-01": 3}, skus)

	// 5*45 + 3*15 = 270, plus 10% tax
	assert.True(t, final.Total.Equal(decimal.NewFromInt(297)), "got %s", final.Total)
}

func TestGormOrderRepository_Save_RemovingAllButOne(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := newPersistedOrder(t, repo, "TC-2026-000002")

	_, err := o.AddItem(order.ItemSpec{
		CatalogItemID: uuid.New(),
		Name:          "Hoodie",
		SKU:           "HOOD-01",
		Quantity:      1,
		UnitPrice:     decimal.NewFromInt(45),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	keep := o.Items[0].ID
	require.NoError(t, o.RemoveItem(o.Items[1].ID))
	require.NoError(t, repo.Save(ctx, o))

	final, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, keep, final.Items[0].ID)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	t.Run("increments version on success", func(t *testing.T) {
		o := newPersistedOrder(t, repo, "TC-2026-000003")
		o.SetNotes("rush job")

		require.NoError(t, repo.SaveWithLock(ctx, o))
		assert.Equal(t, 2, o.Version)

		loaded, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Version)
		assert.Equal(t, "rush job", loaded.Notes)
	})

	t.Run("rejects stale version", func(t *testing.T) {
		o := newPersistedOrder(t, repo, "TC-2026-000004")

		stale, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		o.SetNotes("first writer")
		require.NoError(t, repo.SaveWithLock(ctx, o))

		stale.SetNotes("second writer")
		err = repo.SaveWithLock(ctx, stale)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
	})
}

func TestGormOrderRepository_Delete(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := newPersistedOrder(t, repo, "TC-2026-000005")

	require.NoError(t, repo.Delete(ctx, o.ID))

	_, err := repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Lines are gone too
	exists, err := repo.ExistsByCatalogItem(ctx, o.Items[0].CatalogItemID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormOrderRepository_Delete_NotFound(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	first := newPersistedOrder(t, repo, "TC-2026-000001")
	newPersistedOrder(t, repo, "TC-2026-000002")

	t.Run("unfiltered", func(t *testing.T) {
		orders, total, err := repo.FindAll(ctx, order.NewFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, orders, 2)
	})

	t.Run("by keyword on order number", func(t *testing.T) {
		filter := order.NewFilter()
		filter.Keyword = "000002"

		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "TC-2026-000002", orders[0].OrderNumber)
	})

	t.Run("keyword matches customer name case-insensitively", func(t *testing.T) {
		filter := order.NewFilter()
		filter.Keyword = "ACME"

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("keyword with no match", func(t *testing.T) {
		filter := order.NewFilter()
		filter.Keyword = "globex"

		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, orders)
	})

	t.Run("by status", func(t *testing.T) {
		require.NoError(t, first.SubmitDesign())
		require.NoError(t, repo.Save(ctx, first))

		filter := order.NewFilter()
		status := order.StatusPendingDesign
		filter.Status = &status

		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("by customer", func(t *testing.T) {
		filter := order.NewFilter()
		filter.CustomerID = &first.CustomerID

		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := order.NewFilter()
		filter.PageSize = 1

		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, orders, 1)
	})
}

func TestGormOrderRepository_CountByStatus(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	newPersistedOrder(t, repo, "TC-2026-000001")
	second := newPersistedOrder(t, repo, "TC-2026-000002")
	require.NoError(t, second.SubmitDesign())
	require.NoError(t, repo.Save(ctx, second))

	counts, err := repo.CountByStatus(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[order.StatusDraft])
	assert.Equal(t, int64(1), counts[order.StatusPendingDesign])
}

func TestGormOrderRepository_SumCompletedTotal(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	t.Run("zero when nothing completed", func(t *testing.T) {
		sum, err := repo.SumCompletedTotal(ctx)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("sums completed orders only", func(t *testing.T) {
		o := newPersistedOrder(t, repo, "TC-2026-000001")
		o.Status = order.StatusCompleted
		require.NoError(t, repo.Save(ctx, o))

		newPersistedOrder(t, repo, "TC-2026-000002") // stays draft

		sum, err := repo.SumCompletedTotal(ctx)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(220)), "got %s", sum)
	})
}

func TestGormOrderRepository_NextSequence(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	t.Run("starts at one", func(t *testing.T) {
		seq, err := repo.NextSequence(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})

	t.Run("increments past the highest existing number", func(t *testing.T) {
		newPersistedOrder(t, repo, "TC-2026-000041")

		seq, err := repo.NextSequence(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(42), seq)
	})

	t.Run("years are independent", func(t *testing.T) {
		seq, err := repo.NextSequence(ctx, 2027)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})
}

func TestGormOrderRepository_ExistsByCatalogItem(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := newPersistedOrder(t, repo, "TC-2026-000001")

	exists, err := repo.ExistsByCatalogItem(ctx, o.Items[0].CatalogItemID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCatalogItem(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}
