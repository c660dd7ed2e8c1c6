package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadcraft/backend/internal/domain/audit"
)

func TestGormAuditLogRepository_CreateAndFindAll(t *testing.T) {
	repo := NewGormAuditLogRepository(newTestDB(t))
	ctx := context.Background()

	actorID := uuid.New()
	orderID := uuid.New()

	first, err := audit.NewLog(actorID, "alice", "salesperson", "order.created", "Order", orderID,
		map[string]interface{}{"order_number": "TC-2026-000001"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := audit.NewLog(uuid.New(), "bob", "designer", "order.design_started", "Order", orderID, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, second))

	t.Run("all records", func(t *testing.T) {
		logs, total, err := repo.FindAll(ctx, audit.NewLogFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, logs, 2)
	})

	t.Run("by actor", func(t *testing.T) {
		filter := audit.NewLogFilter()
		filter.ActorID = &actorID

		logs, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, logs, 1)
		assert.Equal(t, "order.created", logs[0].Action)

		detail := logs[0].DetailMap()
		assert.Equal(t, "TC-2026-000001", detail["order_number"])
	})

	t.Run("by action", func(t *testing.T) {
		filter := audit.NewLogFilter()
		filter.Action = "order.design_started"

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("by entity", func(t *testing.T) {
		filter := audit.NewLogFilter()
		filter.EntityType = "Order"
		filter.EntityID = &orderID

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.ActorName)
	})
}
