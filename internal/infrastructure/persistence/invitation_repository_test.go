package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/shared"
)

func TestGormInvitationRepository_CreateAndFind(t *testing.T) {
	repo := NewGormInvitationRepository(newTestDB(t))
	ctx := context.Background()

	invitation, err := identity.NewInvitation("designer@example.com", identity.RoleDesigner, uuid.New(), identity.DefaultInvitationTTL)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, invitation))

	t.Run("by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, invitation.ID)
		require.NoError(t, err)
		assert.Equal(t, "designer@example.com", found.Email)
		assert.Equal(t, identity.RoleDesigner, found.Role)
	})

	t.Run("by token", func(t *testing.T) {
		found, err := repo.FindByToken(ctx, invitation.Token)
		require.NoError(t, err)
		assert.Equal(t, invitation.ID, found.ID)
	})

	t.Run("by unknown token", func(t *testing.T) {
		_, err := repo.FindByToken(ctx, "no-such-token")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInvitationRepository_FindPendingByEmail(t *testing.T) {
	repo := NewGormInvitationRepository(newTestDB(t))
	ctx := context.Background()

	invitation, err := identity.NewInvitation("maker@example.com", identity.RoleManufacturer, uuid.New(), identity.DefaultInvitationTTL)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, invitation))

	found, err := repo.FindPendingByEmail(ctx, "Maker@Example.com")
	require.NoError(t, err)
	assert.Equal(t, invitation.ID, found.ID)

	// Revoked invitations no longer count as pending
	require.NoError(t, invitation.Revoke())
	require.NoError(t, repo.Update(ctx, invitation))

	_, err = repo.FindPendingByEmail(ctx, "maker@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvitationRepository_FindPendingByEmail_Expired(t *testing.T) {
	repo := NewGormInvitationRepository(newTestDB(t))
	ctx := context.Background()

	invitation, err := identity.NewInvitation("late@example.com", identity.RoleSalesperson, uuid.New(), identity.DefaultInvitationTTL)
	require.NoError(t, err)
	invitation.ExpiresAt = time.Now().Add(-1 * time.Hour)
	require.NoError(t, repo.Create(ctx, invitation))

	_, err = repo.FindPendingByEmail(ctx, "late@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvitationRepository_FindAll(t *testing.T) {
	repo := NewGormInvitationRepository(newTestDB(t))
	ctx := context.Background()

	first, err := identity.NewInvitation("a@example.com", identity.RoleDesigner, uuid.New(), identity.DefaultInvitationTTL)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := identity.NewInvitation("b@example.com", identity.RoleSalesperson, uuid.New(), identity.DefaultInvitationTTL)
	require.NoError(t, err)
	require.NoError(t, second.Revoke())
	require.NoError(t, repo.Create(ctx, second))

	t.Run("all", func(t *testing.T) {
		invitations, total, err := repo.FindAll(ctx, identity.NewInvitationFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, invitations, 2)
	})

	t.Run("by status", func(t *testing.T) {
		filter := identity.NewInvitationFilter()
		status := identity.InvitationStatusPending
		filter.Status = &status

		invitations, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, invitations, 1)
		assert.Equal(t, first.ID, invitations[0].ID)
	})

	t.Run("by email", func(t *testing.T) {
		filter := identity.NewInvitationFilter()
		filter.Email = "B@example.com"

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}
