package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with valid username and password", func(t *testing.T) {
		user, err := NewUser("testuser", "Password123", RoleSalesperson)

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "testuser", user.Username)
		assert.NotEmpty(t, user.PasswordHash)
		assert.Equal(t, RoleSalesperson, user.Role)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.NotNil(t, user.PasswordChangedAt)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes username to lowercase", func(t *testing.T) {
		user, err := NewUser("TestUser", "Password123", RoleDesigner)

		require.NoError(t, err)
		assert.Equal(t, "testuser", user.Username)
	})

	t.Run("fails with unknown role", func(t *testing.T) {
		_, err := NewUser("testuser", "Password123", Role("warehouse"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown role")
	})

	t.Run("fails with short username", func(t *testing.T) {
		_, err := NewUser("ab", "Password123", RoleCustomer)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("fails with invalid username characters", func(t *testing.T) {
		_, err := NewUser("test@user", "Password123", RoleCustomer)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only contain letters")
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser("testuser", "Pass1", RoleCustomer)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("fails with password without numbers", func(t *testing.T) {
		_, err := NewUser("testuser", "PasswordOnly", RoleCustomer)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one letter and one number")
	})
}

func TestNewActiveUser(t *testing.T) {
	user, err := NewActiveUser("admin", "Admin1234", RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.True(t, user.CanLogin())
}

func TestUserPassword(t *testing.T) {
	user, err := NewActiveUser("testuser", "Password123", RoleSalesperson)
	require.NoError(t, err)

	t.Run("verifies correct password", func(t *testing.T) {
		assert.True(t, user.VerifyPassword("Password123"))
		assert.False(t, user.VerifyPassword("wrong"))
	})

	t.Run("changes password with correct old password", func(t *testing.T) {
		err := user.ChangePassword("Password123", "NewPassword456")

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword456"))
		assert.False(t, user.VerifyPassword("Password123"))
	})

	t.Run("rejects change with wrong old password", func(t *testing.T) {
		err := user.ChangePassword("wrong", "Another789")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "incorrect")
	})
}

func TestUserRole(t *testing.T) {
	t.Run("changes role and raises event", func(t *testing.T) {
		user, err := NewActiveUser("testuser", "Password123", RoleDesigner)
		require.NoError(t, err)
		user.ClearDomainEvents()

		err = user.ChangeRole(RoleManufacturer)

		require.NoError(t, err)
		assert.Equal(t, RoleManufacturer, user.Role)
		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*UserRoleChangedEvent)
		require.True(t, ok)
		assert.Equal(t, RoleDesigner, evt.OldRole)
		assert.Equal(t, RoleManufacturer, evt.NewRole)
	})

	t.Run("rejects unchanged role", func(t *testing.T) {
		user, err := NewActiveUser("testuser", "Password123", RoleDesigner)
		require.NoError(t, err)

		err = user.ChangeRole(RoleDesigner)
		assert.Error(t, err)
	})

	t.Run("clears customer link when leaving customer role", func(t *testing.T) {
		user, err := NewActiveUser("buyer", "Password123", RoleCustomer)
		require.NoError(t, err)
		require.NoError(t, user.LinkCustomer(uuid.New()))
		require.NotNil(t, user.CustomerID)

		require.NoError(t, user.ChangeRole(RoleSalesperson))
		assert.Nil(t, user.CustomerID)
	})

	t.Run("rejects customer link for staff roles", func(t *testing.T) {
		user, err := NewActiveUser("staff", "Password123", RoleSalesperson)
		require.NoError(t, err)

		err = user.LinkCustomer(uuid.New())
		assert.Error(t, err)
	})
}

func TestUserLifecycle(t *testing.T) {
	t.Run("activate pending user", func(t *testing.T) {
		user, err := NewUser("testuser", "Password123", RoleCustomer)
		require.NoError(t, err)
		assert.False(t, user.CanLogin())

		require.NoError(t, user.Activate())
		assert.True(t, user.IsActive())
		assert.True(t, user.CanLogin())
	})

	t.Run("deactivate blocks login", func(t *testing.T) {
		user, err := NewActiveUser("testuser", "Password123", RoleCustomer)
		require.NoError(t, err)

		require.NoError(t, user.Deactivate())
		assert.False(t, user.CanLogin())
		assert.Error(t, user.Deactivate())
	})

	t.Run("lock expires after duration", func(t *testing.T) {
		user, err := NewActiveUser("testuser", "Password123", RoleCustomer)
		require.NoError(t, err)

		require.NoError(t, user.Lock(time.Hour))
		assert.True(t, user.IsLocked())
		assert.False(t, user.CanLogin())

		past := time.Now().Add(-time.Minute)
		user.LockedUntil = &past
		assert.False(t, user.IsLocked())
	})

	t.Run("unlock restores access", func(t *testing.T) {
		user, err := NewActiveUser("testuser", "Password123", RoleCustomer)
		require.NoError(t, err)
		require.NoError(t, user.Lock(time.Hour))

		require.NoError(t, user.Unlock())
		assert.True(t, user.CanLogin())
		assert.Zero(t, user.FailedAttempts)
	})
}

func TestRecordLoginFailure(t *testing.T) {
	user, err := NewActiveUser("testuser", "Password123", RoleSalesperson)
	require.NoError(t, err)

	locked := user.RecordLoginFailure(3, time.Hour)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Hour)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Hour)
	assert.True(t, locked)
	assert.True(t, user.IsLocked())

	user.Unlock()
	user.RecordLoginSuccess("203.0.113.7")
	assert.Equal(t, 0, user.FailedAttempts)
	assert.Equal(t, "203.0.113.7", user.LastLoginIP)
	assert.NotNil(t, user.LastLoginAt)
}

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles() {
		parsed, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
}
