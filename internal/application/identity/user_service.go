package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// UserService handles user administration
type UserService struct {
	userRepo identity.UserRepository
	recorder *auditapp.Recorder
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, recorder *auditapp.Recorder, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		recorder: recorder,
		logger:   logger,
	}
}

// Create creates an active user directly, bypassing the invitation flow.
// Only admins reach this path.
func (s *UserService) Create(ctx context.Context, actor auditapp.Actor, input CreateUserInput) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	if input.Email != "" {
		exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already in use")
		}
	}

	user, err := identity.NewActiveUser(input.Username, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "user.created", "User", user.ID, map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
	})

	info := NewUserInfo(user)
	return &info, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := NewUserInfo(user)
	return &info, nil
}

// List returns users matching the filter
func (s *UserService) List(ctx context.Context, input ListUsersInput) ([]UserInfo, int64, error) {
	users, total, err := s.userRepo.FindAll(ctx, input.Filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]UserInfo, len(users))
	for i, user := range users {
		infos[i] = NewUserInfo(user)
	}
	return infos, total, nil
}

// Update updates a user's profile fields
func (s *UserService) Update(ctx context.Context, actor auditapp.Actor, input UpdateUserInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "user.updated", "User", user.ID, nil)

	info := NewUserInfo(user)
	return &info, nil
}

// ChangeRole changes a user's role
func (s *UserService) ChangeRole(ctx context.Context, actor auditapp.Actor, input ChangeRoleInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	if err := user.ChangeRole(input.Role); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "user.role_changed", "User", user.ID, map[string]interface{}{
		"old_role": string(oldRole),
		"new_role": string(input.Role),
	})

	info := NewUserInfo(user)
	return &info, nil
}

// Activate activates a pending or deactivated user
func (s *UserService) Activate(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, "user.activated", func(user *identity.User) error {
		return user.Activate()
	})
}

// Deactivate deactivates a user. Deactivated users cannot log in and
// their outstanding tokens stop refreshing.
func (s *UserService) Deactivate(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return shared.NewDomainError("INVALID_OPERATION", "You cannot deactivate your own account")
	}
	return s.transition(ctx, actor, id, "user.deactivated", func(user *identity.User) error {
		return user.Deactivate()
	})
}

// Delete removes a user permanently. Only deactivated accounts can be
// deleted; active ones must be deactivated first so the removal is a
// deliberate two-step action.
func (s *UserService) Delete(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return shared.NewDomainError("INVALID_OPERATION", "You cannot delete your own account")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Status != identity.UserStatusDeactivated {
		return shared.NewDomainError("INVALID_OPERATION", "Only deactivated users can be deleted")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "user.deleted", "User", id, map[string]interface{}{
		"username": user.Username,
	})
	return nil
}

// Unlock clears a lockout before it expires
func (s *UserService) Unlock(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, "user.unlocked", func(user *identity.User) error {
		return user.Unlock()
	})
}

// LinkCustomer links a customer-role user to a CRM customer record,
// scoping their order visibility
func (s *UserService) LinkCustomer(ctx context.Context, actor auditapp.Actor, userID, customerID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.LinkCustomer(customerID); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "user.customer_linked", "User", userID, map[string]interface{}{
		"customer_id": customerID.String(),
	})
	return nil
}

func (s *UserService) transition(ctx context.Context, actor auditapp.Actor, id uuid.UUID, action string, fn func(*identity.User) error) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(user); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, action, "User", id, nil)
	return nil
}

func parseUserID(userID string) (uuid.UUID, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Invalid user ID")
	}
	return id, nil
}
