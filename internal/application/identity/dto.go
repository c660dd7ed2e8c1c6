package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadcraft/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned to clients
type UserInfo struct {
	ID          uuid.UUID           `json:"id"`
	Username    string              `json:"username"`
	DisplayName string              `json:"display_name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone,omitempty"`
	Role        identity.Role       `json:"role"`
	Status      identity.UserStatus `json:"status"`
	CustomerID  *uuid.UUID          `json:"customer_id,omitempty"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewUserInfo builds a UserInfo from a user aggregate
func NewUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		Status:      user.Status,
		CustomerID:  user.CustomerID,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration // Remaining lifetime of the access token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput contains the input for direct user creation by an admin
type CreateUserInput struct {
	Username    string
	Password    string
	Email       string
	Phone       string
	DisplayName string
	Role        identity.Role
}

// UpdateUserInput contains the mutable profile fields of a user
type UpdateUserInput struct {
	UserID      uuid.UUID
	Email       *string
	Phone       *string
	DisplayName *string
}

// ChangeRoleInput contains the input for changing a user's role
type ChangeRoleInput struct {
	UserID uuid.UUID
	Role   identity.Role
}

// ListUsersInput contains filter options for listing users
type ListUsersInput struct {
	Filter identity.UserFilter
}

// CreateInvitationInput contains the input for inviting a new user
type CreateInvitationInput struct {
	Email string
	Role  identity.Role
}

// AcceptInvitationInput contains the input for redeeming an invitation
type AcceptInvitationInput struct {
	Token       string
	Username    string
	Password    string
	DisplayName string
}

// InvitationInfo contains invitation details returned to clients.
// The token itself is only exposed at creation time.
type InvitationInfo struct {
	ID         uuid.UUID                 `json:"id"`
	Email      string                    `json:"email"`
	Role       identity.Role             `json:"role"`
	Status     identity.InvitationStatus `json:"status"`
	InvitedBy  uuid.UUID                 `json:"invited_by"`
	ExpiresAt  time.Time                 `json:"expires_at"`
	AcceptedAt *time.Time                `json:"accepted_at,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// NewInvitationInfo builds an InvitationInfo from an invitation aggregate
func NewInvitationInfo(invitation *identity.Invitation) InvitationInfo {
	return InvitationInfo{
		ID:         invitation.ID,
		Email:      invitation.Email,
		Role:       invitation.Role,
		Status:     invitation.Status,
		InvitedBy:  invitation.InvitedBy,
		ExpiresAt:  invitation.ExpiresAt,
		AcceptedAt: invitation.AcceptedAt,
		CreatedAt:  invitation.CreatedAt,
	}
}

// CreateInvitationResult contains the created invitation and its token
type CreateInvitationResult struct {
	Invitation InvitationInfo `json:"invitation"`
	Token      string         `json:"token"`
}
