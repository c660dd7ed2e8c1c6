package identity

import (
	"context"

	"github.com/google/uuid"
)

// InvitationRepository defines the interface for invitation persistence
type InvitationRepository interface {
	// Create creates a new invitation
	Create(ctx context.Context, invitation *Invitation) error

	// Update updates an existing invitation
	Update(ctx context.Context, invitation *Invitation) error

	// FindByID finds an invitation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)

	// FindByToken finds an invitation by its opaque token
	FindByToken(ctx context.Context, token string) (*Invitation, error)

	// FindPendingByEmail finds a pending invitation for an email, if any
	FindPendingByEmail(ctx context.Context, email string) (*Invitation, error)

	// FindAll returns invitations matching the filter with a total count
	FindAll(ctx context.Context, filter InvitationFilter) ([]*Invitation, int64, error)
}

// InvitationFilter contains filter options for querying invitations
type InvitationFilter struct {
	Status *InvitationStatus
	Role   *Role
	Email  string

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewInvitationFilter creates a new InvitationFilter with default values
func NewInvitationFilter() InvitationFilter {
	return InvitationFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
