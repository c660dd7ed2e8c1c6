package identity

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// InvitationStatus represents the status of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// DefaultInvitationTTL is how long an invitation stays valid
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation lets an admin pre-authorize account creation for a given
// email and role. Accepting a pending, unexpired invitation registers a
// user carrying the invitation's role.
type Invitation struct {
	shared.BaseAggregateRoot
	Email      string           `gorm:"type:varchar(200);not null;index"`
	Role       Role             `gorm:"type:varchar(20);not null"`
	Token      string           `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status     InvitationStatus `gorm:"type:varchar(20);not null;index"`
	InvitedBy  uuid.UUID
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy *uuid.UUID
}

// TableName returns the table name for GORM
func (Invitation) TableName() string {
	return "invitations"
}

// NewInvitation creates a pending invitation for the given email and role
func NewInvitation(email string, role Role, invitedBy uuid.UUID, ttl time.Duration) (*Invitation, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	if role == RoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Admin accounts cannot be created by invitation")
	}
	if invitedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Inviter is required")
	}
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate invitation token")
	}

	return &Invitation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Role:              role,
		Token:             token,
		Status:            InvitationStatusPending,
		InvitedBy:         invitedBy,
		ExpiresAt:         time.Now().Add(ttl),
	}, nil
}

// IsExpired reports whether the invitation has passed its expiry
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// CanAccept reports whether the invitation can still be accepted
func (i *Invitation) CanAccept() bool {
	return i.Status == InvitationStatusPending && !i.IsExpired()
}

// Accept marks the invitation as accepted by the given user
func (i *Invitation) Accept(userID uuid.UUID) error {
	if i.Status != InvitationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Invitation is not pending")
	}
	if i.IsExpired() {
		return shared.ErrTokenExpired
	}

	now := time.Now()
	i.Status = InvitationStatusAccepted
	i.AcceptedAt = &now
	i.AcceptedBy = &userID
	i.Touch()
	i.IncrementVersion()

	return nil
}

// Revoke cancels a pending invitation
func (i *Invitation) Revoke() error {
	if i.Status != InvitationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invitations can be revoked")
	}

	i.Status = InvitationStatusRevoked
	i.Touch()
	i.IncrementVersion()

	return nil
}

// MarkExpired transitions a pending invitation past its expiry to expired
func (i *Invitation) MarkExpired() {
	if i.Status == InvitationStatusPending && i.IsExpired() {
		i.Status = InvitationStatusExpired
		i.Touch()
		i.IncrementVersion()
	}
}

// generateInvitationToken returns 32 bytes of randomness as a URL-safe string
func generateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
