package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditapp "github.com/threadcraft/backend/internal/application/audit"
	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// InvitationService handles the invite-and-accept onboarding flow
type InvitationService struct {
	invitationRepo identity.InvitationRepository
	userRepo       identity.UserRepository
	recorder       *auditapp.Recorder
	ttl            time.Duration
	logger         *zap.Logger
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	invitationRepo identity.InvitationRepository,
	userRepo identity.UserRepository,
	recorder *auditapp.Recorder,
	ttl time.Duration,
	logger *zap.Logger,
) *InvitationService {
	if ttl <= 0 {
		ttl = identity.DefaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		recorder:       recorder,
		ttl:            ttl,
		logger:         logger,
	}
}

// Create issues an invitation for a new staff or customer account.
// One pending invitation per email at a time.
func (s *InvitationService) Create(ctx context.Context, actor auditapp.Actor, input CreateInvitationInput) (*CreateInvitationResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "A user with this email already exists")
	}

	if _, err := s.invitationRepo.FindPendingByEmail(ctx, input.Email); err == nil {
		return nil, shared.NewDomainError("INVITATION_PENDING", "A pending invitation for this email already exists")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	invitation, err := identity.NewInvitation(input.Email, input.Role, actor.ID, s.ttl)
	if err != nil {
		return nil, err
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, "invitation.created", "Invitation", invitation.ID, map[string]interface{}{
		"email": invitation.Email,
		"role":  string(invitation.Role),
	})

	s.logger.Info("Invitation created",
		zap.String("email", invitation.Email),
		zap.String("role", string(invitation.Role)))

	return &CreateInvitationResult{
		Invitation: NewInvitationInfo(invitation),
		Token:      invitation.Token,
	}, nil
}

// Accept redeems an invitation token and creates the invited user.
// The new account is active immediately with the invited role.
func (s *InvitationService) Accept(ctx context.Context, input AcceptInvitationInput) (*UserInfo, error) {
	invitation, err := s.invitationRepo.FindByToken(ctx, input.Token)
	if err != nil {
		return nil, shared.NewDomainError("INVITATION_INVALID", "Invitation not found")
	}

	if invitation.IsExpired() {
		invitation.MarkExpired()
		if err := s.invitationRepo.Update(ctx, invitation); err != nil {
			s.logger.Error("Failed to mark invitation expired", zap.Error(err))
		}
		return nil, shared.NewDomainError("INVITATION_EXPIRED", "Invitation has expired")
	}
	if !invitation.CanAccept() {
		return nil, shared.NewDomainError("INVITATION_INVALID", "Invitation is no longer valid")
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	user, err := identity.NewActiveUser(input.Username, input.Password, invitation.Role)
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(invitation.Email); err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := invitation.Accept(user.ID); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Update(ctx, invitation); err != nil {
		s.logger.Error("Failed to mark invitation accepted",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err))
	}

	s.recorder.Record(ctx, auditapp.Actor{ID: user.ID, Name: user.Username, Role: string(user.Role)},
		"invitation.accepted", "Invitation", invitation.ID, map[string]interface{}{
			"email": invitation.Email,
		})

	info := NewUserInfo(user)
	return &info, nil
}

// Revoke cancels a pending invitation
func (s *InvitationService) Revoke(ctx context.Context, actor auditapp.Actor, id uuid.UUID) error {
	invitation, err := s.invitationRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := invitation.Revoke(); err != nil {
		return err
	}

	if err := s.invitationRepo.Update(ctx, invitation); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, "invitation.revoked", "Invitation", id, map[string]interface{}{
		"email": invitation.Email,
	})
	return nil
}

// Get returns one invitation
func (s *InvitationService) Get(ctx context.Context, id uuid.UUID) (*InvitationInfo, error) {
	invitation, err := s.invitationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := NewInvitationInfo(invitation)
	return &info, nil
}

// GetByToken returns the invitation behind a token so an invitee can
// preview it before accepting. Only pending, unexpired invitations
// are resolvable.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*InvitationInfo, error) {
	invitation, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, shared.NewDomainError("INVITATION_INVALID", "Invitation not found")
	}
	if invitation.IsExpired() {
		return nil, shared.NewDomainError("INVITATION_EXPIRED", "Invitation has expired")
	}
	if invitation.Status != identity.InvitationStatusPending {
		return nil, shared.NewDomainError("INVITATION_INVALID", "Invitation is no longer valid")
	}
	info := NewInvitationInfo(invitation)
	return &info, nil
}

// List returns invitations matching the filter
func (s *InvitationService) List(ctx context.Context, filter identity.InvitationFilter) ([]InvitationInfo, int64, error) {
	invitations, total, err := s.invitationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]InvitationInfo, len(invitations))
	for i, invitation := range invitations {
		infos[i] = NewInvitationInfo(invitation)
	}
	return infos, total, nil
}
