package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/identity"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormInvitationRepository implements identity.InvitationRepository using GORM
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewGormInvitationRepository creates a new GormInvitationRepository
func NewGormInvitationRepository(db *gorm.DB) *GormInvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create creates a new invitation
func (r *GormInvitationRepository) Create(ctx context.Context, invitation *identity.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// Update updates an existing invitation
func (r *GormInvitationRepository) Update(ctx context.Context, invitation *identity.Invitation) error {
	result := r.db.WithContext(ctx).Save(invitation)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindByToken finds an invitation by its opaque token
func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail finds an unexpired pending invitation for an email
func (r *GormInvitationRepository) FindPendingByEmail(ctx context.Context, email string) (*identity.Invitation, error) {
	var invitation identity.Invitation
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND status = ? AND expires_at > ?",
			strings.ToLower(email), identity.InvitationStatusPending, time.Now()).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindAll returns invitations matching the filter with a total count
func (r *GormInvitationRepository) FindAll(ctx context.Context, filter identity.InvitationFilter) ([]*identity.Invitation, int64, error) {
	query := r.db.WithContext(ctx).Model(&identity.Invitation{})

	if filter.Email != "" {
		query = query.Where("LOWER(email) = ?", strings.ToLower(filter.Email))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var invitations []*identity.Invitation
	if err := query.
		Order(sortClause("invitations", filter.SortBy, filter.SortOrder)).
		Offset(offset).Limit(limit).
		Find(&invitations).Error; err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

var _ identity.InvitationRepository = (*GormInvitationRepository)(nil)
