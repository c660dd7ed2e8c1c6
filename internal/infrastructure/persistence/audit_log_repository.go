package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadcraft/backend/internal/domain/audit"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// GormAuditLogRepository implements audit.LogRepository using GORM.
// Records are append-only; there is no update or delete path.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends a new audit record
func (r *GormAuditLogRepository) Create(ctx context.Context, log *audit.Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByID finds an audit record by ID
func (r *GormAuditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Log, error) {
	var log audit.Log
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindAll returns audit records matching the filter, newest first
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter audit.LogFilter) ([]*audit.Log, int64, error) {
	query := r.db.WithContext(ctx).Model(&audit.Log{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var logs []*audit.Log
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

var _ audit.LogRepository = (*GormAuditLogRepository)(nil)
