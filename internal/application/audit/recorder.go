// Package audit records who did what across the application services.
package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadcraft/backend/internal/domain/audit"
)

// Actor identifies the user performing an audited action
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// Recorder appends audit records. Recording is best-effort: a failed
// write is logged but never fails the business operation that caused it.
type Recorder struct {
	logs   audit.LogRepository
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(logs audit.LogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{logs: logs, logger: logger}
}

// Record appends one audit record
func (r *Recorder) Record(ctx context.Context, actor Actor, action, entityType string, entityID uuid.UUID, detail map[string]interface{}) {
	log, err := audit.NewLog(actor.ID, actor.Name, actor.Role, action, entityType, entityID, detail)
	if err != nil {
		r.logger.Error("Failed to build audit record",
			zap.String("action", action),
			zap.Error(err))
		return
	}

	if err := r.logs.Create(ctx, log); err != nil {
		r.logger.Error("Failed to write audit record",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

// ListInput contains filter options for querying audit records
type ListInput struct {
	Filter audit.LogFilter
}

// QueryService exposes read access to the audit trail
type QueryService struct {
	logs audit.LogRepository
}

// NewQueryService creates a new audit query service
func NewQueryService(logs audit.LogRepository) *QueryService {
	return &QueryService{logs: logs}
}

// List returns audit records matching the filter
func (s *QueryService) List(ctx context.Context, input ListInput) ([]*audit.Log, int64, error) {
	return s.logs.FindAll(ctx, input.Filter)
}

// Get returns a single audit record
func (s *QueryService) Get(ctx context.Context, id uuid.UUID) (*audit.Log, error) {
	return s.logs.FindByID(ctx, id)
}
