package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogRepository defines the interface for audit log persistence.
// There is intentionally no Update or Delete.
type LogRepository interface {
	// Create appends a new audit record
	Create(ctx context.Context, log *Log) error

	// FindByID finds an audit record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Log, error)

	// FindAll returns audit records matching the filter with a total count
	FindAll(ctx context.Context, filter LogFilter) ([]*Log, int64, error)
}

// LogFilter contains filter options for querying audit records
type LogFilter struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	From       *time.Time
	To         *time.Time

	Page     int
	PageSize int
}

// NewLogFilter creates a new LogFilter with default values
func NewLogFilter() LogFilter {
	return LogFilter{
		Page:     1,
		PageSize: 50,
	}
}
