package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/threadcraft/backend/internal/domain/shared"
)

// Log is one append-only audit record. Logs are never updated or
// deleted; mutating services write one per state change.
type Log struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorName  string    `gorm:"type:varchar(100);not null"`
	ActorRole  string    `gorm:"type:varchar(20);not null"`
	Action     string    `gorm:"type:varchar(100);not null;index"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Detail     string    `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "audit_logs"
}

// NewLog creates a new audit record. Detail is marshalled to JSON; a nil
// detail map records "{}".
func NewLog(actorID uuid.UUID, actorName, actorRole, action, entityType string, entityID uuid.UUID, detail map[string]interface{}) (*Log, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if strings.TrimSpace(action) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action is required")
	}
	if strings.TrimSpace(entityType) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Entity type is required")
	}

	detailJSON := "{}"
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Detail is not serializable")
		}
		detailJSON = string(raw)
	}

	return &Log{
		ID:         uuid.New(),
		ActorID:    actorID,
		ActorName:  actorName,
		ActorRole:  actorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detailJSON,
		CreatedAt:  time.Now(),
	}, nil
}

// DetailMap unmarshals the stored detail JSON
func (l *Log) DetailMap() map[string]interface{} {
	out := make(map[string]interface{})
	_ = json.Unmarshal([]byte(l.Detail), &out)
	return out
}
