package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)

// AuditRecord is an immutable append-only entry capturing who did what to
// which entity, with before/after snapshots. Records are never updated or
// deleted.
type AuditRecord struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	Action     string            `json:"action" gorm:"type:text;not null;index"`
	TargetType string            `json:"target_type" gorm:"type:text;not null;index"`
	TargetID   string            `json:"target_id" gorm:"type:text;not null;index"`
	ActorID    string            `json:"actor_id" gorm:"type:text;not null"`
	Before     datatypes.JSONMap `json:"before,omitempty" gorm:"type:jsonb"`
	After      datatypes.JSONMap `json:"after,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (AuditRecord) TableName() string { return "audit_records" }
