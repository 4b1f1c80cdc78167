package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Entry is the caller-facing shape of an audit write.
type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	ActorID    string
	Before     map[string]any
	After      map[string]any
}

type ListRequest struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

type ListResponse struct {
	Records []AuditRecord `json:"records"`
}

type Service interface {
	// Record appends an audit record on the caller's transaction handle so
	// the audit trail commits or rolls back with the mutation it describes.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *AuditRecord) error
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]AuditRecord, error)
}
