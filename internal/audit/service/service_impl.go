package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType := strings.TrimSpace(entry.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}
	actorID := strings.TrimSpace(entry.ActorID)
	if actorID == "" {
		actorID = "system"
	}

	record := auditdomain.AuditRecord{
		ID:         s.genID.Generate(),
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(entry.TargetID),
		ActorID:    actorID,
		CreatedAt:  time.Now().UTC(),
	}
	if entry.Before != nil {
		record.Before = datatypes.JSONMap(entry.Before)
	}
	if entry.After != nil {
		record.After = datatypes.JSONMap(entry.After)
	}

	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Insert(ctx, tx, &record); err != nil {
		s.log.Warn("failed to write audit record", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListResponse{}, auditdomain.ErrInvalidTimeRange
	}

	records, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return auditdomain.ListResponse{}, err
	}
	return auditdomain.ListResponse{Records: records}, nil
}
