package sequence

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

// Service issues monotonically increasing sequence numbers. Allocation is a
// single conditional statement at the storage layer so concurrent callers can
// never observe the same value; a missing counter is created at seq = 1.
type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log: p.Log.Named("sequence.service"),
	}
}

// Next increments the named counter and returns the new value. It runs on the
// caller's transaction handle: if the enclosing transaction rolls back, the
// allocation rolls back with it, so codes are never burned without a
// persisted entity.
func (s *Service) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	var seq int64
	err := tx.WithContext(ctx).Raw(
		`INSERT INTO sequence_counters (name, seq, updated_at)
		 VALUES (?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (name) DO UPDATE
		 SET seq = sequence_counters.seq + 1, updated_at = CURRENT_TIMESTAMP
		 RETURNING seq`,
		name,
	).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("allocate sequence %q: %w", name, err)
	}
	if seq == 0 {
		return 0, fmt.Errorf("allocate sequence %q: no value returned", name)
	}
	return seq, nil
}

// NextCode allocates the next number and renders it as a zero-padded,
// prefixed code, e.g. L042 or INV000317.
func (s *Service) NextCode(ctx context.Context, tx *gorm.DB, name, prefix string, pad int) (string, error) {
	seq, err := s.Next(ctx, tx, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", prefix, pad, seq), nil
}
