package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)

	// FindForUpdate locks the reading row for correction or reversal.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Reading, error)

	// LatestForConnection returns the most recent reading by read_at, or
	// nil when the connection has never been read.
	LatestForConnection(ctx context.Context, tx *gorm.DB, connectionID snowflake.ID) (*Reading, error)

	// AverageConsumption computes the trailing mean consumption for the
	// connection over readings taken since the given time, excluding the
	// reading identified by excludeID. Returns 0 when no history exists.
	AverageConsumption(ctx context.Context, db *gorm.DB, connectionID snowflake.ID, since time.Time, excludeID snowflake.ID) (float64, error)

	Insert(ctx context.Context, tx *gorm.DB, reading *Reading) error

	// UpdateAmended persists a correction guarded by the optimistic
	// version check; ErrStaleVersion when another correction won.
	UpdateAmended(ctx context.Context, tx *gorm.DB, reading *Reading, expectedVersion int32) error

	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
}
