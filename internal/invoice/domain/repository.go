package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)

	// FindByReadingForUpdate locks the invoice priced from the given
	// reading so corrections and reversals serialize against each other.
	FindByReadingForUpdate(ctx context.Context, tx *gorm.DB, readingID snowflake.ID) (*Invoice, error)

	Insert(ctx context.Context, tx *gorm.DB, invoice *Invoice) error

	// UpdateAmounts rewrites the monetary fields and status after a
	// correction recomputed the charge.
	UpdateAmounts(ctx context.Context, tx *gorm.DB, invoice *Invoice) error

	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
}
