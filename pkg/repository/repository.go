package repository

import (
	"context"

	"github.com/aquabill/aquabill/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a small generic store shared by list/read paths. Mutations
// that require locking or multi-entity atomicity go through raw SQL in the
// owning service instead.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	Delete(ctx context.Context, resourceID string) error
	Count(ctx context.Context, query *T) (int64, error)
}
