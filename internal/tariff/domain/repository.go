package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindByDistrictAndCategory loads the active tariff configuration used
	// to price a reading. Runs on the billing transaction handle.
	FindByDistrictAndCategory(ctx context.Context, db *gorm.DB, districtID snowflake.ID, category Category) (*TariffConfig, error)
	Insert(ctx context.Context, db *gorm.DB, cfg *TariffConfig) error
}
