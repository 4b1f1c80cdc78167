package repository

import (
	"context"
	"errors"

	"github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByDistrictAndCategory(ctx context.Context, db *gorm.DB, districtID snowflake.ID, category domain.Category) (*domain.TariffConfig, error) {
	var cfg domain.TariffConfig
	err := db.WithContext(ctx).
		Where(&domain.TariffConfig{DistrictID: districtID, Category: category}).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *domain.TariffConfig) error {
	return db.WithContext(ctx).Create(cfg).Error
}
