package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).First(&reading, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) FindForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Reading, error) {
	query := `SELECT * FROM readings WHERE id = ?`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var reading domain.Reading
	err := tx.WithContext(ctx).Raw(query, id).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &reading, nil
}

func (r *repo) LatestForConnection(ctx context.Context, tx *gorm.DB, connectionID snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := tx.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("read_at DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) AverageConsumption(ctx context.Context, db *gorm.DB, connectionID snowflake.ID, since time.Time, excludeID snowflake.ID) (float64, error) {
	var avg *float64
	err := db.WithContext(ctx).Raw(
		`SELECT AVG(consumption)
		 FROM readings
		 WHERE connection_id = ? AND read_at >= ? AND id != ?`,
		connectionID, since, excludeID,
	).Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, reading *domain.Reading) error {
	return tx.WithContext(ctx).Create(reading).Error
}

func (r *repo) UpdateAmended(ctx context.Context, tx *gorm.DB, reading *domain.Reading, expectedVersion int32) error {
	now := time.Now().UTC()
	result := tx.WithContext(ctx).Exec(
		`UPDATE readings
		 SET current_value = ?, consumption = ?, notes = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		reading.CurrentValue,
		reading.Consumption,
		reading.Notes,
		now,
		reading.ID,
		expectedVersion,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStaleVersion
	}
	reading.Version = expectedVersion + 1
	reading.UpdatedAt = now
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(`DELETE FROM readings WHERE id = ?`, id).Error
}
