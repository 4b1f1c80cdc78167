package repository

import (
	"context"
	"errors"

	"github.com/aquabill/aquabill/internal/connection/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Connection, error) {
	var connection domain.Connection
	err := db.WithContext(ctx).First(&connection, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &connection, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, connection *domain.Connection) error {
	return db.WithContext(ctx).Create(connection).Error
}
