package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Connection, error)
	Insert(ctx context.Context, db *gorm.DB, connection *Connection) error
}
