package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound            = errors.New("reading_not_found")
	ErrNonMonotonicReading = errors.New("non_monotonic_reading")
	ErrOutOfOrderReading   = errors.New("out_of_order_reading")
	ErrStaleVersion        = errors.New("reading_version_stale")
	ErrNotLatestReading    = errors.New("reading_not_latest")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidValue        = errors.New("invalid_reading_value")
)

// Reading records one billing event for a connection. Consumption is always
// derived from the stored previous value, never trusted from input. Version
// guards concurrent corrections: the second writer against the same version
// is rejected.
type Reading struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Code         string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	ConnectionID snowflake.ID `json:"connection_id" gorm:"not null;index"`
	CustomerID   snowflake.ID `json:"customer_id" gorm:"not null;index"`

	PreviousValue float64 `json:"previous_value" gorm:"type:numeric;not null"`
	CurrentValue  float64 `json:"current_value" gorm:"type:numeric;not null"`
	Consumption   float64 `json:"consumption" gorm:"type:numeric;not null"`

	Latitude  float64 `json:"latitude" gorm:"type:numeric;not null"`
	Longitude float64 `json:"longitude" gorm:"type:numeric;not null"`

	Notes    string `json:"notes,omitempty" gorm:"type:text"`
	PhotoRef string `json:"photo_ref,omitempty" gorm:"type:text"`

	ReadAt     time.Time `json:"read_at" gorm:"not null;index"`
	RecordedBy string    `json:"recorded_by" gorm:"type:text;not null"`
	Version    int32     `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Reading) TableName() string { return "readings" }
