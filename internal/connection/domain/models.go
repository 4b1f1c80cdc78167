package domain

import (
	"errors"
	"time"

	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound = errors.New("connection_not_found")
	ErrInactive = errors.New("connection_inactive")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Connection is a billed water-meter installation owned by one customer.
// The category is fixed at creation and drives tariff selection. Legacy
// connections may lack a registered location, which disables geofencing.
type Connection struct {
	ID         snowflake.ID          `json:"id" gorm:"primaryKey"`
	Code       string                `json:"code" gorm:"type:text;not null;uniqueIndex"`
	CustomerID snowflake.ID          `json:"customer_id" gorm:"not null;index"`
	DistrictID snowflake.ID          `json:"district_id" gorm:"not null;index"`
	Category   tariffdomain.Category `json:"category" gorm:"type:text;not null"`

	Latitude  *float64 `json:"latitude,omitempty" gorm:"type:numeric"`
	Longitude *float64 `json:"longitude,omitempty" gorm:"type:numeric"`

	InitialReading float64 `json:"initial_reading" gorm:"type:numeric;not null"`
	Status         Status  `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Connection) TableName() string { return "connections" }

// RegisteredLocation returns the geofence anchor, or nil when the
// connection was registered without coordinates.
func (c Connection) RegisteredLocation() (lat, lon float64, ok bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return 0, 0, false
	}
	return *c.Latitude, *c.Longitude, true
}
