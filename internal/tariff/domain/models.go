package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Category identifies the consumer class of a connection. The category is
// fixed at connection creation and selects the pricing rule.
type Category string

const (
	CategoryDomestic       Category = "DOMESTIC"
	CategoryPublicFountain Category = "PUBLIC_FOUNTAIN"
	CategoryMunicipal      Category = "MUNICIPAL"
	CategoryCommercial     Category = "COMMERCIAL"
	CategoryIndustrial     Category = "INDUSTRIAL"
	CategoryPublic         Category = "PUBLIC"
)

// Valid reports whether the category is one of the supported enumeration.
func (c Category) Valid() bool {
	switch c {
	case CategoryDomestic, CategoryPublicFountain, CategoryMunicipal,
		CategoryCommercial, CategoryIndustrial, CategoryPublic:
		return true
	}
	return false
}

var (
	ErrUnsupportedCategory = errors.New("unsupported_category")
	ErrTariffNotFound      = errors.New("tariff_not_found")
	ErrInvalidTierConfig   = errors.New("invalid_tier_config")
)

// TariffConfig holds the per-district pricing rules for one category.
// Amounts are monetary decimals; consumption bounds are cubic meters.
type TariffConfig struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	DistrictID snowflake.ID `json:"district_id" gorm:"column:district_id;not null;index:idx_tariff_district_category,unique,priority:1"`
	Category   Category     `json:"category" gorm:"type:text;not null;index:idx_tariff_district_category,unique,priority:2"`

	// Domestic and municipal connections pay a fixed availability fee on
	// every invoice regardless of consumption.
	AvailabilityFee decimal.Decimal `json:"availability_fee" gorm:"type:numeric;not null"`

	// Flat per-unit rate: public fountains always, municipal when UseTiers
	// is false.
	UnitRate decimal.Decimal `json:"unit_rate" gorm:"type:numeric;not null"`

	// Three escalating tiers (escalões). Each tier bills only its own slice
	// of the consumption band.
	Tier1Min  decimal.Decimal `json:"tier1_min" gorm:"type:numeric;not null"`
	Tier1Max  decimal.Decimal `json:"tier1_max" gorm:"type:numeric;not null"`
	Tier1Rate decimal.Decimal `json:"tier1_rate" gorm:"type:numeric;not null"`
	Tier2Min  decimal.Decimal `json:"tier2_min" gorm:"type:numeric;not null"`
	Tier2Max  decimal.Decimal `json:"tier2_max" gorm:"type:numeric;not null"`
	Tier2Rate decimal.Decimal `json:"tier2_rate" gorm:"type:numeric;not null"`
	Tier3Min  decimal.Decimal `json:"tier3_min" gorm:"type:numeric;not null"`
	Tier3Rate decimal.Decimal `json:"tier3_rate" gorm:"type:numeric;not null"`

	// Municipal connections may be billed flat instead of tiered.
	UseTiers bool `json:"use_tiers" gorm:"not null;default:true"`

	// Commercial, industrial and public connections pay a base fee covering
	// a minimum consumption, plus an overage rate above it.
	BaseFee            decimal.Decimal `json:"base_fee" gorm:"type:numeric;not null"`
	MinimumConsumption decimal.Decimal `json:"minimum_consumption" gorm:"type:numeric;not null"`
	OverageRate        decimal.Decimal `json:"overage_rate" gorm:"type:numeric;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TariffConfig) TableName() string { return "tariff_configs" }

// Validate checks that the tier table is contiguous and non-overlapping.
// Misconfigured tiers are a consistency violation and abort billing.
func (c TariffConfig) Validate() error {
	if !c.Category.Valid() {
		return ErrUnsupportedCategory
	}
	if !usesTiers(c) {
		return nil
	}
	if c.Tier1Min.Sign() < 0 || c.Tier1Max.LessThanOrEqual(c.Tier1Min) {
		return ErrInvalidTierConfig
	}
	if !c.Tier2Min.Equal(c.Tier1Max) || c.Tier2Max.LessThanOrEqual(c.Tier2Min) {
		return ErrInvalidTierConfig
	}
	if !c.Tier3Min.Equal(c.Tier2Max) {
		return ErrInvalidTierConfig
	}
	return nil
}

func usesTiers(c TariffConfig) bool {
	switch c.Category {
	case CategoryDomestic:
		return true
	case CategoryMunicipal:
		return c.UseTiers
	}
	return false
}
