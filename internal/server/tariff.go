package server

import (
	"net/http"
	"strings"

	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/aquabill/aquabill/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createTariffRequest struct {
	DistrictID string `json:"district_id"`
	Category   string `json:"category"`

	AvailabilityFee string `json:"availability_fee,omitempty"`
	UnitRate        string `json:"unit_rate,omitempty"`

	Tier1Min  string `json:"tier1_min,omitempty"`
	Tier1Max  string `json:"tier1_max,omitempty"`
	Tier1Rate string `json:"tier1_rate,omitempty"`
	Tier2Min  string `json:"tier2_min,omitempty"`
	Tier2Max  string `json:"tier2_max,omitempty"`
	Tier2Rate string `json:"tier2_rate,omitempty"`
	Tier3Min  string `json:"tier3_min,omitempty"`
	Tier3Rate string `json:"tier3_rate,omitempty"`

	UseTiers *bool `json:"use_tiers,omitempty"`

	BaseFee            string `json:"base_fee,omitempty"`
	MinimumConsumption string `json:"minimum_consumption,omitempty"`
	OverageRate        string `json:"overage_rate,omitempty"`
}

func (s *Server) CreateTariff(c *gin.Context) {
	var req createTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	districtID, err := snowflake.ParseString(strings.TrimSpace(req.DistrictID))
	if err != nil {
		AbortWithError(c, newValidationError("district_id", "invalid_district_id", "invalid district_id"))
		return
	}
	category := tariffdomain.Category(strings.ToUpper(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		AbortWithError(c, tariffdomain.ErrUnsupportedCategory)
		return
	}

	amounts := map[string]*decimal.Decimal{}
	cfg := tariffdomain.TariffConfig{
		ID:         s.genID.Generate(),
		DistrictID: districtID,
		Category:   category,
		UseTiers:   category == tariffdomain.CategoryDomestic,
	}
	if req.UseTiers != nil {
		cfg.UseTiers = *req.UseTiers
	}

	amounts["availability_fee"] = &cfg.AvailabilityFee
	amounts["unit_rate"] = &cfg.UnitRate
	amounts["tier1_min"] = &cfg.Tier1Min
	amounts["tier1_max"] = &cfg.Tier1Max
	amounts["tier1_rate"] = &cfg.Tier1Rate
	amounts["tier2_min"] = &cfg.Tier2Min
	amounts["tier2_max"] = &cfg.Tier2Max
	amounts["tier2_rate"] = &cfg.Tier2Rate
	amounts["tier3_min"] = &cfg.Tier3Min
	amounts["tier3_rate"] = &cfg.Tier3Rate
	amounts["base_fee"] = &cfg.BaseFee
	amounts["minimum_consumption"] = &cfg.MinimumConsumption
	amounts["overage_rate"] = &cfg.OverageRate

	raw := map[string]string{
		"availability_fee":    req.AvailabilityFee,
		"unit_rate":           req.UnitRate,
		"tier1_min":           req.Tier1Min,
		"tier1_max":           req.Tier1Max,
		"tier1_rate":          req.Tier1Rate,
		"tier2_min":           req.Tier2Min,
		"tier2_max":           req.Tier2Max,
		"tier2_rate":          req.Tier2Rate,
		"tier3_min":           req.Tier3Min,
		"tier3_rate":          req.Tier3Rate,
		"base_fee":            req.BaseFee,
		"minimum_consumption": req.MinimumConsumption,
		"overage_rate":        req.OverageRate,
	}
	for field, value := range raw {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		parsed, err := decimal.NewFromString(trimmed)
		if err != nil || parsed.Sign() < 0 {
			AbortWithError(c, newValidationError(field, "invalid_"+field, "invalid "+field))
			return
		}
		*amounts[field] = parsed
	}

	if err := cfg.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.tariffs.Insert(c.Request.Context(), s.db, &cfg); err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, ErrConflict)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": cfg})
}
