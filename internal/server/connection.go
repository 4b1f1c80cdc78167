package server

import (
	"net/http"
	"strings"

	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/geo"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/aquabill/aquabill/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createConnectionRequest struct {
	Code           string  `json:"code"`
	CustomerID     string  `json:"customer_id"`
	DistrictID     string  `json:"district_id"`
	Category       string  `json:"category"`
	Latitude       string  `json:"latitude,omitempty"`
	Longitude      string  `json:"longitude,omitempty"`
	InitialReading float64 `json:"initial_reading"`
}

func (s *Server) CreateConnection(c *gin.Context) {
	var req createConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "code is required"))
		return
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
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
	if req.InitialReading < 0 {
		AbortWithError(c, newValidationError("initial_reading", "invalid_initial_reading", "invalid initial_reading"))
		return
	}

	// Coordinates are optional but must come as a pair.
	var latitude, longitude *float64
	latRaw, lonRaw := strings.TrimSpace(req.Latitude), strings.TrimSpace(req.Longitude)
	if (latRaw == "") != (lonRaw == "") {
		AbortWithError(c, newValidationError("latitude", "invalid_location", "latitude and longitude must both be set"))
		return
	}
	if latRaw != "" {
		lat, err := geo.ParseLatitude(latRaw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		lon, err := geo.ParseLongitude(lonRaw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		latitude, longitude = &lat, &lon
	}

	owner, err := s.customerStore.FindOne(c.Request.Context(), &custdomain.Customer{ID: customerID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if owner == nil {
		AbortWithError(c, custdomain.ErrNotFound)
		return
	}

	connection := &conndomain.Connection{
		ID:             s.genID.Generate(),
		Code:           code,
		CustomerID:     customerID,
		DistrictID:     districtID,
		Category:       category,
		Latitude:       latitude,
		Longitude:      longitude,
		InitialReading: req.InitialReading,
		Status:         conndomain.StatusActive,
	}
	if err := s.connections.Insert(c.Request.Context(), s.db, connection); err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, ErrConflict)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": connection})
}

func (s *Server) GetConnection(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	connection, err := s.connectionStore.FindOne(c.Request.Context(), &conndomain.Connection{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if connection == nil {
		AbortWithError(c, conndomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connection})
}
