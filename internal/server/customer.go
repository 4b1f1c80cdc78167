package server

import (
	"net/http"
	"strings"

	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/money"
	"github.com/aquabill/aquabill/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createCustomerRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	AvailableCredit string `json:"available_credit,omitempty"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "code is required"))
		return
	}
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "name is required"))
		return
	}

	credit := decimal.Zero
	if raw := strings.TrimSpace(req.AvailableCredit); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.Sign() < 0 {
			AbortWithError(c, newValidationError("available_credit", "invalid_available_credit", "invalid available_credit"))
			return
		}
		credit = money.Round2(parsed)
	}

	customer := &custdomain.Customer{
		ID:              s.genID.Generate(),
		Code:            code,
		Name:            name,
		AvailableCredit: credit,
	}
	if err := s.customers.Insert(c.Request.Context(), s.db, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			AbortWithError(c, ErrConflict)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": customer})
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	customer, err := s.customerStore.FindOne(c.Request.Context(), &custdomain.Customer{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if customer == nil {
		AbortWithError(c, custdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}
