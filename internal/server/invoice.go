package server

import (
	"net/http"
	"strings"

	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/pkg/db/option"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

var invoiceSortColumns = map[string]bool{
	"created_at":     true,
	"total_amount":   true,
	"remaining_debt": true,
	"code":           true,
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		CustomerID   string `form:"customer_id"`
		ConnectionID string `form:"connection_id"`
		Status       string `form:"status"`
		SortBy       string `form:"sort_by"`
		OrderBy      string `form:"order_by"`
		Limit        int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := &invdomain.Invoice{}
	if raw := strings.TrimSpace(query.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
			return
		}
		filter.CustomerID = id
	}
	if raw := strings.TrimSpace(query.ConnectionID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("connection_id", "invalid_connection_id", "invalid connection_id"))
			return
		}
		filter.ConnectionID = id
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		filter.Status = invdomain.Status(strings.ToUpper(status))
	}

	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	invoices, err := s.invoiceStore.Find(c.Request.Context(), filter,
		option.WithSortBy(option.QuerySortBy{
			Allow:   invoiceSortColumns,
			SortBy:  strings.TrimSpace(query.SortBy),
			OrderBy: strings.TrimSpace(query.OrderBy),
		}),
		option.WithLimit(limit),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	invoice, err := s.invoiceStore.FindOne(c.Request.Context(), &invdomain.Invoice{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if invoice == nil {
		AbortWithError(c, invdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}
