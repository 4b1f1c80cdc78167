package server

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/geo"
	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	paydomain "github.com/aquabill/aquabill/internal/payment/domain"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, readingdomain.ErrInvalidID),
		errors.Is(err, readingdomain.ErrInvalidValue),
		errors.Is(err, readingdomain.ErrNonMonotonicReading),
		errors.Is(err, readingdomain.ErrOutOfOrderReading),
		errors.Is(err, geo.ErrInvalidFormat),
		errors.Is(err, geo.ErrOutOfRange),
		errors.Is(err, geo.ErrLocationMismatch),
		errors.Is(err, conndomain.ErrInactive),
		errors.Is(err, tariffdomain.ErrUnsupportedCategory),
		errors.Is(err, tariffdomain.ErrInvalidTierConfig),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, readingdomain.ErrStaleVersion),
		errors.Is(err, readingdomain.ErrNotLatestReading),
		errors.Is(err, custdomain.ErrNegativeBalance):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, readingdomain.ErrNotFound),
		errors.Is(err, conndomain.ErrNotFound),
		errors.Is(err, custdomain.ErrNotFound),
		errors.Is(err, invdomain.ErrNotFound),
		errors.Is(err, paydomain.ErrNotFound),
		errors.Is(err, tariffdomain.ErrTariffNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
