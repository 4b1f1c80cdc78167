package domain

import (
	"context"
	"time"

	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
)

type SubmitRequest struct {
	ConnectionID string    `json:"connection_id"`
	CurrentValue float64   `json:"current_value"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
	Notes        string    `json:"notes,omitempty"`
	PhotoRef     string    `json:"photo_ref,omitempty"`
	RecordedBy   string    `json:"recorded_by,omitempty"`
	ReadAt       time.Time `json:"read_at,omitempty"`
}

type CorrectRequest struct {
	ReadingID    string  `json:"reading_id"`
	CurrentValue float64 `json:"current_value"`
	Notes        string  `json:"notes,omitempty"`
	ActorID      string  `json:"actor_id,omitempty"`
}

// BillingResult bundles the entities touched by one billing transaction.
// Payment is nil when no prepaid credit was applied.
type BillingResult struct {
	Reading *Reading               `json:"reading"`
	Invoice *invoicedomain.Invoice `json:"invoice"`
	Payment *paymentdomain.Payment `json:"payment,omitempty"`
}

// Service is the metering-to-billing transaction engine. Each operation is
// one atomic unit: a failure at any step leaves the prior state intact.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*BillingResult, error)
	Correct(ctx context.Context, req CorrectRequest) (*BillingResult, error)
	Reverse(ctx context.Context, readingID string) error
	GetByID(ctx context.Context, readingID string) (*Reading, error)
}
