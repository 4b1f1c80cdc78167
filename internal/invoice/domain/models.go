package domain

import (
	"errors"
	"time"

	"github.com/aquabill/aquabill/internal/money"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("invoice_not_found")
	ErrInconsistent = errors.New("invoice_amounts_inconsistent")
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
)

// StatusForRemaining derives the invoice status from the remaining debt.
// PartiallyPaid is reserved for manual payment flows outside this engine;
// automatic credit application produces Paid or Pending only.
func StatusForRemaining(remaining decimal.Decimal) Status {
	if remaining.Sign() <= 0 {
		return StatusPaid
	}
	return StatusPending
}

// Invoice prices exactly one reading. CreditApplied + RemainingDebt always
// equals TotalAmount; a drift beyond the rounding tolerance is a defect.
type Invoice struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Code         string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	ReadingID    snowflake.ID `json:"reading_id" gorm:"not null;uniqueIndex"`
	CustomerID   snowflake.ID `json:"customer_id" gorm:"not null;index"`
	ConnectionID snowflake.ID `json:"connection_id" gorm:"not null;index"`

	BaseAmount    decimal.Decimal `json:"base_amount" gorm:"type:numeric;not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric;not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric;not null"`
	CreditApplied decimal.Decimal `json:"credit_applied" gorm:"type:numeric;not null"`
	RemainingDebt decimal.Decimal `json:"remaining_debt" gorm:"type:numeric;not null"`

	Status Status `json:"status" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

// CheckConsistency verifies credit_applied + remaining_debt == total within
// the rounding tolerance. Violations abort the enclosing transaction rather
// than persisting drifted money.
func (i Invoice) CheckConsistency() error {
	sum := money.Round2(i.CreditApplied.Add(i.RemainingDebt))
	if !money.Equalish(sum, money.Round2(i.TotalAmount)) {
		return ErrInconsistent
	}
	return nil
}
