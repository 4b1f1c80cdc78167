package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MethodCreditBalance marks the synthetic payment the engine creates when
// prepaid credit is applied to an invoice. Manual payment methods are
// recorded by flows outside this engine.
const MethodCreditBalance = "credit_balance"

// NoteAutomaticCredit flags the payment as automatic credit application.
const NoteAutomaticCredit = "automatic credit application"

// Payment records money applied to an invoice. At most one credit_balance
// payment exists per invoice and its amount always equals the credit
// actually deducted from the customer.
type Payment struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID  snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	CustomerID snowflake.ID    `json:"customer_id" gorm:"not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	Method     string          `json:"method" gorm:"type:text;not null"`
	Note       string          `json:"note" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }
