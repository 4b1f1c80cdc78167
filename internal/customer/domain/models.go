package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("customer_not_found")
	ErrNegativeBalance = errors.New("credit_balance_negative")
)

// Customer holds the prepaid credit balance used to offset invoices. The
// balance is mutated only inside billing, correction and reversal
// transactions, always under a row lock, and must never go negative.
type Customer struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	Code            string          `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name            string          `json:"name" gorm:"type:text;not null"`
	AvailableCredit decimal.Decimal `json:"available_credit" gorm:"type:numeric;not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

// CreditDirection marks whether an entry consumed or returned credit.
type CreditDirection string

const (
	CreditDirectionConsume CreditDirection = "consume"
	CreditDirectionReturn  CreditDirection = "return"
)

// CreditSourceType names the operation that moved the credit.
type CreditSourceType string

const (
	CreditSourceInvoice    CreditSourceType = "invoice"
	CreditSourceCorrection CreditSourceType = "correction"
	CreditSourceReversal   CreditSourceType = "reversal"
)

// CreditEntry is an immutable ledger row written for every balance mutation.
// The customer's AvailableCredit is the fold of these entries; BalanceAfter
// lets auditors cross-check the fold without replaying history.
type CreditEntry struct {
	ID           snowflake.ID     `json:"id" gorm:"primaryKey"`
	CustomerID   snowflake.ID     `json:"customer_id" gorm:"not null;index"`
	Direction    CreditDirection  `json:"direction" gorm:"type:text;not null"`
	Amount       decimal.Decimal  `json:"amount" gorm:"type:numeric;not null"`
	SourceType   CreditSourceType `json:"source_type" gorm:"type:text;not null"`
	SourceID     snowflake.ID     `json:"source_id" gorm:"not null;index"`
	BalanceAfter decimal.Decimal  `json:"balance_after" gorm:"type:numeric;not null"`
	CreatedAt    time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CreditEntry) TableName() string { return "credit_entries" }
