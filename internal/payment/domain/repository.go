package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("payment_not_found")

type Repository interface {
	// FindCreditPayment returns the automatic credit payment attached to
	// the invoice, or nil when the invoice was issued without credit.
	FindCreditPayment(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) (*Payment, error)

	Insert(ctx context.Context, tx *gorm.DB, payment *Payment) error

	// UpdateAmount rewrites the payment amount after a correction changed
	// the credit actually applied.
	UpdateAmount(ctx context.Context, tx *gorm.DB, payment *Payment) error

	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	DeleteByInvoice(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error
}
