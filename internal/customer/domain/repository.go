package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	// FindForUpdate loads a customer under a row lock so that balance math
	// is serialized across concurrent billing transactions.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Customer, error)

	// ConsumeCredit deducts amount from the locked customer's balance and
	// appends a ledger entry. Returns ErrNegativeBalance if the deduction
	// would overdraw.
	ConsumeCredit(ctx context.Context, tx *gorm.DB, customer *Customer, amount decimal.Decimal, source CreditSourceType, sourceID, entryID snowflake.ID) error

	// ReturnCredit adds amount back to the locked customer's balance and
	// appends a ledger entry.
	ReturnCredit(ctx context.Context, tx *gorm.DB, customer *Customer, amount decimal.Decimal, source CreditSourceType, sourceID, entryID snowflake.ID) error

	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
}
