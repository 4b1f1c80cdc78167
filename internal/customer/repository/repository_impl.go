package repository

import (
	"context"
	"time"

	"github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/money"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	query := `SELECT id, code, name, available_credit, created_at, updated_at
		 FROM customers
		 WHERE id = ?`
	// sqlite serializes writers on its own and rejects the locking clause.
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var customer domain.Customer
	err := tx.WithContext(ctx).Raw(query, id).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &customer, nil
}

func (r *repo) ConsumeCredit(ctx context.Context, tx *gorm.DB, customer *domain.Customer, amount decimal.Decimal, source domain.CreditSourceType, sourceID, entryID snowflake.ID) error {
	if amount.Sign() <= 0 {
		return nil
	}
	newBalance := money.Round2(customer.AvailableCredit.Sub(amount))
	if newBalance.Sign() < 0 {
		return domain.ErrNegativeBalance
	}
	return r.applyDelta(ctx, tx, customer, newBalance, domain.CreditDirectionConsume, amount, source, sourceID, entryID)
}

func (r *repo) ReturnCredit(ctx context.Context, tx *gorm.DB, customer *domain.Customer, amount decimal.Decimal, source domain.CreditSourceType, sourceID, entryID snowflake.ID) error {
	if amount.Sign() <= 0 {
		return nil
	}
	newBalance := money.Round2(customer.AvailableCredit.Add(amount))
	return r.applyDelta(ctx, tx, customer, newBalance, domain.CreditDirectionReturn, amount, source, sourceID, entryID)
}

func (r *repo) applyDelta(ctx context.Context, tx *gorm.DB, customer *domain.Customer, newBalance decimal.Decimal, direction domain.CreditDirection, amount decimal.Decimal, source domain.CreditSourceType, sourceID, entryID snowflake.ID) error {
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`UPDATE customers SET available_credit = ?, updated_at = ? WHERE id = ?`,
		newBalance, now, customer.ID,
	).Error; err != nil {
		return err
	}

	entry := domain.CreditEntry{
		ID:           entryID,
		CustomerID:   customer.ID,
		Direction:    direction,
		Amount:       money.Round2(amount),
		SourceType:   source,
		SourceID:     sourceID,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}

	customer.AvailableCredit = newBalance
	customer.UpdatedAt = now
	return nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}
