package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByReadingForUpdate(ctx context.Context, tx *gorm.DB, readingID snowflake.ID) (*domain.Invoice, error) {
	query := `SELECT * FROM invoices WHERE reading_id = ?`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var invoice domain.Invoice
	err := tx.WithContext(ctx).Raw(query, readingID).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &invoice, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *repo) UpdateAmounts(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	err := tx.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET base_amount = ?, tax_amount = ?, total_amount = ?,
		     credit_applied = ?, remaining_debt = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.BaseAmount,
		invoice.TaxAmount,
		invoice.TotalAmount,
		invoice.CreditApplied,
		invoice.RemainingDebt,
		invoice.Status,
		now,
		invoice.ID,
	).Error
	if err != nil {
		return err
	}
	invoice.UpdatedAt = now
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id).Error
}
