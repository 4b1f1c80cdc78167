package repository

import (
	"context"
	"time"

	"github.com/aquabill/aquabill/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCreditPayment(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) (*domain.Payment, error) {
	query := `SELECT * FROM payments WHERE invoice_id = ? AND method = ?`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var payment domain.Payment
	err := tx.WithContext(ctx).Raw(query, invoiceID, domain.MethodCreditBalance).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, payment *domain.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *repo) UpdateAmount(ctx context.Context, tx *gorm.DB, payment *domain.Payment) error {
	now := time.Now().UTC()
	err := tx.WithContext(ctx).Exec(
		`UPDATE payments SET amount = ?, updated_at = ? WHERE id = ?`,
		payment.Amount, now, payment.ID,
	).Error
	if err != nil {
		return err
	}
	payment.UpdatedAt = now
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	return tx.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id).Error
}

func (r *repo) DeleteByInvoice(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error {
	return tx.WithContext(ctx).Exec(`DELETE FROM payments WHERE invoice_id = ?`, invoiceID).Error
}
