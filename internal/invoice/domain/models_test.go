package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusForRemaining(t *testing.T) {
	if got := StatusForRemaining(decimal.Zero); got != StatusPaid {
		t.Fatalf("expected PAID for zero debt, got %s", got)
	}
	if got := StatusForRemaining(decimal.NewFromFloat(0.01)); got != StatusPending {
		t.Fatalf("expected PENDING for outstanding debt, got %s", got)
	}
	if got := StatusForRemaining(decimal.NewFromInt(360)); got != StatusPending {
		t.Fatalf("expected PENDING, got %s", got)
	}
}

func TestCheckConsistency(t *testing.T) {
	invoice := Invoice{
		TotalAmount:   decimal.NewFromFloat(560.00),
		CreditApplied: decimal.NewFromInt(200),
		RemainingDebt: decimal.NewFromInt(360),
	}
	if err := invoice.CheckConsistency(); err != nil {
		t.Fatalf("expected consistent invoice: %v", err)
	}

	// One cent of accumulated rounding drift is still tolerated.
	invoice.RemainingDebt = decimal.NewFromFloat(360.01)
	if err := invoice.CheckConsistency(); err != nil {
		t.Fatalf("expected tolerance of 0.01: %v", err)
	}

	invoice.RemainingDebt = decimal.NewFromFloat(360.02)
	if err := invoice.CheckConsistency(); !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected inconsistency error, got %v", err)
	}
}
