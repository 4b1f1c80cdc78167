package service

import (
	"github.com/aquabill/aquabill/internal/money"
	"github.com/shopspring/decimal"
)

// creditReconciliation is the outcome of re-settling an invoice against the
// customer's prepaid credit after its total changed.
type creditReconciliation struct {
	// CreditUsed is the total credit applied to the invoice after the
	// reconciliation, replacing whatever was applied before.
	CreditUsed decimal.Decimal
	// Returned is the credit handed back to the customer.
	Returned decimal.Decimal
	// ExtraConsumed is the additional credit deducted from the customer.
	ExtraConsumed decimal.Decimal
	// Remaining is the debt left on the invoice.
	Remaining decimal.Decimal
}

// reconcileCredit re-settles a corrected invoice total against the credit
// already applied (prevUsed) and the customer's current balance (available).
// Pure: the caller performs the actual ledger mutations.
//
// Three regimes, tolerant to rounding drift:
//   - the new total dropped below what was collected: the surplus goes back
//     to the customer and the invoice is fully covered
//   - the new total matches what was collected: nothing moves
//   - the new total grew: the shortfall is covered from the available
//     balance as far as it reaches, the rest stays as debt
func reconcileCredit(newTotal, prevUsed, available decimal.Decimal) creditReconciliation {
	newTotal = money.Round2(newTotal)
	prevUsed = money.Round2(prevUsed)

	diff := newTotal.Sub(prevUsed)

	switch {
	case diff.LessThan(money.Tolerance.Neg()):
		return creditReconciliation{
			CreditUsed: newTotal,
			Returned:   money.Round2(diff.Neg()),
			Remaining:  decimal.Zero,
		}

	case diff.Abs().LessThanOrEqual(money.Tolerance):
		return creditReconciliation{
			CreditUsed: prevUsed,
			Remaining:  decimal.Zero,
		}

	default:
		extra := decimal.Min(diff, money.Round2(available))
		if extra.Sign() < 0 {
			extra = decimal.Zero
		}
		used := prevUsed.Add(extra)
		return creditReconciliation{
			CreditUsed:    used,
			ExtraConsumed: extra,
			Remaining:     money.Round2(newTotal.Sub(used)),
		}
	}
}
