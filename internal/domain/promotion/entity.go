// Package promotion contains the referral-commission ledger. A promotion row
// credits a referrer a percentage of a referred user's payment.
package promotion

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// CommissionRate is the share of a qualifying payment credited to the
// referrer.
var CommissionRate = decimal.NewFromFloat(0.10)

// Promotion is one commission ledger entry. Created once per qualifying
// payment; mutated only by the batch mark-paid operation.
type Promotion struct {
	ID            string
	PromoterID    string
	InvitedUserID string

	// CommissionAmount is 10% of the triggering payment, rounded half-up to
	// 2 decimal places.
	CommissionAmount decimal.Decimal

	Paid      bool
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Commission computes the commission for a payment amount: amount times the
// rate, rounded half-up at 2 decimals.
func Commission(amount decimal.Decimal) decimal.Decimal {
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts handled here.
	return amount.Mul(CommissionRate).Round(2)
}

// NewCommission creates the ledger entry for a qualifying payment. Callers
// guarantee at-most-once invocation per payment; the ledger has no internal
// dedupe.
func NewCommission(id, promoterID, invitedUserID string, paymentAmount decimal.Decimal, now time.Time) *Promotion {
	return &Promotion{
		ID:               id,
		PromoterID:       promoterID,
		InvitedUserID:    invitedUserID,
		CommissionAmount: Commission(paymentAmount),
		Paid:             false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Domain errors.
var (
	ErrPromotionNotFound = shared.NewDomainError("promotion", "Find", shared.ErrNotFound, "promotion not found")
)
