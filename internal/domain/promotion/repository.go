package promotion

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines storage operations for the commission ledger.
type Repository interface {
	// Create persists a new ledger entry.
	Create(ctx context.Context, p *Promotion) error

	// GetByID returns a ledger entry by ID.
	// Returns ErrPromotionNotFound if the entry does not exist.
	GetByID(ctx context.Context, id string) (*Promotion, error)

	// ListByPromoter returns all of a promoter's entries, newest first.
	ListByPromoter(ctx context.Context, promoterID string) ([]*Promotion, error)

	// ListUnpaid returns the promoter's unpaid entries.
	ListUnpaid(ctx context.Context, promoterID string) ([]*Promotion, error)

	// SumUnpaid returns the total unpaid commission for a promoter.
	SumUnpaid(ctx context.Context, promoterID string) (decimal.Decimal, error)

	// CountByPromoter returns the promoter's total entry count.
	CountByPromoter(ctx context.Context, promoterID string) (int, error)

	// MarkAllPaid sets paid=true and paidAt=now on every currently-unpaid
	// entry of the promoter in one batch, returning the updated entries.
	// Idempotent: with nothing unpaid it returns an empty slice.
	MarkAllPaid(ctx context.Context, promoterID string, now time.Time) ([]*Promotion, error)
}
