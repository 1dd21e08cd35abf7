package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines storage operations for payments.
type Repository interface {
	// Create persists a new payment.
	// Returns ErrOrderNumberTaken when the order number collides with an
	// existing row (unique constraint), so callers can regenerate and retry.
	Create(ctx context.Context, p *Payment) error

	// GetByID returns a payment by ID.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id string) (*Payment, error)

	// GetByOrderNumber returns a payment by its order number.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*Payment, error)

	// UpdateStatus persists a status change conditionally: the update applies
	// only where the stored status still equals prev. A lost race returns
	// ErrTransitionLost and leaves the row unchanged.
	UpdateStatus(ctx context.Context, p *Payment, prev Status) error

	// ListByUser returns the user's payments, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Payment, error)

	// ListByStatus returns all payments in the given status.
	ListByStatus(ctx context.Context, status Status) ([]*Payment, error)

	// CountRecentByUser returns how many payments the user created at or
	// after since. Input to the abnormal-activity heuristic.
	CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error)

	// HasPaidOther reports whether the user has any PAID payment other than
	// excludeID. Used to detect a referred user's first paid payment.
	HasPaidOther(ctx context.Context, userID, excludeID string) (bool, error)

	// SumPaidBetween returns the total amount of PAID payments whose PaidAt
	// falls in [from, to).
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// PackageRepository defines storage operations for subscription packages.
type PackageRepository interface {
	// GetByID returns a package by ID.
	// Returns ErrPackageNotFound if the package does not exist.
	GetByID(ctx context.Context, id string) (*SubscriptionPackage, error)

	// ListActive returns all active packages.
	ListActive(ctx context.Context) ([]*SubscriptionPackage, error)
}
