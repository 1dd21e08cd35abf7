// Package payment contains the payment ledger: the payment entity, its
// status state machine, order-number correlation, and subscription packages.
//
// Status transitions are monotonic:
//
//	PENDING → PAID | FAILED
//	PAID    → REFUNDED
//
// FAILED and REFUNDED are terminal. Every other transition request is
// rejected with ErrInvalidTransition.
package payment

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrPaymentNotFound = shared.NewDomainError("payment", "Find", shared.ErrNotFound, "payment not found")
	ErrPackageNotFound = shared.NewDomainError("payment", "FindPackage", shared.ErrNotFound, "subscription package not found")

	// ErrInvalidTransition rejects a status change the state machine forbids.
	ErrInvalidTransition = shared.NewDomainError("payment", "ApplyStatus", shared.ErrStateTransition, "payment status transition not allowed")

	// ErrOrderNumberTaken signals an order-number collision on create.
	ErrOrderNumberTaken = shared.NewDomainError("payment", "Create", shared.ErrConflict, "order number already exists")

	// ErrTooManyPayments rejects payment creation under the abnormal-activity
	// heuristic: more than one payment created within the trailing window.
	ErrTooManyPayments = shared.NewDomainError("payment", "Create", shared.ErrRateLimited, "too many recent payments")

	// ErrTransitionLost signals that a concurrent callback applied a status
	// change first; the conditional update matched no row.
	ErrTransitionLost = shared.NewDomainError("payment", "ApplyStatus", shared.ErrConcurrentModification, "payment status changed concurrently")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Method is the payment channel.
type Method string

const (
	MethodAlipay Method = "alipay"
	MethodWeChat Method = "wechat"
)

// IsValid checks whether the method is a known value.
func (m Method) IsValid() bool {
	switch m {
	case MethodAlipay, MethodWeChat:
		return true
	}
	return false
}

// String returns the string representation.
func (m Method) String() string { return string(m) }

// ParseMethod parses a payment method, rejecting unknown values.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.IsValid() {
		return "", shared.NewDomainError("payment", "ParseMethod", shared.ErrInvalidEnum, "unknown payment method: "+s)
	}
	return m, nil
}

// Status is the payment lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation.
func (s Status) String() string { return string(s) }

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusFailed
	case StatusPaid:
		return next == StatusRefunded
	case StatusFailed, StatusRefunded:
		return false
	}
	return false
}

// ParseStatus parses a payment status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", shared.NewDomainError("payment", "ParseStatus", shared.ErrInvalidEnum, "unknown payment status: "+s)
	}
	return st, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// SubscriptionPackage is a purchasable access package. Read-only input to
// payment and commission math.
type SubscriptionPackage struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	DurationDays int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Payment is one payment order, correlated with the gateway by OrderNumber.
//
// Invariant: PaidAt and ValidUntil are set if and only if the payment has
// reached PAID at least once.
type Payment struct {
	ID            string
	UserID        string
	OrderNumber   string
	Amount        decimal.Decimal
	Method        Method
	Status        Status
	TransactionID *string
	PaidAt        *time.Time
	PackageID     *string
	ValidUntil    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment creates a PENDING payment for a subscription package.
func NewPayment(id, userID, orderNumber string, pkg *SubscriptionPackage, method Method, now time.Time) *Payment {
	pkgID := pkg.ID
	return &Payment{
		ID:          id,
		UserID:      userID,
		OrderNumber: orderNumber,
		Amount:      pkg.Price,
		Method:      method,
		Status:      StatusPending,
		PackageID:   &pkgID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyStatus moves the payment to next, enforcing the state machine.
//
// On a transition to PAID it records the transaction id and PaidAt, and when
// a package is attached it opens the validity window: ValidUntil = now plus
// the package duration. pkg may be nil when the payment has no package.
func (p *Payment) ApplyStatus(next Status, transactionID string, pkg *SubscriptionPackage, now time.Time) error {
	if !next.IsValid() {
		return shared.NewDomainError("payment", "ApplyStatus", shared.ErrInvalidEnum, "unknown payment status: "+string(next))
	}
	if !p.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	p.Status = next
	if transactionID != "" {
		p.TransactionID = &transactionID
	}

	if next == StatusPaid {
		paidAt := now
		p.PaidAt = &paidAt
		if pkg != nil {
			validUntil := now.AddDate(0, 0, pkg.DurationDays)
			p.ValidUntil = &validUntil
		}
	}

	p.UpdatedAt = now
	return nil
}
