package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/payment"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT SUMMARY QUERY
// Read models over the payment ledger: a user's order history and the
// platform revenue aggregate over a date range.
// ══════════════════════════════════════════════════════════════════════════════

// PaymentSnapshot is one payment as exposed to the boundary.
type PaymentSnapshot struct {
	PaymentID   string
	OrderNumber string
	Amount      string
	Method      payment.Method
	Status      payment.Status
	PaidAt      *time.Time
	ValidUntil  *time.Time
	CreatedAt   time.Time
}

// GetUserPaymentsQuery asks for one user's payment history.
type GetUserPaymentsQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetUserPaymentsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_payments: user_id is required")
	}
	return nil
}

// GetUserPaymentsHandler handles the GetUserPaymentsQuery.
type GetUserPaymentsHandler struct {
	paymentRepo payment.Repository
}

// NewGetUserPaymentsHandler creates a new GetUserPaymentsHandler.
func NewGetUserPaymentsHandler(paymentRepo payment.Repository) *GetUserPaymentsHandler {
	return &GetUserPaymentsHandler{paymentRepo: paymentRepo}
}

// Handle executes the user payments query.
func (h *GetUserPaymentsHandler) Handle(ctx context.Context, q GetUserPaymentsQuery) ([]PaymentSnapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	payments, err := h.paymentRepo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]PaymentSnapshot, len(payments))
	for i, p := range payments {
		snapshots[i] = PaymentSnapshot{
			PaymentID:   p.ID,
			OrderNumber: p.OrderNumber,
			Amount:      p.Amount.StringFixed(2),
			Method:      p.Method,
			Status:      p.Status,
			PaidAt:      p.PaidAt,
			ValidUntil:  p.ValidUntil,
			CreatedAt:   p.CreatedAt,
		}
	}
	return snapshots, nil
}

// GetRevenueQuery asks for the PAID total over [From, To).
type GetRevenueQuery struct {
	From time.Time
	To   time.Time
}

// Validate validates the query.
func (q GetRevenueQuery) Validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return errors.New("revenue: from and to are required")
	}
	if q.From.After(q.To) {
		return errors.New("revenue: from must be before to")
	}
	return nil
}

// GetRevenueHandler handles the GetRevenueQuery.
type GetRevenueHandler struct {
	paymentRepo payment.Repository
}

// NewGetRevenueHandler creates a new GetRevenueHandler.
func NewGetRevenueHandler(paymentRepo payment.Repository) *GetRevenueHandler {
	return &GetRevenueHandler{paymentRepo: paymentRepo}
}

// Handle executes the revenue query, returning the total with 2 decimals.
func (h *GetRevenueHandler) Handle(ctx context.Context, q GetRevenueQuery) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	sum, err := h.paymentRepo.SumPaidBetween(ctx, q.From, q.To)
	if err != nil {
		return "", err
	}
	return sum.StringFixed(2), nil
}
