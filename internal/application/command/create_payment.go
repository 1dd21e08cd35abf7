package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/retry"
	"github.com/edupath/edupath-core/pkg/timeutil"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PAYMENT COMMAND
// Opens a PENDING payment order for a subscription package. Order numbers
// carry a timestamp component plus a random suffix; uniqueness is guaranteed
// against concurrent creation by retrying a fresh number on the store's
// unique-constraint violation, not by trusting the randomness.
// ══════════════════════════════════════════════════════════════════════════════

// PaymentRateLimit is the abnormal-activity heuristic: creation is rejected
// when the user already created more than this many payments inside the
// trailing window.
const (
	PaymentRateLimit       = 1
	PaymentRateLimitWindow = 5 * time.Minute
)

// orderNumberAttempts bounds collision retries before giving up with a
// conflict error.
const orderNumberAttempts = 3

// CreatePaymentCommand contains the data to open a payment order.
type CreatePaymentCommand struct {
	// UserID is the acting user.
	UserID string

	// PackageID identifies the subscription package being bought.
	PackageID string

	// Method is the payment channel.
	Method payment.Method
}

// Validate validates the command.
func (c CreatePaymentCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("create_payment: user_id is required")
	}
	if c.PackageID == "" {
		return errors.New("create_payment: package_id is required")
	}
	if !c.Method.IsValid() {
		return fmt.Errorf("create_payment: unknown payment method: %s", c.Method)
	}
	return nil
}

// CreatePaymentResult is the created payment snapshot.
type CreatePaymentResult struct {
	PaymentID   string
	OrderNumber string
	Amount      string
	Status      payment.Status
	CreatedAt   time.Time
}

// CreatePaymentHandler handles the CreatePaymentCommand.
type CreatePaymentHandler struct {
	userRepo    user.Repository
	paymentRepo payment.Repository
	packageRepo payment.PackageRepository
	now         func() time.Time
}

// NewCreatePaymentHandler creates a new CreatePaymentHandler.
func NewCreatePaymentHandler(
	userRepo user.Repository,
	paymentRepo payment.Repository,
	packageRepo payment.PackageRepository,
) *CreatePaymentHandler {
	return &CreatePaymentHandler{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		packageRepo: packageRepo,
		now:         timeutil.Now,
	}
}

// Handle executes the create payment command.
func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.userRepo.GetByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}
	pkg, err := h.packageRepo.GetByID(ctx, cmd.PackageID)
	if err != nil {
		return nil, err
	}

	recent, err := h.paymentRepo.CountRecentByUser(ctx, cmd.UserID, h.now().Add(-PaymentRateLimitWindow))
	if err != nil {
		return nil, err
	}
	if recent > PaymentRateLimit {
		return nil, payment.ErrTooManyPayments
	}

	// Regenerate the order number on collision; collisions are benign races
	// against the unique constraint.
	p, err := retry.DoWithData(ctx, func(ctx context.Context) (*payment.Payment, error) {
		now := h.now()
		p := payment.NewPayment(uuid.NewString(), cmd.UserID, newOrderNumber(now), pkg, cmd.Method, now)
		if err := h.paymentRepo.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	},
		retry.WithMaxAttempts(orderNumberAttempts),
		retry.WithInitialDelay(time.Millisecond),
		retry.WithRetryIf(func(err error) bool {
			return errors.Is(err, payment.ErrOrderNumberTaken)
		}),
	)
	if err != nil {
		return nil, err
	}

	return &CreatePaymentResult{
		PaymentID:   p.ID,
		OrderNumber: p.OrderNumber,
		Amount:      p.Amount.StringFixed(2),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}, nil
}

// newOrderNumber builds "ORD" + unix-milli + 8 uppercase random hex chars.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD%d%s", now.UnixMilli(), suffix)
}
