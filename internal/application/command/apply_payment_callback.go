package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/promotion"
	"github.com/edupath/edupath-core/internal/domain/shared"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/logger"
	"github.com/edupath/edupath-core/pkg/timeutil"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY PAYMENT CALLBACK COMMAND
// Applies a gateway status callback to a payment. The whole operation runs in
// one transaction, and the status write is conditional on the previous
// status, so a duplicate callback for the same order number settles exactly
// once.
//
// This command is also the sole path that creates referral commissions: a
// PENDING→PAID transition on a referred user's first paid payment credits
// the referrer 10% of the amount.
//
// Callbacks are untrusted external events. The boundary verifies the HMAC
// signature before invoking this command; by the time Handle runs, the event
// is authenticated.
// ══════════════════════════════════════════════════════════════════════════════

// ApplyPaymentCallbackCommand contains a verified gateway callback.
type ApplyPaymentCallbackCommand struct {
	// OrderNumber correlates the callback with a payment.
	OrderNumber string

	// Status is the new status reported by the gateway.
	Status payment.Status

	// TransactionID is the gateway transaction reference, when present.
	TransactionID string
}

// Validate validates the command.
func (c ApplyPaymentCallbackCommand) Validate() error {
	if c.OrderNumber == "" {
		return errors.New("apply_payment_callback: order_number is required")
	}
	if !c.Status.IsValid() {
		return shared.NewDomainError("payment", "ApplyCallback", shared.ErrInvalidEnum, "unknown payment status: "+string(c.Status))
	}
	return nil
}

// ApplyPaymentCallbackResult is the updated payment snapshot.
type ApplyPaymentCallbackResult struct {
	PaymentID         string
	OrderNumber       string
	Status            payment.Status
	PaidAt            *time.Time
	ValidUntil        *time.Time
	CommissionCreated bool
}

// ApplyPaymentCallbackHandler handles the ApplyPaymentCallbackCommand.
type ApplyPaymentCallbackHandler struct {
	paymentRepo   payment.Repository
	packageRepo   payment.PackageRepository
	userRepo      user.Repository
	promotionRepo promotion.Repository
	tx            shared.TxManager
	log           *logger.Logger
	now           func() time.Time
}

// NewApplyPaymentCallbackHandler creates a new ApplyPaymentCallbackHandler.
func NewApplyPaymentCallbackHandler(
	paymentRepo payment.Repository,
	packageRepo payment.PackageRepository,
	userRepo user.Repository,
	promotionRepo promotion.Repository,
	tx shared.TxManager,
	log *logger.Logger,
) *ApplyPaymentCallbackHandler {
	return &ApplyPaymentCallbackHandler{
		paymentRepo:   paymentRepo,
		packageRepo:   packageRepo,
		userRepo:      userRepo,
		promotionRepo: promotionRepo,
		tx:            tx,
		log:           log,
		now:           timeutil.Now,
	}
}

// Handle executes the apply payment callback command.
func (h *ApplyPaymentCallbackHandler) Handle(ctx context.Context, cmd ApplyPaymentCallbackCommand) (*ApplyPaymentCallbackResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result *ApplyPaymentCallbackResult
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := h.paymentRepo.GetByOrderNumber(ctx, cmd.OrderNumber)
		if err != nil {
			return err
		}
		prev := p.Status

		var pkg *payment.SubscriptionPackage
		if cmd.Status == payment.StatusPaid && p.PackageID != nil {
			pkg, err = h.packageRepo.GetByID(ctx, *p.PackageID)
			if err != nil {
				return err
			}
		}

		if err := p.ApplyStatus(cmd.Status, cmd.TransactionID, pkg, h.now()); err != nil {
			return err
		}
		if err := h.paymentRepo.UpdateStatus(ctx, p, prev); err != nil {
			return err
		}

		commissionCreated := false
		if prev == payment.StatusPending && p.Status == payment.StatusPaid {
			commissionCreated, err = h.creditReferrer(ctx, p)
			if err != nil {
				return err
			}
		}

		result = &ApplyPaymentCallbackResult{
			PaymentID:         p.ID,
			OrderNumber:       p.OrderNumber,
			Status:            p.Status,
			PaidAt:            p.PaidAt,
			ValidUntil:        p.ValidUntil,
			CommissionCreated: commissionCreated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("payment callback applied",
		logger.OrderNumber(result.OrderNumber),
		logger.String("status", string(result.Status)),
		logger.Bool("commission_created", result.CommissionCreated),
	)
	return result, nil
}

// creditReferrer creates the commission ledger entry when the paying user
// was referred and this is their first paid payment.
func (h *ApplyPaymentCallbackHandler) creditReferrer(ctx context.Context, p *payment.Payment) (bool, error) {
	u, err := h.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return false, err
	}
	if !u.HasReferrer() {
		return false, nil
	}

	paidBefore, err := h.paymentRepo.HasPaidOther(ctx, p.UserID, p.ID)
	if err != nil {
		return false, err
	}
	if paidBefore {
		return false, nil
	}

	entry := promotion.NewCommission(uuid.NewString(), *u.ReferrerID, u.ID, p.Amount, h.now())
	if err := h.promotionRepo.Create(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}
