package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/promotion"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK COMMISSIONS PAID COMMAND
// Settles every unpaid commission of a promoter in one batch. Idempotent: a
// second call with nothing unpaid returns an empty result and is not an
// error.
// ══════════════════════════════════════════════════════════════════════════════

// MarkCommissionsPaidCommand identifies the promoter being settled.
type MarkCommissionsPaidCommand struct {
	PromoterID string
}

// Validate validates the command.
func (c MarkCommissionsPaidCommand) Validate() error {
	if c.PromoterID == "" {
		return errors.New("mark_commissions_paid: promoter_id is required")
	}
	return nil
}

// PaidCommission is one settled ledger entry.
type PaidCommission struct {
	PromotionID      string
	InvitedUserID    string
	CommissionAmount string
	PaidAt           time.Time
}

// MarkCommissionsPaidResult lists the entries settled by this call.
type MarkCommissionsPaidResult struct {
	PromoterID string
	Paid       []PaidCommission
}

// MarkCommissionsPaidHandler handles the MarkCommissionsPaidCommand.
type MarkCommissionsPaidHandler struct {
	userRepo      user.Repository
	promotionRepo promotion.Repository
	now           func() time.Time
}

// NewMarkCommissionsPaidHandler creates a new MarkCommissionsPaidHandler.
func NewMarkCommissionsPaidHandler(
	userRepo user.Repository,
	promotionRepo promotion.Repository,
) *MarkCommissionsPaidHandler {
	return &MarkCommissionsPaidHandler{
		userRepo:      userRepo,
		promotionRepo: promotionRepo,
		now:           timeutil.Now,
	}
}

// Handle executes the mark commissions paid command.
func (h *MarkCommissionsPaidHandler) Handle(ctx context.Context, cmd MarkCommissionsPaidCommand) (*MarkCommissionsPaidResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.userRepo.GetByID(ctx, cmd.PromoterID); err != nil {
		return nil, err
	}

	updated, err := h.promotionRepo.MarkAllPaid(ctx, cmd.PromoterID, h.now())
	if err != nil {
		return nil, err
	}

	paid := make([]PaidCommission, len(updated))
	for i, p := range updated {
		paid[i] = PaidCommission{
			PromotionID:      p.ID,
			InvitedUserID:    p.InvitedUserID,
			CommissionAmount: p.CommissionAmount.StringFixed(2),
			PaidAt:           *p.PaidAt,
		}
	}

	return &MarkCommissionsPaidResult{
		PromoterID: cmd.PromoterID,
		Paid:       paid,
	}, nil
}
