package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/promotion"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMMISSION SUMMARY QUERY
// Read model over a promoter's referral ledger: unpaid total, entry count,
// and the open entries themselves.
// ══════════════════════════════════════════════════════════════════════════════

// CommissionEntry is one ledger entry as exposed to the boundary.
type CommissionEntry struct {
	PromotionID      string
	InvitedUserID    string
	CommissionAmount string
	Paid             bool
	PaidAt           *time.Time
	CreatedAt        time.Time
}

// GetCommissionSummaryQuery asks for one promoter's ledger summary.
type GetCommissionSummaryQuery struct {
	PromoterID string
}

// Validate validates the query.
func (q GetCommissionSummaryQuery) Validate() error {
	if q.PromoterID == "" {
		return errors.New("commission_summary: promoter_id is required")
	}
	return nil
}

// GetCommissionSummaryResult is the ledger read model.
type GetCommissionSummaryResult struct {
	PromoterID  string
	UnpaidTotal string
	EntryCount  int
	Unpaid      []CommissionEntry
}

// GetCommissionSummaryHandler handles the GetCommissionSummaryQuery.
type GetCommissionSummaryHandler struct {
	promotionRepo promotion.Repository
}

// NewGetCommissionSummaryHandler creates a new GetCommissionSummaryHandler.
func NewGetCommissionSummaryHandler(promotionRepo promotion.Repository) *GetCommissionSummaryHandler {
	return &GetCommissionSummaryHandler{promotionRepo: promotionRepo}
}

// Handle executes the commission summary query.
func (h *GetCommissionSummaryHandler) Handle(ctx context.Context, q GetCommissionSummaryQuery) (*GetCommissionSummaryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	total, err := h.promotionRepo.SumUnpaid(ctx, q.PromoterID)
	if err != nil {
		return nil, err
	}
	count, err := h.promotionRepo.CountByPromoter(ctx, q.PromoterID)
	if err != nil {
		return nil, err
	}
	unpaid, err := h.promotionRepo.ListUnpaid(ctx, q.PromoterID)
	if err != nil {
		return nil, err
	}

	entries := make([]CommissionEntry, len(unpaid))
	for i, p := range unpaid {
		entries[i] = CommissionEntry{
			PromotionID:      p.ID,
			InvitedUserID:    p.InvitedUserID,
			CommissionAmount: p.CommissionAmount.StringFixed(2),
			Paid:             p.Paid,
			PaidAt:           p.PaidAt,
			CreatedAt:        p.CreatedAt,
		}
	}

	return &GetCommissionSummaryResult{
		PromoterID:  q.PromoterID,
		UnpaidTotal: total.StringFixed(2),
		EntryCount:  count,
		Unpaid:      entries,
	}, nil
}
