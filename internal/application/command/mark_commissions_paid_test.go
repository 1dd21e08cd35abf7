package command

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/promotion"
	"github.com/edupath/edupath-core/internal/domain/user"
)

func TestMarkCommissionsPaid(t *testing.T) {
	created := time.Now().UTC().Add(-24 * time.Hour)
	promotions := &fakePromotionRepo{entries: []*promotion.Promotion{
		promotion.NewCommission("promo1", "referrer1", "invited1", decimal.RequireFromString("100.00"), created),
		promotion.NewCommission("promo2", "referrer1", "invited2", decimal.RequireFromString("59.90"), created),
		promotion.NewCommission("promo3", "other", "invited3", decimal.RequireFromString("10.00"), created),
	}}

	h := NewMarkCommissionsPaidHandler(newFakeUserRepo(&user.User{ID: "referrer1"}), promotions)
	settledAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return settledAt }

	result, err := h.Handle(context.Background(), MarkCommissionsPaidCommand{PromoterID: "referrer1"})
	require.NoError(t, err)

	require.Len(t, result.Paid, 2)
	amounts := map[string]string{}
	for _, p := range result.Paid {
		amounts[p.PromotionID] = p.CommissionAmount
		assert.Equal(t, settledAt, p.PaidAt)
	}
	assert.Equal(t, "10.00", amounts["promo1"])
	assert.Equal(t, "5.99", amounts["promo2"])

	// The other promoter's entry is untouched.
	other, err := promotions.ListUnpaid(context.Background(), "other")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestMarkCommissionsPaid_SecondCallIsEmpty(t *testing.T) {
	promotions := &fakePromotionRepo{entries: []*promotion.Promotion{
		promotion.NewCommission("promo1", "referrer1", "invited1", decimal.RequireFromString("100.00"), time.Now().UTC()),
	}}
	h := NewMarkCommissionsPaidHandler(newFakeUserRepo(&user.User{ID: "referrer1"}), promotions)
	ctx := context.Background()

	first, err := h.Handle(ctx, MarkCommissionsPaidCommand{PromoterID: "referrer1"})
	require.NoError(t, err)
	assert.Len(t, first.Paid, 1)

	second, err := h.Handle(ctx, MarkCommissionsPaidCommand{PromoterID: "referrer1"})
	require.NoError(t, err)
	assert.Empty(t, second.Paid)
}

func TestMarkCommissionsPaid_UnknownPromoter(t *testing.T) {
	h := NewMarkCommissionsPaidHandler(newFakeUserRepo(), &fakePromotionRepo{})

	_, err := h.Handle(context.Background(), MarkCommissionsPaidCommand{PromoterID: "ghost"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
