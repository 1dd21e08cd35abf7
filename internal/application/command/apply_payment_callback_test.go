package command

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/logger"
)

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

type callbackFixture struct {
	handler    *ApplyPaymentCallbackHandler
	payments   *fakePaymentRepo
	promotions *fakePromotionRepo
}

// newCallbackFixture wires the handler around a referred user with one
// pending payment of 199.99 for a 30-day package.
func newCallbackFixture(t *testing.T, u *user.User) callbackFixture {
	t.Helper()

	pkg := &payment.SubscriptionPackage{
		ID:           "pkg1",
		Price:        decimal.RequireFromString("199.99"),
		DurationDays: 30,
		Active:       true,
	}
	pending := payment.NewPayment("pay1", u.ID, "ORD-1", pkg, payment.MethodAlipay, time.Now().UTC())

	payments := newFakePaymentRepo(pending)
	promotions := &fakePromotionRepo{}
	h := NewApplyPaymentCallbackHandler(
		payments,
		newFakePackageRepo(pkg),
		newFakeUserRepo(u, &user.User{ID: "referrer1"}),
		promotions,
		nopTxManager{},
		discardLogger(),
	)

	return callbackFixture{handler: h, payments: payments, promotions: promotions}
}

func referredUser() *user.User {
	ref := "referrer1"
	return &user.User{ID: "user1", ReferrerID: &ref}
}

func TestApplyPaymentCallback_PendingToPaid(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fx.handler.now = func() time.Time { return paidAt }

	result, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.StatusPaid, result.Status)
	require.NotNil(t, result.PaidAt)
	assert.Equal(t, paidAt, *result.PaidAt)
	require.NotNil(t, result.ValidUntil)
	assert.Equal(t, paidAt.AddDate(0, 0, 30), *result.ValidUntil)

	stored, err := fx.payments.GetByOrderNumber(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, stored.Status)
}

func TestApplyPaymentCallback_CreditsReferrerOnFirstPaidPayment(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())

	result, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)
	assert.True(t, result.CommissionCreated)

	require.Len(t, fx.promotions.entries, 1)
	entry := fx.promotions.entries[0]
	assert.Equal(t, "referrer1", entry.PromoterID)
	assert.Equal(t, "user1", entry.InvitedUserID)
	assert.Equal(t, "20.00", entry.CommissionAmount.StringFixed(2)) // 10% of 199.99, rounded half-up
	assert.False(t, entry.Paid)
}

func TestApplyPaymentCallback_NoCommissionOnSecondPaidPayment(t *testing.T) {
	u := referredUser()
	fx := newCallbackFixture(t, u)

	// An earlier PAID payment already exists for this user.
	pkg := &payment.SubscriptionPackage{ID: "pkg1", Price: decimal.RequireFromString("50.00"), DurationDays: 30}
	earlier := payment.NewPayment("pay0", u.ID, "ORD-0", pkg, payment.MethodAlipay, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, earlier.ApplyStatus(payment.StatusPaid, "txn-0", pkg, time.Now().UTC()))
	require.NoError(t, fx.payments.Create(context.Background(), earlier))

	result, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)
	assert.False(t, result.CommissionCreated)
	assert.Empty(t, fx.promotions.entries)
}

func TestApplyPaymentCallback_NoCommissionWithoutReferrer(t *testing.T) {
	fx := newCallbackFixture(t, &user.User{ID: "user1"})

	result, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)
	assert.False(t, result.CommissionCreated)
	assert.Empty(t, fx.promotions.entries)
}

func TestApplyPaymentCallback_NoCommissionOnFailure(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())

	result, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber: "ORD-1",
		Status:      payment.StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, result.Status)
	assert.False(t, result.CommissionCreated)
	assert.Empty(t, fx.promotions.entries)
}

func TestApplyPaymentCallback_DuplicateCallbackRejected(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())
	ctx := context.Background()
	cmd := ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-1",
	}

	_, err := fx.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	// The replayed callback finds the payment already PAID and the state
	// machine rejects the transition; no second commission is created.
	_, err = fx.handler.Handle(ctx, cmd)
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
	assert.Len(t, fx.promotions.entries, 1)
}

func TestApplyPaymentCallback_TerminalStatusRejected(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())
	ctx := context.Background()

	_, err := fx.handler.Handle(ctx, ApplyPaymentCallbackCommand{
		OrderNumber: "ORD-1",
		Status:      payment.StatusFailed,
	})
	require.NoError(t, err)

	_, err = fx.handler.Handle(ctx, ApplyPaymentCallbackCommand{
		OrderNumber:   "ORD-1",
		Status:        payment.StatusPaid,
		TransactionID: "txn-late",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
}

func TestApplyPaymentCallback_UnknownOrder(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())

	_, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber: "ORD-ghost",
		Status:      payment.StatusPaid,
	})
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestApplyPaymentCallback_UnknownStatus(t *testing.T) {
	fx := newCallbackFixture(t, referredUser())

	_, err := fx.handler.Handle(context.Background(), ApplyPaymentCallbackCommand{
		OrderNumber: "ORD-1",
		Status:      payment.Status("cancelled"),
	})
	assert.Error(t, err)
}
