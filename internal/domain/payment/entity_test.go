package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusRefunded, false},
		{StatusPending, StatusPending, false},
		{StatusPaid, StatusRefunded, true},
		{StatusPaid, StatusPaid, false},
		{StatusPaid, StatusFailed, false},
		{StatusPaid, StatusPending, false},
		{StatusFailed, StatusPaid, false},
		{StatusFailed, StatusPending, false},
		{StatusRefunded, StatusPaid, false},
		{StatusRefunded, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
}

func TestNewPayment(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pkg := &SubscriptionPackage{
		ID:           "pkg1",
		Name:         "Monthly",
		Price:        decimal.RequireFromString("99.00"),
		DurationDays: 30,
		Active:       true,
	}

	p := NewPayment("pay1", "user1", "PAY20260301ABCDEF", pkg, MethodAlipay, now)

	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.Amount.Equal(pkg.Price))
	require.NotNil(t, p.PackageID)
	assert.Equal(t, "pkg1", *p.PackageID)
	assert.Nil(t, p.PaidAt)
	assert.Nil(t, p.ValidUntil)
}

func TestPayment_ApplyStatus_Paid(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	paidAt := created.Add(2 * time.Minute)
	pkg := &SubscriptionPackage{
		ID:           "pkg1",
		Price:        decimal.RequireFromString("99.00"),
		DurationDays: 30,
	}
	p := NewPayment("pay1", "user1", "PAY1", pkg, MethodWeChat, created)

	err := p.ApplyStatus(StatusPaid, "txn-42", pkg, paidAt)
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, p.Status)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "txn-42", *p.TransactionID)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, paidAt, *p.PaidAt)
	require.NotNil(t, p.ValidUntil)
	assert.Equal(t, paidAt.AddDate(0, 0, 30), *p.ValidUntil)
}

func TestPayment_ApplyStatus_Failed(t *testing.T) {
	now := time.Now().UTC()
	pkg := &SubscriptionPackage{ID: "pkg1", Price: decimal.RequireFromString("10.00"), DurationDays: 7}
	p := NewPayment("pay1", "user1", "PAY1", pkg, MethodAlipay, now)

	err := p.ApplyStatus(StatusFailed, "", nil, now)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Nil(t, p.PaidAt)
	assert.Nil(t, p.ValidUntil)
	assert.Nil(t, p.TransactionID)
}

func TestPayment_ApplyStatus_RejectsForbiddenTransition(t *testing.T) {
	now := time.Now().UTC()
	pkg := &SubscriptionPackage{ID: "pkg1", Price: decimal.RequireFromString("10.00"), DurationDays: 7}

	p := NewPayment("pay1", "user1", "PAY1", pkg, MethodAlipay, now)
	require.NoError(t, p.ApplyStatus(StatusFailed, "", nil, now))

	err := p.ApplyStatus(StatusPaid, "txn", pkg, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Nil(t, p.PaidAt)
}

func TestPayment_ApplyStatus_PaidWithoutPackage(t *testing.T) {
	now := time.Now().UTC()
	pkg := &SubscriptionPackage{ID: "pkg1", Price: decimal.RequireFromString("10.00"), DurationDays: 7}
	p := NewPayment("pay1", "user1", "PAY1", pkg, MethodAlipay, now)
	p.PackageID = nil

	err := p.ApplyStatus(StatusPaid, "txn", nil, now)
	require.NoError(t, err)
	require.NotNil(t, p.PaidAt)
	assert.Nil(t, p.ValidUntil)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("alipay")
	require.NoError(t, err)
	assert.Equal(t, MethodAlipay, m)

	_, err = ParseMethod("paypal")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("refunded")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, s)

	_, err = ParseStatus("cancelled")
	assert.Error(t, err)
}
