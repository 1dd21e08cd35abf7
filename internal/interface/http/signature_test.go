package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackSignature_RoundTrip(t *testing.T) {
	secret := "shhh"
	sig := CallbackSignature(secret, "ORD-1", "paid", "txn-1")

	assert.NotEmpty(t, sig)
	assert.True(t, VerifyCallbackSignature(secret, "ORD-1", "paid", "txn-1", sig))
}

func TestCallbackSignature_Deterministic(t *testing.T) {
	a := CallbackSignature("secret", "ORD-1", "paid", "txn-1")
	b := CallbackSignature("secret", "ORD-1", "paid", "txn-1")
	assert.Equal(t, a, b)
}

func TestVerifyCallbackSignature_RejectsTampering(t *testing.T) {
	secret := "shhh"
	sig := CallbackSignature(secret, "ORD-1", "paid", "txn-1")

	// Any field change invalidates the signature.
	assert.False(t, VerifyCallbackSignature(secret, "ORD-2", "paid", "txn-1", sig))
	assert.False(t, VerifyCallbackSignature(secret, "ORD-1", "failed", "txn-1", sig))
	assert.False(t, VerifyCallbackSignature(secret, "ORD-1", "paid", "txn-2", sig))

	// Wrong secret, wrong signature.
	assert.False(t, VerifyCallbackSignature("other", "ORD-1", "paid", "txn-1", sig))
	assert.False(t, VerifyCallbackSignature(secret, "ORD-1", "paid", "txn-1", "deadbeef"))
}

func TestVerifyCallbackSignature_EmptySecretRejectsEverything(t *testing.T) {
	sig := CallbackSignature("secret", "ORD-1", "paid", "txn-1")
	assert.False(t, VerifyCallbackSignature("", "ORD-1", "paid", "txn-1", sig))
	assert.False(t, VerifyCallbackSignature("", "ORD-1", "paid", "txn-1", ""))
}
