package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPassword_RoundTrip(t *testing.T) {
	u := &User{ID: "user1"}

	require.NoError(t, u.SetPassword("s3cret-passphrase"))
	require.NotEmpty(t, u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "s3cret-passphrase")

	assert.True(t, u.CheckPassword("s3cret-passphrase"))
	assert.False(t, u.CheckPassword("wrong-passphrase"))
}

func TestSetPassword_HashesAreSalted(t *testing.T) {
	a := &User{ID: "user1"}
	b := &User{ID: "user2"}

	require.NoError(t, a.SetPassword("same-password"))
	require.NoError(t, b.SetPassword("same-password"))

	// Same plaintext, different salts.
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
	assert.True(t, a.CheckPassword("same-password"))
	assert.True(t, b.CheckPassword("same-password"))
}

func TestSetPassword_BcryptInputLimit(t *testing.T) {
	u := &User{ID: "user1"}

	// bcrypt accepts at most 72 bytes of input.
	atLimit := strings.Repeat("a", 72)
	require.NoError(t, u.SetPassword(atLimit))
	assert.True(t, u.CheckPassword(atLimit))

	overLimit := strings.Repeat("a", 73)
	err := u.SetPassword(overLimit)
	require.Error(t, err)

	// The stored hash survives the rejected update.
	assert.True(t, u.CheckPassword(atLimit))
}

func TestCheckPassword_NoStoredHash(t *testing.T) {
	u := &User{ID: "user1"}
	assert.False(t, u.CheckPassword("anything"))
}

func TestHasReferrer(t *testing.T) {
	referrer := "referrer1"
	empty := ""

	assert.True(t, (&User{ReferrerID: &referrer}).HasReferrer())
	assert.False(t, (&User{ReferrerID: &empty}).HasReferrer())
	assert.False(t, (&User{}).HasReferrer())
}
