// Package user contains the platform user model as the core sees it: an
// identity with an optional referrer link. Authentication and session
// handling live at the boundary; the core only consumes user IDs.
package user

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered platform user.
type User struct {
	ID           string
	Phone        string
	DisplayName  string
	Email        string
	PasswordHash string

	// ReferrerID links to the user who invited this one. Commissions on this
	// user's first paid payment are credited to the referrer.
	ReferrerID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return shared.WrapError("user", "SetPassword", shared.ErrInvalidInput, "failed to hash password", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// HasReferrer reports whether the user was invited by someone.
func (u *User) HasReferrer() bool {
	return u.ReferrerID != nil && *u.ReferrerID != ""
}

// Domain errors.
var (
	ErrUserNotFound = shared.NewDomainError("user", "Find", shared.ErrNotFound, "user not found")
)
