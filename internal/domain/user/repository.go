package user

import "context"

// Repository defines storage operations for users.
type Repository interface {
	// GetByID returns a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByPhone returns a user by phone number.
	// Returns ErrUserNotFound if the user does not exist.
	GetByPhone(ctx context.Context, phone string) (*User, error)

	// Create persists a new user.
	Create(ctx context.Context, u *User) error

	// Update persists changes to a user.
	Update(ctx context.Context, u *User) error

	// ListByReferrer returns the users invited by the given referrer.
	ListByReferrer(ctx context.Context, referrerID string) ([]*User, error)
}
