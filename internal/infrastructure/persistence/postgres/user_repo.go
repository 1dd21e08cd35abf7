// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"
	"github.com/edupath/edupath-core/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, phone, display_name, COALESCE(email, ''), password_hash, referrer_id, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, phone, display_name, email, password_hash, referrer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Phone,
		u.DisplayName,
		u.Email,
		u.PasswordHash,
		u.ReferrerID,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("user", "Create", shared.ErrAlreadyExists, "phone already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanUser(row)
}

// GetByPhone returns a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	row := r.conn.QueryRow(ctx, query, phone)
	return r.scanUser(row)
}

// Update persists changes to a user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			phone = $1,
			display_name = $2,
			email = $3,
			password_hash = $4,
			referrer_id = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		u.Phone,
		u.DisplayName,
		u.Email,
		u.PasswordHash,
		u.ReferrerID,
		time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ListByReferrer returns the users invited by the given referrer.
func (r *UserRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referrer_id = $1 ORDER BY created_at`

	rows, err := r.conn.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by referrer: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.DisplayName,
		&u.Email,
		&u.PasswordHash,
		&u.ReferrerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &u, nil
}
