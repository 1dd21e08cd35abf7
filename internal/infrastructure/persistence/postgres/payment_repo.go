// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/payment"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PaymentRepository implements payment.Repository for PostgreSQL.
//
// Amounts travel as text both ways: parameters are exact decimal strings the
// server parses into NUMERIC, and reads cast back to text for
// decimal.NewFromString, so no float conversion ever touches money.
//
// Status changes are conditional updates on the previous status, so
// concurrent callbacks for the same order settle to exactly one winner.
type PaymentRepository struct {
	conn *Connection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(conn *Connection) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

const paymentColumns = `id, user_id, order_number, amount::text, method, status, transaction_id, paid_at, package_id, valid_until, created_at, updated_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, order_number, amount, method, status, transaction_id, paid_at, package_id, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.OrderNumber,
		p.Amount.String(),
		string(p.Method),
		string(p.Status),
		p.TransactionID,
		p.PaidAt,
		p.PackageID,
		p.ValidUntil,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return payment.ErrOrderNumberTaken
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID returns a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	return r.scanPayment(r.conn.QueryRow(ctx, query, id))
}

// GetByOrderNumber returns a payment by its order number.
func (r *PaymentRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_number = $1`

	return r.scanPayment(r.conn.QueryRow(ctx, query, orderNumber))
}

// UpdateStatus persists a status change conditionally: the update applies
// only where the stored status still equals prev.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment, prev payment.Status) error {
	query := `
		UPDATE payments SET
			status = $1,
			transaction_id = $2,
			paid_at = $3,
			valid_until = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7
	`

	result, err := r.conn.Exec(ctx, query,
		string(p.Status),
		p.TransactionID,
		p.PaidAt,
		p.ValidUntil,
		time.Now().UTC(),
		p.ID,
		string(prev),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrTransitionLost
	}

	return nil
}

// ListByUser returns the user's payments, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryPayments(ctx, query, userID)
}

// ListByStatus returns all payments in the given status.
func (r *PaymentRepository) ListByStatus(ctx context.Context, status payment.Status) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at DESC`

	return r.queryPayments(ctx, query, string(status))
}

// CountRecentByUser returns how many payments the user created at or after
// since.
func (r *PaymentRepository) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM payments WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent payments: %w", err)
	}

	return count, nil
}

// HasPaidOther reports whether the user has any PAID payment other than
// excludeID.
func (r *PaymentRepository) HasPaidOther(ctx context.Context, userID, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE user_id = $1 AND status = $2 AND id != $3
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, userID, string(payment.StatusPaid), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check paid payments: %w", err)
	}

	return exists, nil
}

// SumPaidBetween returns the total amount of PAID payments whose PaidAt falls
// in [from, to).
func (r *PaymentRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM payments
		WHERE status = $1 AND paid_at >= $2 AND paid_at < $3
	`

	var raw string
	if err := r.conn.QueryRow(ctx, query, string(payment.StatusPaid), from, to).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid payments: %w", err)
	}

	sum, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse payment sum: %w", err)
	}

	return sum, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*payment.Payment, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func (r *PaymentRepository) scanPayment(row pgx.Row) (*payment.Payment, error) {
	var (
		p      payment.Payment
		amount string
		method string
		status string
	)

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.OrderNumber,
		&amount,
		&method,
		&status,
		&p.TransactionID,
		&p.PaidAt,
		&p.PackageID,
		&p.ValidUntil,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment amount: %w", err)
	}
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)

	return &p, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PACKAGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PackageRepository implements payment.PackageRepository for PostgreSQL.
type PackageRepository struct {
	conn *Connection
}

// NewPackageRepository creates a new PackageRepository.
func NewPackageRepository(conn *Connection) *PackageRepository {
	return &PackageRepository{conn: conn}
}

const packageColumns = `id, name, price::text, duration_days, active, created_at, updated_at`

// GetByID returns a package by ID.
func (r *PackageRepository) GetByID(ctx context.Context, id string) (*payment.SubscriptionPackage, error) {
	query := `SELECT ` + packageColumns + ` FROM subscription_packages WHERE id = $1`

	return r.scanPackage(r.conn.QueryRow(ctx, query, id))
}

// ListActive returns all active packages.
func (r *PackageRepository) ListActive(ctx context.Context) ([]*payment.SubscriptionPackage, error) {
	query := `SELECT ` + packageColumns + ` FROM subscription_packages WHERE active = TRUE ORDER BY price`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*payment.SubscriptionPackage
	for rows.Next() {
		pkg, err := r.scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}

	return packages, rows.Err()
}

func (r *PackageRepository) scanPackage(row pgx.Row) (*payment.SubscriptionPackage, error) {
	var (
		pkg   payment.SubscriptionPackage
		price string
	)

	err := row.Scan(
		&pkg.ID,
		&pkg.Name,
		&price,
		&pkg.DurationDays,
		&pkg.Active,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, payment.ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to scan package: %w", err)
	}

	pkg.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse package price: %w", err)
	}

	return &pkg, nil
}
