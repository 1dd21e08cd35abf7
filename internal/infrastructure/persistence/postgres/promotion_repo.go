// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/promotion"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMOTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PromotionRepository implements promotion.Repository for PostgreSQL.
type PromotionRepository struct {
	conn *Connection
}

// NewPromotionRepository creates a new PromotionRepository.
func NewPromotionRepository(conn *Connection) *PromotionRepository {
	return &PromotionRepository{conn: conn}
}

const promotionColumns = `id, promoter_id, invited_user_id, commission_amount::text, paid, paid_at, created_at, updated_at`

// Create persists a new ledger entry.
func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	query := `
		INSERT INTO promotions (id, promoter_id, invited_user_id, commission_amount, paid, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.PromoterID,
		p.InvitedUserID,
		p.CommissionAmount.String(),
		p.Paid,
		p.PaidAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

// GetByID returns a ledger entry by ID.
func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*promotion.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	return r.scanPromotion(r.conn.QueryRow(ctx, query, id))
}

// ListByPromoter returns all of a promoter's entries, newest first.
func (r *PromotionRepository) ListByPromoter(ctx context.Context, promoterID string) ([]*promotion.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE promoter_id = $1 ORDER BY created_at DESC`

	return r.queryPromotions(ctx, query, promoterID)
}

// ListUnpaid returns the promoter's unpaid entries.
func (r *PromotionRepository) ListUnpaid(ctx context.Context, promoterID string) ([]*promotion.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE promoter_id = $1 AND paid = FALSE
		ORDER BY created_at
	`

	return r.queryPromotions(ctx, query, promoterID)
}

// SumUnpaid returns the total unpaid commission for a promoter.
func (r *PromotionRepository) SumUnpaid(ctx context.Context, promoterID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(commission_amount), 0)::text
		FROM promotions
		WHERE promoter_id = $1 AND paid = FALSE
	`

	var raw string
	if err := r.conn.QueryRow(ctx, query, promoterID).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum unpaid commission: %w", err)
	}

	sum, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse commission sum: %w", err)
	}

	return sum, nil
}

// CountByPromoter returns the promoter's total entry count.
func (r *PromotionRepository) CountByPromoter(ctx context.Context, promoterID string) (int, error) {
	query := `SELECT COUNT(*) FROM promotions WHERE promoter_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, promoterID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count promotions: %w", err)
	}

	return count, nil
}

// MarkAllPaid settles every currently-unpaid entry of the promoter in one
// statement and returns the updated rows. Idempotent.
func (r *PromotionRepository) MarkAllPaid(ctx context.Context, promoterID string, now time.Time) ([]*promotion.Promotion, error) {
	query := `
		UPDATE promotions SET
			paid = TRUE,
			paid_at = $2,
			updated_at = $2
		WHERE promoter_id = $1 AND paid = FALSE
		RETURNING ` + promotionColumns + `
	`

	return r.queryPromotions(ctx, query, promoterID, now)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *PromotionRepository) queryPromotions(ctx context.Context, query string, args ...interface{}) ([]*promotion.Promotion, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	var promotions []*promotion.Promotion
	for rows.Next() {
		p, err := r.scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}

	return promotions, rows.Err()
}

func (r *PromotionRepository) scanPromotion(row pgx.Row) (*promotion.Promotion, error) {
	var (
		p      promotion.Promotion
		amount string
	)

	err := row.Scan(
		&p.ID,
		&p.PromoterID,
		&p.InvitedUserID,
		&amount,
		&p.Paid,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, promotion.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to scan promotion: %w", err)
	}

	p.CommissionAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commission amount: %w", err)
	}

	return &p, nil
}
