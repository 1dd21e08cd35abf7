// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/progress"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository for PostgreSQL.
//
// Upsert is a single INSERT ... ON CONFLICT statement with the repeat-count
// increment computed inside the update, so concurrent reports for the same
// (user, section) pair serialize on the row and no increment is lost.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const progressColumns = `id, user_id, section_id, completed, skipped, repeat_count, created_at, updated_at`

// Upsert creates or overwrites the row for (userID, sectionID).
func (r *ProgressRepository) Upsert(ctx context.Context, userID, sectionID string, completed, skipped bool) (*progress.SectionProgress, error) {
	query := `
		INSERT INTO section_progress (user_id, section_id, completed, skipped, repeat_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		ON CONFLICT (user_id, section_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			skipped = EXCLUDED.skipped,
			repeat_count = section_progress.repeat_count +
				CASE WHEN NOT EXCLUDED.completed AND NOT EXCLUDED.skipped THEN 1 ELSE 0 END,
			updated_at = NOW()
		RETURNING ` + progressColumns + `
	`

	row := r.conn.QueryRow(ctx, query, userID, sectionID, completed, skipped)
	p, err := r.scanProgress(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	return p, nil
}

// GetByUserAndSection returns the row for (userID, sectionID).
func (r *ProgressRepository) GetByUserAndSection(ctx context.Context, userID, sectionID string) (*progress.SectionProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM section_progress WHERE user_id = $1 AND section_id = $2`

	p, err := r.scanProgress(r.conn.QueryRow(ctx, query, userID, sectionID))
	if err != nil {
		if IsNoRows(err) {
			return nil, progress.ErrProgressNotFound
		}
		return nil, err
	}

	return p, nil
}

// ListByUser returns all progress rows for the user.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*progress.SectionProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM section_progress WHERE user_id = $1 ORDER BY updated_at DESC`

	return r.queryProgress(ctx, query, userID)
}

// FindStagnant returns the user's rows that are not completed and were last
// updated before the cutoff.
func (r *ProgressRepository) FindStagnant(ctx context.Context, userID string, cutoff time.Time) ([]*progress.SectionProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM section_progress
		WHERE user_id = $1 AND completed = FALSE AND updated_at < $2
		ORDER BY updated_at
	`

	return r.queryProgress(ctx, query, userID, cutoff)
}

// CountCompleted returns the number of sections the user completed.
func (r *ProgressRepository) CountCompleted(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM section_progress WHERE user_id = $1 AND completed = TRUE`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed sections: %w", err)
	}

	return count, nil
}

// DeleteBySection removes every progress row of a section.
func (r *ProgressRepository) DeleteBySection(ctx context.Context, sectionID string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM section_progress WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("failed to delete section progress: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *ProgressRepository) queryProgress(ctx context.Context, query string, args ...interface{}) ([]*progress.SectionProgress, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var result []*progress.SectionProgress
	for rows.Next() {
		p, err := r.scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

func (r *ProgressRepository) scanProgress(row pgx.Row) (*progress.SectionProgress, error) {
	var p progress.SectionProgress

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.SectionID,
		&p.Completed,
		&p.Skipped,
		&p.RepeatCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
