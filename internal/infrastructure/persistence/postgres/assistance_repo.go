// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/assistance"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AssistanceRepository implements assistance.Repository for PostgreSQL.
type AssistanceRepository struct {
	conn *Connection
}

// NewAssistanceRepository creates a new AssistanceRepository.
func NewAssistanceRepository(conn *Connection) *AssistanceRepository {
	return &AssistanceRepository{conn: conn}
}

const assistanceColumns = `id, user_id, question, answer, answered, knowledge_point, created_at, updated_at`

// Create persists a new log entry.
func (r *AssistanceRepository) Create(ctx context.Context, l *assistance.Log) error {
	query := `
		INSERT INTO assistance_logs (id, user_id, question, answer, answered, knowledge_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.UserID,
		l.Question,
		l.Answer,
		l.Answered,
		l.KnowledgePoint,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assistance log: %w", err)
	}

	return nil
}

// GetByID returns a log entry by ID.
func (r *AssistanceRepository) GetByID(ctx context.Context, id string) (*assistance.Log, error) {
	query := `SELECT ` + assistanceColumns + ` FROM assistance_logs WHERE id = $1`

	return r.scanLog(r.conn.QueryRow(ctx, query, id))
}

// SaveAnswer persists the answer of an entry.
func (r *AssistanceRepository) SaveAnswer(ctx context.Context, l *assistance.Log) error {
	query := `
		UPDATE assistance_logs SET
			answer = $1,
			answered = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query,
		l.Answer,
		l.Answered,
		time.Now().UTC(),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save assistance answer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return assistance.ErrLogNotFound
	}

	return nil
}

// ListByUser returns the user's entries, newest first.
func (r *AssistanceRepository) ListByUser(ctx context.Context, userID string) ([]*assistance.Log, error) {
	query := `SELECT ` + assistanceColumns + ` FROM assistance_logs WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryLogs(ctx, query, userID)
}

// ListUnanswered returns all entries still waiting for an answer.
func (r *AssistanceRepository) ListUnanswered(ctx context.Context) ([]*assistance.Log, error) {
	query := `SELECT ` + assistanceColumns + ` FROM assistance_logs WHERE answered = FALSE ORDER BY created_at`

	return r.queryLogs(ctx, query)
}

// CountRecentByUser returns how many queries the user made at or after since.
func (r *AssistanceRepository) CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM assistance_logs WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent queries: %w", err)
	}

	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AssistanceRepository) queryLogs(ctx context.Context, query string, args ...interface{}) ([]*assistance.Log, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assistance logs: %w", err)
	}
	defer rows.Close()

	var logs []*assistance.Log
	for rows.Next() {
		l, err := r.scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

func (r *AssistanceRepository) scanLog(row pgx.Row) (*assistance.Log, error) {
	var l assistance.Log

	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Question,
		&l.Answer,
		&l.Answered,
		&l.KnowledgePoint,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, assistance.ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to scan assistance log: %w", err)
	}

	return &l, nil
}
