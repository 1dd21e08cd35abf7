// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/quiz"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttemptRepository implements quiz.AttemptRepository for PostgreSQL.
//
// Completion races are settled by the database: the completing update only
// applies where completed_at is still NULL, so exactly one of two concurrent
// submissions wins and the loser sees ErrAttemptCompleted.
type AttemptRepository struct {
	conn *Connection
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(conn *Connection) *AttemptRepository {
	return &AttemptRepository{conn: conn}
}

const attemptColumns = `id, user_id, quiz_id, started_at, completed_at, score, correct_answers, total_questions, time_spent_seconds, created_at, updated_at`

// Create persists a newly started attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *quiz.Attempt) error {
	query := `
		INSERT INTO quiz_attempts (id, user_id, quiz_id, started_at, total_questions, correct_answers, time_spent_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.QuizID,
		a.StartedAt,
		a.TotalQuestions,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return quiz.ErrQuizNotFound
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// GetByID returns an attempt with its answers.
func (r *AttemptRepository) GetByID(ctx context.Context, id string) (*quiz.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts WHERE id = $1`

	a, err := r.scanAttempt(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	answers, err := r.listAnswers(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Answers = answers

	return a, nil
}

// Complete persists a completed attempt and its answer set atomically. The
// update is conditional on the stored row not having an end time yet.
func (r *AttemptRepository) Complete(ctx context.Context, a *quiz.Attempt) error {
	return r.conn.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE quiz_attempts SET
				completed_at = $1,
				score = $2,
				correct_answers = $3,
				time_spent_seconds = $4,
				updated_at = NOW()
			WHERE id = $5 AND completed_at IS NULL
		`

		result, err := r.conn.Exec(ctx, query,
			a.CompletedAt,
			a.Score,
			a.CorrectAnswers,
			a.TimeSpentSeconds,
			a.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete attempt: %w", err)
		}

		if result.RowsAffected() == 0 {
			var exists bool
			check := `SELECT EXISTS (SELECT 1 FROM quiz_attempts WHERE id = $1)`
			if err := r.conn.QueryRow(ctx, check, a.ID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check attempt: %w", err)
			}
			if !exists {
				return quiz.ErrAttemptNotFound
			}
			return quiz.ErrAttemptCompleted
		}

		insert := `
			INSERT INTO attempt_answers (attempt_id, question_id, value, correct, time_spent_seconds)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, ans := range a.Answers {
			if _, err := r.conn.Exec(ctx, insert,
				a.ID,
				ans.QuestionID,
				ans.Submitted,
				ans.Correct,
				ans.TimeSpentSeconds,
			); err != nil {
				return fmt.Errorf("failed to save answer: %w", err)
			}
		}

		return nil
	})
}

// ListByUser returns the user's most recent attempts, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*quiz.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM quiz_attempts
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	return r.queryAttempts(ctx, query, userID, limit)
}

// ListByUserAndQuiz returns the user's attempts for one quiz, newest first.
func (r *AttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID string) ([]*quiz.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM quiz_attempts
		WHERE user_id = $1 AND quiz_id = $2
		ORDER BY started_at DESC
	`

	return r.queryAttempts(ctx, query, userID, quizID)
}

// CountLowScores returns the number of the user's completed attempts with a
// score below the given threshold.
func (r *AttemptRepository) CountLowScores(ctx context.Context, userID string, below float64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM quiz_attempts
		WHERE user_id = $1 AND completed_at IS NOT NULL AND score < $2
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID, below).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count low scores: %w", err)
	}

	return count, nil
}

// AverageScore returns the average completed-attempt score across all quizzes
// whose course matches the category and level.
func (r *AttemptRepository) AverageScore(ctx context.Context, category course.Category, level course.Level) (float64, error) {
	query := `
		SELECT COALESCE(AVG(a.score), 0)
		FROM quiz_attempts a
		JOIN quizzes q ON a.quiz_id = q.id
		JOIN courses c ON q.course_id = c.id
		WHERE a.completed_at IS NOT NULL
		  AND c.category = $1
		  AND c.level = $2
	`

	var avg float64
	if err := r.conn.QueryRow(ctx, query, string(category), string(level)).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average scores: %w", err)
	}

	return avg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AttemptRepository) queryAttempts(ctx context.Context, query string, args ...interface{}) ([]*quiz.Attempt, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*quiz.Attempt
	for rows.Next() {
		a, err := r.scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

func (r *AttemptRepository) scanAttempt(row pgx.Row) (*quiz.Attempt, error) {
	var a quiz.Attempt

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.QuizID,
		&a.StartedAt,
		&a.CompletedAt,
		&a.Score,
		&a.CorrectAnswers,
		&a.TotalQuestions,
		&a.TimeSpentSeconds,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, quiz.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	return &a, nil
}

func (r *AttemptRepository) listAnswers(ctx context.Context, attemptID string) ([]quiz.Answer, error) {
	query := `
		SELECT id::text, attempt_id, question_id, value, correct, time_spent_seconds
		FROM attempt_answers
		WHERE attempt_id = $1
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []quiz.Answer
	for rows.Next() {
		var ans quiz.Answer
		if err := rows.Scan(
			&ans.ID,
			&ans.AttemptID,
			&ans.QuestionID,
			&ans.Submitted,
			&ans.Correct,
			&ans.TimeSpentSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, ans)
	}

	return answers, rows.Err()
}
