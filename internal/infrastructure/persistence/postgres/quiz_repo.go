// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/quiz"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuizRepository implements quiz.Repository for PostgreSQL.
// QuestionCount is derived from the questions table rather than stored, so it
// can never drift from the actual question set.
type QuizRepository struct {
	conn *Connection
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(conn *Connection) *QuizRepository {
	return &QuizRepository{conn: conn}
}

const quizColumns = `
	q.id, q.course_id, q.title, q.description,
	(SELECT COUNT(*) FROM questions WHERE quiz_id = q.id),
	q.difficulty, q.created_at, q.updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// Quiz Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *quiz.Quiz) error {
	query := `
		INSERT INTO quizzes (id, course_id, title, description, difficulty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		q.ID,
		q.CourseID,
		q.Title,
		q.Description,
		string(q.Difficulty),
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return course.ErrCourseNotFound
		}
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	return nil
}

// GetByID returns a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*quiz.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes q WHERE q.id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanQuiz(row)
}

// ListByCourse returns all quizzes of a course.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID string) ([]*quiz.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes q WHERE q.course_id = $1 ORDER BY q.created_at`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []*quiz.Quiz
	for rows.Next() {
		q, err := r.scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}

	return quizzes, rows.Err()
}

// Update persists changes to a quiz.
func (r *QuizRepository) Update(ctx context.Context, q *quiz.Quiz) error {
	query := `
		UPDATE quizzes SET
			title = $1,
			description = $2,
			difficulty = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		q.Title,
		q.Description,
		string(q.Difficulty),
		time.Now().UTC(),
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	if result.RowsAffected() == 0 {
		return quiz.ErrQuizNotFound
	}

	return nil
}

// Delete removes a quiz.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	if result.RowsAffected() == 0 {
		return quiz.ErrQuizNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Question Operations
// ─────────────────────────────────────────────────────────────────────────────

const questionColumns = `id, quiz_id, prompt, knowledge_point, difficulty, created_at`

// CreateQuestion persists a new question.
func (r *QuizRepository) CreateQuestion(ctx context.Context, q *quiz.Question) error {
	query := `
		INSERT INTO questions (id, quiz_id, prompt, knowledge_point, difficulty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		q.ID,
		q.QuizID,
		q.Prompt,
		q.KnowledgePoint,
		string(q.Difficulty),
		q.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return quiz.ErrQuizNotFound
		}
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// GetQuestionByID returns a question by ID.
func (r *QuizRepository) GetQuestionByID(ctx context.Context, id string) (*quiz.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanQuestion(row)
}

// ListQuestionsByQuiz returns all questions of a quiz.
func (r *QuizRepository) ListQuestionsByQuiz(ctx context.Context, quizID string) ([]*quiz.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE quiz_id = $1 ORDER BY created_at`

	rows, err := r.conn.Query(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*quiz.Question
	for rows.Next() {
		q, err := r.scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *QuizRepository) scanQuiz(row pgx.Row) (*quiz.Quiz, error) {
	var (
		q          quiz.Quiz
		difficulty string
	)

	err := row.Scan(
		&q.ID,
		&q.CourseID,
		&q.Title,
		&q.Description,
		&q.QuestionCount,
		&difficulty,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, quiz.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to scan quiz: %w", err)
	}

	q.Difficulty = course.Difficulty(difficulty)

	return &q, nil
}

func (r *QuizRepository) scanQuestion(row pgx.Row) (*quiz.Question, error) {
	var (
		q          quiz.Question
		difficulty string
	)

	err := row.Scan(
		&q.ID,
		&q.QuizID,
		&q.Prompt,
		&q.KnowledgePoint,
		&difficulty,
		&q.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, quiz.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to scan question: %w", err)
	}

	q.Difficulty = course.Difficulty(difficulty)

	return &q, nil
}
