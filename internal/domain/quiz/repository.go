package quiz

import (
	"context"

	"github.com/edupath/edupath-core/internal/domain/course"
)

// Repository defines storage operations for quizzes and questions.
type Repository interface {
	// GetByID returns a quiz by ID.
	// Returns ErrQuizNotFound if the quiz does not exist.
	GetByID(ctx context.Context, id string) (*Quiz, error)

	// ListByCourse returns all quizzes of a course.
	ListByCourse(ctx context.Context, courseID string) ([]*Quiz, error)

	// Create persists a new quiz.
	Create(ctx context.Context, q *Quiz) error

	// Update persists changes to a quiz.
	Update(ctx context.Context, q *Quiz) error

	// Delete removes a quiz.
	Delete(ctx context.Context, id string) error

	// GetQuestionByID returns a question by ID.
	// Returns ErrQuestionNotFound if the question does not exist.
	GetQuestionByID(ctx context.Context, id string) (*Question, error)

	// ListQuestionsByQuiz returns all questions of a quiz.
	ListQuestionsByQuiz(ctx context.Context, quizID string) ([]*Question, error)

	// CreateQuestion persists a new question.
	CreateQuestion(ctx context.Context, q *Question) error
}

// AttemptRepository defines storage operations for attempts and their answers.
type AttemptRepository interface {
	// Create persists a newly started attempt.
	Create(ctx context.Context, a *Attempt) error

	// GetByID returns an attempt with its answers.
	// Returns ErrAttemptNotFound if the attempt does not exist.
	GetByID(ctx context.Context, id string) (*Attempt, error)

	// Complete persists a completed attempt and its answer set atomically.
	// The update is conditional on the stored row not having an end time yet;
	// a lost race returns ErrAttemptCompleted and leaves the row unchanged.
	Complete(ctx context.Context, a *Attempt) error

	// ListByUser returns the user's most recent attempts, newest first,
	// capped at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Attempt, error)

	// ListByUserAndQuiz returns the user's attempts for one quiz, newest first.
	ListByUserAndQuiz(ctx context.Context, userID, quizID string) ([]*Attempt, error)

	// CountLowScores returns the number of the user's completed attempts with
	// a score below the given threshold.
	CountLowScores(ctx context.Context, userID string, below float64) (int, error)

	// AverageScore returns the average completed-attempt score across all
	// quizzes whose course matches the category and level. Returns 0 when
	// there are no completed attempts.
	AverageScore(ctx context.Context, category course.Category, level course.Level) (float64, error)
}
