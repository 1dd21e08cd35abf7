package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/quiz"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT HISTORY QUERY
// Read model over a user's recent attempts, including the consecutive
// low-score signal used to surface struggling learners.
// ══════════════════════════════════════════════════════════════════════════════

// recentWindow is how many trailing attempts the low-score signal inspects.
const recentWindow = 3

// AttemptSnapshot is one attempt as exposed to the boundary.
type AttemptSnapshot struct {
	AttemptID        string
	QuizID           string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Score            *float64
	CorrectAnswers   int
	TotalQuestions   int
	TimeSpentSeconds int
}

// GetAttemptHistoryQuery asks for a user's recent attempts.
type GetAttemptHistoryQuery struct {
	UserID string

	// Limit caps the list; defaults to the low-score window when zero.
	Limit int

	// LowScoreWindow is how many trailing completed attempts must all score
	// low before the consecutive signal fires. Defaults to recentWindow when
	// zero.
	LowScoreWindow int
}

// Validate validates the query.
func (q GetAttemptHistoryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("attempt_history: user_id is required")
	}
	if q.Limit < 0 {
		return errors.New("attempt_history: limit cannot be negative")
	}
	if q.LowScoreWindow < 0 {
		return errors.New("attempt_history: low_score_window cannot be negative")
	}
	return nil
}

// GetAttemptHistoryResult is the attempt history read model.
type GetAttemptHistoryResult struct {
	UserID   string
	Attempts []AttemptSnapshot

	// LowScoreCount is the user's all-time count of completed attempts below
	// the low-score threshold.
	LowScoreCount int

	// ConsecutiveLowScores is set when every attempt in the trailing window
	// scored below the threshold.
	ConsecutiveLowScores bool
}

// GetAttemptHistoryHandler handles the GetAttemptHistoryQuery.
type GetAttemptHistoryHandler struct {
	attemptRepo quiz.AttemptRepository
}

// NewGetAttemptHistoryHandler creates a new GetAttemptHistoryHandler.
func NewGetAttemptHistoryHandler(attemptRepo quiz.AttemptRepository) *GetAttemptHistoryHandler {
	return &GetAttemptHistoryHandler{attemptRepo: attemptRepo}
}

// Handle executes the attempt history query.
func (h *GetAttemptHistoryHandler) Handle(ctx context.Context, q GetAttemptHistoryQuery) (*GetAttemptHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	window := q.LowScoreWindow
	if window == 0 {
		window = recentWindow
	}
	limit := q.Limit
	if limit == 0 {
		limit = window
	}

	// Fetch enough rows to fill the window even when the caller asked for a
	// shorter list.
	fetch := limit
	if fetch < window {
		fetch = window
	}

	attempts, err := h.attemptRepo.ListByUser(ctx, q.UserID, fetch)
	if err != nil {
		return nil, err
	}
	lowCount, err := h.attemptRepo.CountLowScores(ctx, q.UserID, quiz.LowScoreThreshold)
	if err != nil {
		return nil, err
	}

	listed := attempts
	if len(listed) > limit {
		listed = listed[:limit]
	}

	snapshots := make([]AttemptSnapshot, len(listed))
	for i, a := range listed {
		snapshots[i] = AttemptSnapshot{
			AttemptID:        a.ID,
			QuizID:           a.QuizID,
			StartedAt:        a.StartedAt,
			CompletedAt:      a.CompletedAt,
			Score:            a.Score,
			CorrectAnswers:   a.CorrectAnswers,
			TotalQuestions:   a.TotalQuestions,
			TimeSpentSeconds: a.TimeSpentSeconds,
		}
	}

	return &GetAttemptHistoryResult{
		UserID:               q.UserID,
		Attempts:             snapshots,
		LowScoreCount:        lowCount,
		ConsecutiveLowScores: consecutiveLowScores(attempts, window),
	}, nil
}

// consecutiveLowScores reports whether the trailing window is full and every
// attempt in it scored low. Fewer attempts than the window never trigger it.
func consecutiveLowScores(attempts []*quiz.Attempt, window int) bool {
	if window <= 0 || len(attempts) < window {
		return false
	}
	low := 0
	for _, a := range attempts[:window] {
		if a.IsLowScore() {
			low++
		}
	}
	return low >= window
}

// ══════════════════════════════════════════════════════════════════════════════
// AVERAGE SCORE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetAverageScoreQuery asks for the average completed-attempt score across a
// category and level.
type GetAverageScoreQuery struct {
	Category course.Category
	Level    course.Level
}

// Validate validates the query.
func (q GetAverageScoreQuery) Validate() error {
	if !q.Category.IsValid() {
		return errors.New("average_score: unknown category")
	}
	if !q.Level.IsValid() {
		return errors.New("average_score: unknown level")
	}
	return nil
}

// GetAverageScoreHandler handles the GetAverageScoreQuery.
type GetAverageScoreHandler struct {
	attemptRepo quiz.AttemptRepository
}

// NewGetAverageScoreHandler creates a new GetAverageScoreHandler.
func NewGetAverageScoreHandler(attemptRepo quiz.AttemptRepository) *GetAverageScoreHandler {
	return &GetAverageScoreHandler{attemptRepo: attemptRepo}
}

// Handle executes the average score query.
func (h *GetAverageScoreHandler) Handle(ctx context.Context, q GetAverageScoreQuery) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return h.attemptRepo.AverageScore(ctx, q.Category, q.Level)
}
