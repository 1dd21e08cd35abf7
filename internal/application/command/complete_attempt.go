package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/quiz"
	"github.com/edupath/edupath-core/pkg/timeutil"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE ATTEMPT COMMAND
// Scores an attempt exactly once and moves it to its terminal state. The
// persisted update is conditional on the row not being completed yet, so a
// concurrent double-completion loses cleanly instead of re-scoring.
// ══════════════════════════════════════════════════════════════════════════════

// SubmittedAnswer is one answer as submitted by the boundary layer. The
// correctness flag is pre-computed by the caller; the engine does not grade
// free-text answers.
type SubmittedAnswer struct {
	QuestionID       string
	Value            string
	Correct          bool
	TimeSpentSeconds int
}

// CompleteAttemptCommand contains the data to complete a quiz attempt.
type CompleteAttemptCommand struct {
	// AttemptID identifies the attempt being completed.
	AttemptID string

	// UserID is the acting user. Completing another user's attempt is
	// rejected as unauthorized.
	UserID string

	// Answers is the full submitted answer set.
	Answers []SubmittedAnswer
}

// Validate validates the command.
func (c CompleteAttemptCommand) Validate() error {
	if c.AttemptID == "" {
		return errors.New("complete_attempt: attempt_id is required")
	}
	if c.UserID == "" {
		return errors.New("complete_attempt: user_id is required")
	}
	return nil
}

// CompleteAttemptResult is the completed attempt snapshot.
type CompleteAttemptResult struct {
	AttemptID        string
	Score            float64
	CorrectAnswers   int
	TotalQuestions   int
	TimeSpentSeconds int
	CompletedAt      time.Time
}

// CompleteAttemptHandler handles the CompleteAttemptCommand.
type CompleteAttemptHandler struct {
	attemptRepo quiz.AttemptRepository
	now         func() time.Time
}

// NewCompleteAttemptHandler creates a new CompleteAttemptHandler.
func NewCompleteAttemptHandler(attemptRepo quiz.AttemptRepository) *CompleteAttemptHandler {
	return &CompleteAttemptHandler{
		attemptRepo: attemptRepo,
		now:         timeutil.Now,
	}
}

// Handle executes the complete attempt command.
func (h *CompleteAttemptHandler) Handle(ctx context.Context, cmd CompleteAttemptCommand) (*CompleteAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	attempt, err := h.attemptRepo.GetByID(ctx, cmd.AttemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.OwnedBy(cmd.UserID) {
		return nil, quiz.ErrNotAttemptOwner
	}

	answers := make([]quiz.Answer, len(cmd.Answers))
	for i, a := range cmd.Answers {
		answers[i] = quiz.Answer{
			ID:               uuid.NewString(),
			QuestionID:       a.QuestionID,
			Submitted:        a.Value,
			Correct:          a.Correct,
			TimeSpentSeconds: a.TimeSpentSeconds,
		}
	}

	if err := attempt.Complete(answers, h.now()); err != nil {
		return nil, err
	}

	// Conditional update: a concurrent completion that won the race surfaces
	// here as ErrAttemptCompleted and the stored attempt stays unchanged.
	if err := h.attemptRepo.Complete(ctx, attempt); err != nil {
		return nil, err
	}

	return &CompleteAttemptResult{
		AttemptID:        attempt.ID,
		Score:            *attempt.Score,
		CorrectAnswers:   attempt.CorrectAnswers,
		TotalQuestions:   attempt.TotalQuestions,
		TimeSpentSeconds: attempt.TimeSpentSeconds,
		CompletedAt:      *attempt.CompletedAt,
	}, nil
}
