// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/quiz"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/timeutil"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// START ATTEMPT COMMAND
// Opens one timed run of a quiz for a user. The question count is fixed at
// start so later quiz edits cannot change the attempt's denominator.
// ══════════════════════════════════════════════════════════════════════════════

// StartAttemptCommand contains the data to start a quiz attempt.
type StartAttemptCommand struct {
	// UserID is the acting user, already authenticated by the boundary.
	UserID string

	// QuizID identifies the quiz being attempted.
	QuizID string
}

// Validate validates the command.
func (c StartAttemptCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("start_attempt: user_id is required")
	}
	if c.QuizID == "" {
		return errors.New("start_attempt: quiz_id is required")
	}
	return nil
}

// StartAttemptResult contains the started attempt snapshot.
type StartAttemptResult struct {
	AttemptID      string
	QuizID         string
	UserID         string
	StartedAt      time.Time
	TotalQuestions int
}

// StartAttemptHandler handles the StartAttemptCommand.
type StartAttemptHandler struct {
	userRepo    user.Repository
	quizRepo    quiz.Repository
	attemptRepo quiz.AttemptRepository
	now         func() time.Time
}

// NewStartAttemptHandler creates a new StartAttemptHandler.
func NewStartAttemptHandler(
	userRepo user.Repository,
	quizRepo quiz.Repository,
	attemptRepo quiz.AttemptRepository,
) *StartAttemptHandler {
	return &StartAttemptHandler{
		userRepo:    userRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		now:         timeutil.Now,
	}
}

// Handle executes the start attempt command.
func (h *StartAttemptHandler) Handle(ctx context.Context, cmd StartAttemptCommand) (*StartAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.userRepo.GetByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}
	q, err := h.quizRepo.GetByID(ctx, cmd.QuizID)
	if err != nil {
		return nil, err
	}

	attempt := quiz.NewAttempt(uuid.NewString(), cmd.UserID, q, h.now())
	if err := h.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	return &StartAttemptResult{
		AttemptID:      attempt.ID,
		QuizID:         attempt.QuizID,
		UserID:         attempt.UserID,
		StartedAt:      attempt.StartedAt,
		TotalQuestions: attempt.TotalQuestions,
	}, nil
}
