package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/assistance"
	"github.com/edupath/edupath-core/internal/domain/user"
	"github.com/edupath/edupath-core/pkg/timeutil"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST ASSISTANCE COMMAND
// Records an AI-assistance query under the user's hourly quota. The answer
// arrives later through AnswerAssistance.
// ══════════════════════════════════════════════════════════════════════════════

// RequestAssistanceCommand contains one assistance query.
type RequestAssistanceCommand struct {
	UserID         string
	Question       string
	KnowledgePoint string
}

// Validate validates the command.
func (c RequestAssistanceCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("request_assistance: user_id is required")
	}
	if c.Question == "" {
		return errors.New("request_assistance: question is required")
	}
	return nil
}

// RequestAssistanceResult is the recorded query snapshot.
type RequestAssistanceResult struct {
	LogID          string
	UserID         string
	Question       string
	KnowledgePoint string
	CreatedAt      time.Time
}

// RequestAssistanceHandler handles the RequestAssistanceCommand.
type RequestAssistanceHandler struct {
	userRepo user.Repository
	logRepo  assistance.Repository
	limiter  assistance.QueryLimiter
	now      func() time.Time
}

// NewRequestAssistanceHandler creates a new RequestAssistanceHandler.
func NewRequestAssistanceHandler(
	userRepo user.Repository,
	logRepo assistance.Repository,
	limiter assistance.QueryLimiter,
) *RequestAssistanceHandler {
	return &RequestAssistanceHandler{
		userRepo: userRepo,
		logRepo:  logRepo,
		limiter:  limiter,
		now:      timeutil.Now,
	}
}

// Handle executes the request assistance command.
func (h *RequestAssistanceHandler) Handle(ctx context.Context, cmd RequestAssistanceCommand) (*RequestAssistanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.userRepo.GetByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}

	allowed, err := h.limiter.Allow(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, assistance.ErrQuotaExceeded
	}

	now := h.now()
	entry := &assistance.Log{
		ID:             uuid.NewString(),
		UserID:         cmd.UserID,
		Question:       cmd.Question,
		KnowledgePoint: cmd.KnowledgePoint,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.logRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return &RequestAssistanceResult{
		LogID:          entry.ID,
		UserID:         entry.UserID,
		Question:       entry.Question,
		KnowledgePoint: entry.KnowledgePoint,
		CreatedAt:      entry.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER ASSISTANCE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AnswerAssistanceCommand records the answer for a pending query.
type AnswerAssistanceCommand struct {
	LogID  string
	Answer string
}

// Validate validates the command.
func (c AnswerAssistanceCommand) Validate() error {
	if c.LogID == "" {
		return errors.New("answer_assistance: log_id is required")
	}
	if c.Answer == "" {
		return errors.New("answer_assistance: answer is required")
	}
	return nil
}

// AnswerAssistanceHandler handles the AnswerAssistanceCommand.
type AnswerAssistanceHandler struct {
	logRepo assistance.Repository
	now     func() time.Time
}

// NewAnswerAssistanceHandler creates a new AnswerAssistanceHandler.
func NewAnswerAssistanceHandler(logRepo assistance.Repository) *AnswerAssistanceHandler {
	return &AnswerAssistanceHandler{
		logRepo: logRepo,
		now:     timeutil.Now,
	}
}

// Handle executes the answer assistance command.
func (h *AnswerAssistanceHandler) Handle(ctx context.Context, cmd AnswerAssistanceCommand) (*assistance.Log, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	entry, err := h.logRepo.GetByID(ctx, cmd.LogID)
	if err != nil {
		return nil, err
	}

	entry.SetAnswer(cmd.Answer, h.now())
	if err := h.logRepo.SaveAnswer(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
