package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/assistance"
	"github.com/edupath/edupath-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANCE HISTORY QUERY
// Read model over a user's assistance log plus the durable hourly usage
// count. Admission control stays with the redis limiter; this read path
// reports usage from the log table itself.
// ══════════════════════════════════════════════════════════════════════════════

// AssistanceEntry is one log entry as exposed to the boundary.
type AssistanceEntry struct {
	LogID          string
	Question       string
	Answer         *string
	Answered       bool
	KnowledgePoint string
	CreatedAt      time.Time
}

// GetAssistanceHistoryQuery asks for one user's assistance log and quota usage.
type GetAssistanceHistoryQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetAssistanceHistoryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("assistance_history: user_id is required")
	}
	return nil
}

// GetAssistanceHistoryResult is the assistance log read model.
type GetAssistanceHistoryResult struct {
	UserID  string
	Entries []AssistanceEntry

	// QuestionsPastHour counts log rows created within the trailing hour.
	QuestionsPastHour int

	HourlyQuota    int
	QuotaRemaining int
}

// GetAssistanceHistoryHandler handles the GetAssistanceHistoryQuery.
type GetAssistanceHistoryHandler struct {
	logRepo     assistance.Repository
	hourlyQuota int

	now func() time.Time
}

// NewGetAssistanceHistoryHandler creates a new GetAssistanceHistoryHandler.
func NewGetAssistanceHistoryHandler(logRepo assistance.Repository, hourlyQuota int) *GetAssistanceHistoryHandler {
	return &GetAssistanceHistoryHandler{
		logRepo:     logRepo,
		hourlyQuota: hourlyQuota,
		now:         timeutil.Now,
	}
}

// Handle executes the assistance history query.
func (h *GetAssistanceHistoryHandler) Handle(ctx context.Context, q GetAssistanceHistoryQuery) (*GetAssistanceHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	logs, err := h.logRepo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	recent, err := h.logRepo.CountRecentByUser(ctx, q.UserID, h.now().Add(-time.Hour))
	if err != nil {
		return nil, err
	}

	entries := make([]AssistanceEntry, len(logs))
	for i, l := range logs {
		entries[i] = AssistanceEntry{
			LogID:          l.ID,
			Question:       l.Question,
			Answer:         l.Answer,
			Answered:       l.Answered,
			KnowledgePoint: l.KnowledgePoint,
			CreatedAt:      l.CreatedAt,
		}
	}

	remaining := h.hourlyQuota - recent
	if remaining < 0 {
		remaining = 0
	}

	return &GetAssistanceHistoryResult{
		UserID:            q.UserID,
		Entries:           entries,
		QuestionsPastHour: recent,
		HourlyQuota:       h.hourlyQuota,
		QuotaRemaining:    remaining,
	}, nil
}
