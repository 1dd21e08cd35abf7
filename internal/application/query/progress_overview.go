package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS OVERVIEW QUERY
// Read model over a user's section progress, including the stagnant subset
// at a caller-chosen threshold. No side effects.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressSnapshot is one progress row as exposed to the boundary.
type ProgressSnapshot struct {
	SectionID   string
	Completed   bool
	Skipped     bool
	RepeatCount int
	UpdatedAt   time.Time
	Stagnant    bool
}

// GetProgressOverviewQuery asks for one user's progress.
type GetProgressOverviewQuery struct {
	UserID string

	// StagnantAfterDays marks rows untouched for this long as stagnant.
	// Defaults to the recommendation threshold when zero.
	StagnantAfterDays int
}

// Validate validates the query.
func (q GetProgressOverviewQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("progress_overview: user_id is required")
	}
	if q.StagnantAfterDays < 0 {
		return errors.New("progress_overview: threshold cannot be negative")
	}
	return nil
}

// GetProgressOverviewResult is the progress read model.
type GetProgressOverviewResult struct {
	UserID         string
	Sections       []ProgressSnapshot
	CompletedCount int
	StagnantCount  int
}

// GetProgressOverviewHandler handles the GetProgressOverviewQuery.
type GetProgressOverviewHandler struct {
	progressRepo progress.Repository
	now          func() time.Time
}

// NewGetProgressOverviewHandler creates a new GetProgressOverviewHandler.
func NewGetProgressOverviewHandler(progressRepo progress.Repository) *GetProgressOverviewHandler {
	return &GetProgressOverviewHandler{
		progressRepo: progressRepo,
		now:          timeutil.Now,
	}
}

// Handle executes the progress overview query.
func (h *GetProgressOverviewHandler) Handle(ctx context.Context, q GetProgressOverviewQuery) (*GetProgressOverviewResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	days := q.StagnantAfterDays
	if days == 0 {
		days = StagnantAfterDays
	}
	cutoff := h.now().AddDate(0, 0, -days)

	rows, err := h.progressRepo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	completed, err := h.progressRepo.CountCompleted(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]ProgressSnapshot, len(rows))
	stagnantCount := 0
	for i, row := range rows {
		stagnant := row.IsStagnant(cutoff)
		if stagnant {
			stagnantCount++
		}
		snapshots[i] = ProgressSnapshot{
			SectionID:   row.SectionID,
			Completed:   row.Completed,
			Skipped:     row.Skipped,
			RepeatCount: row.RepeatCount,
			UpdatedAt:   row.UpdatedAt,
			Stagnant:    stagnant,
		}
	}

	return &GetProgressOverviewResult{
		UserID:         q.UserID,
		Sections:       snapshots,
		CompletedCount: completed,
		StagnantCount:  stagnantCount,
	}, nil
}
