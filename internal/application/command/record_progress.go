package command

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROGRESS COMMAND
// Idempotent upsert of the (user, section) progress row. There is no state
// machine here: each report overwrites the flat record, and only a
// watched-again-without-finishing report bumps the repeat count.
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressCommand contains one progress report for a lesson section.
type RecordProgressCommand struct {
	// UserID is the acting user.
	UserID string

	// SectionID identifies the lesson section.
	SectionID string

	// Completed reports the section as finished.
	Completed bool

	// Skipped reports the section as skipped.
	Skipped bool
}

// Validate validates the command.
func (c RecordProgressCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_progress: user_id is required")
	}
	if c.SectionID == "" {
		return errors.New("record_progress: section_id is required")
	}
	return nil
}

// RecordProgressResult is the progress snapshot after the report.
type RecordProgressResult struct {
	UserID      string
	SectionID   string
	Completed   bool
	Skipped     bool
	RepeatCount int
	UpdatedAt   time.Time
}

// RecordProgressHandler handles the RecordProgressCommand.
type RecordProgressHandler struct {
	userRepo     user.Repository
	courseRepo   course.Repository
	progressRepo progress.Repository
}

// NewRecordProgressHandler creates a new RecordProgressHandler.
func NewRecordProgressHandler(
	userRepo user.Repository,
	courseRepo course.Repository,
	progressRepo progress.Repository,
) *RecordProgressHandler {
	return &RecordProgressHandler{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
	}
}

// Handle executes the record progress command.
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.userRepo.GetByID(ctx, cmd.UserID); err != nil {
		return nil, err
	}
	if _, err := h.courseRepo.GetSectionByID(ctx, cmd.SectionID); err != nil {
		return nil, err
	}

	row, err := h.progressRepo.Upsert(ctx, cmd.UserID, cmd.SectionID, cmd.Completed, cmd.Skipped)
	if err != nil {
		return nil, err
	}

	return &RecordProgressResult{
		UserID:      row.UserID,
		SectionID:   row.SectionID,
		Completed:   row.Completed,
		Skipped:     row.Skipped,
		RepeatCount: row.RepeatCount,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
