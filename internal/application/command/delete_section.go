package command

import (
	"context"
	"errors"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE SECTION COMMAND
// Removing a lesson section owns the removal of its dependents: progress
// rows are enumerated and deleted in the same transaction as the section,
// as an explicit ownership rule rather than an implicit store cascade.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteSectionCommand identifies the section to remove.
type DeleteSectionCommand struct {
	SectionID string
}

// Validate validates the command.
func (c DeleteSectionCommand) Validate() error {
	if c.SectionID == "" {
		return errors.New("delete_section: section_id is required")
	}
	return nil
}

// DeleteSectionHandler handles the DeleteSectionCommand.
type DeleteSectionHandler struct {
	courseRepo   course.Repository
	progressRepo progress.Repository
	tx           shared.TxManager
}

// NewDeleteSectionHandler creates a new DeleteSectionHandler.
func NewDeleteSectionHandler(
	courseRepo course.Repository,
	progressRepo progress.Repository,
	tx shared.TxManager,
) *DeleteSectionHandler {
	return &DeleteSectionHandler{
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		tx:           tx,
	}
}

// Handle executes the delete section command.
func (h *DeleteSectionHandler) Handle(ctx context.Context, cmd DeleteSectionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := h.courseRepo.GetSectionByID(ctx, cmd.SectionID); err != nil {
			return err
		}
		if err := h.progressRepo.DeleteBySection(ctx, cmd.SectionID); err != nil {
			return err
		}
		return h.courseRepo.DeleteSection(ctx, cmd.SectionID)
	})
}
