package progress

import (
	"context"
	"time"
)

// Repository defines storage operations for section progress.
type Repository interface {
	// Upsert creates or overwrites the row for (userID, sectionID).
	//
	// A new row starts with RepeatCount 0. An existing row gets completed and
	// skipped overwritten; if the report is neither completed nor skipped the
	// repeat count is incremented. The increment must be computed by the
	// store's update so concurrent reports cannot lose it.
	Upsert(ctx context.Context, userID, sectionID string, completed, skipped bool) (*SectionProgress, error)

	// GetByUserAndSection returns the row for (userID, sectionID).
	// Returns ErrProgressNotFound if no report was ever made.
	GetByUserAndSection(ctx context.Context, userID, sectionID string) (*SectionProgress, error)

	// ListByUser returns all progress rows for the user.
	ListByUser(ctx context.Context, userID string) ([]*SectionProgress, error)

	// FindStagnant returns the user's rows that are not completed and were
	// last updated before the cutoff. Read-only.
	FindStagnant(ctx context.Context, userID string, cutoff time.Time) ([]*SectionProgress, error)

	// CountCompleted returns the number of sections the user completed.
	CountCompleted(ctx context.Context, userID string) (int, error)

	// DeleteBySection removes every progress row of a section. Used by the
	// section-deletion cascade.
	DeleteBySection(ctx context.Context, sectionID string) error
}
