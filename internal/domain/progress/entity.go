// Package progress contains per-user, per-section completion state and the
// stagnation rules feeding the recommendation engine.
package progress

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"
)

// SectionProgress is the flat completion record for one (user, section) pair.
// At most one row exists per pair; reports after the first overwrite it.
type SectionProgress struct {
	ID        string
	UserID    string
	SectionID string
	Completed bool
	Skipped   bool

	// RepeatCount counts reports where the user watched again without
	// finishing (neither completed nor skipped). It only ever increments,
	// and only on such reports.
	RepeatCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRepeatReport reports whether a progress report counts as a repeat watch:
// the user came back to the section without finishing or skipping it.
func IsRepeatReport(completed, skipped bool) bool {
	return !completed && !skipped
}

// IsStagnant reports whether the row counts as stagnant at the given cutoff:
// not completed and untouched since before the cutoff.
func (p *SectionProgress) IsStagnant(cutoff time.Time) bool {
	return !p.Completed && p.UpdatedAt.Before(cutoff)
}

// Domain errors.
var (
	ErrProgressNotFound = shared.NewDomainError("progress", "Find", shared.ErrNotFound, "progress not found")
)
