package course

import "context"

// Repository defines storage operations for the course catalog.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// GetByID returns a course by ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id string) (*Course, error)

	// GetByIDs returns the courses for the given IDs, preserving input order
	// and silently skipping IDs with no matching course.
	GetByIDs(ctx context.Context, ids []string) ([]*Course, error)

	// Create persists a new course.
	Create(ctx context.Context, c *Course) error

	// Update persists changes to a course.
	// Returns ErrCourseNotFound if the course does not exist.
	Update(ctx context.Context, c *Course) error

	// Delete removes a course.
	Delete(ctx context.Context, id string) error

	// FindByFilter returns all courses matching the classification filter.
	FindByFilter(ctx context.Context, f Filter) ([]*Course, error)

	// FindRandom returns a uniform random sample, without replacement, of up
	// to limit courses matching the filter. Fewer matches return all of them.
	FindRandom(ctx context.Context, f Filter, limit int) ([]*Course, error)

	// GetSectionByID returns a section by ID.
	// Returns ErrSectionNotFound if the section does not exist.
	GetSectionByID(ctx context.Context, id string) (*Section, error)

	// ListSectionsByCourse returns the sections of a course ordered by
	// OrderIndex ascending.
	ListSectionsByCourse(ctx context.Context, courseID string) ([]*Section, error)

	// CreateSection persists a new section.
	CreateSection(ctx context.Context, s *Section) error

	// UpdateSection persists changes to a section.
	// Returns ErrSectionNotFound if the section does not exist.
	UpdateSection(ctx context.Context, s *Section) error

	// DeleteSection removes a section. Dependent progress rows are removed by
	// the delete-section command, not implicitly here.
	DeleteSection(ctx context.Context, id string) error
}
