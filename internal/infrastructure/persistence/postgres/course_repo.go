// Package postgres implements the PostgreSQL persistence layer for EduPath.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

const courseColumns = `id, title, description, category, level, difficulty, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// Course Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (id, title, description, category, level, difficulty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		string(c.Category),
		string(c.Level),
		string(c.Difficulty),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanCourse(row)
}

// GetByIDs returns the courses for the given IDs, preserving input order and
// silently skipping IDs with no matching course.
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []string) ([]*course.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1)`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*course.Course, len(ids))
	for rows.Next() {
		c, err := r.scanCourse(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*course.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}

	return ordered, nil
}

// Update persists changes to a course.
func (r *CourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			description = $2,
			category = $3,
			level = $4,
			difficulty = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		c.Title,
		c.Description,
		string(c.Category),
		string(c.Level),
		string(c.Difficulty),
		time.Now().UTC(),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return course.ErrCourseNotFound
	}

	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return course.ErrCourseNotFound
	}

	return nil
}

// FindByFilter returns all courses matching the classification filter.
func (r *CourseRepository) FindByFilter(ctx context.Context, f course.Filter) ([]*course.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE category = $1 AND level = $2 AND difficulty = $3
		ORDER BY created_at
	`

	return r.queryCourses(ctx, query, string(f.Category), string(f.Level), string(f.Difficulty))
}

// FindRandom returns a uniform random sample, without replacement, of up to
// limit courses matching the filter.
func (r *CourseRepository) FindRandom(ctx context.Context, f course.Filter, limit int) ([]*course.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE category = $1 AND level = $2 AND difficulty = $3
		ORDER BY random()
		LIMIT $4
	`

	return r.queryCourses(ctx, query, string(f.Category), string(f.Level), string(f.Difficulty), limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Section Operations
// ─────────────────────────────────────────────────────────────────────────────

const sectionColumns = `id, course_id, title, order_index, duration_seconds, created_at, updated_at`

// CreateSection persists a new section.
func (r *CourseRepository) CreateSection(ctx context.Context, s *course.Section) error {
	query := `
		INSERT INTO sections (id, course_id, title, order_index, duration_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.CourseID,
		s.Title,
		s.OrderIndex,
		s.DurationSeconds,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return course.ErrCourseNotFound
		}
		return fmt.Errorf("failed to create section: %w", err)
	}

	return nil
}

// GetSectionByID returns a section by ID.
func (r *CourseRepository) GetSectionByID(ctx context.Context, id string) (*course.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSection(row)
}

// ListSectionsByCourse returns the sections of a course ordered by OrderIndex.
func (r *CourseRepository) ListSectionsByCourse(ctx context.Context, courseID string) ([]*course.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE course_id = $1 ORDER BY order_index`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []*course.Section
	for rows.Next() {
		s, err := r.scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}

	return sections, rows.Err()
}

// UpdateSection persists changes to a section.
func (r *CourseRepository) UpdateSection(ctx context.Context, s *course.Section) error {
	query := `
		UPDATE sections SET
			title = $1,
			order_index = $2,
			duration_seconds = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		s.Title,
		s.OrderIndex,
		s.DurationSeconds,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}

	if result.RowsAffected() == 0 {
		return course.ErrSectionNotFound
	}

	return nil
}

// DeleteSection removes a section.
func (r *CourseRepository) DeleteSection(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}

	if result.RowsAffected() == 0 {
		return course.ErrSectionNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *CourseRepository) queryCourses(ctx context.Context, query string, args ...interface{}) ([]*course.Course, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		c, err := r.scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	return courses, rows.Err()
}

func (r *CourseRepository) scanCourse(row pgx.Row) (*course.Course, error) {
	var (
		c          course.Course
		category   string
		level      string
		difficulty string
	)

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&category,
		&level,
		&difficulty,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, course.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Category = course.Category(category)
	c.Level = course.Level(level)
	c.Difficulty = course.Difficulty(difficulty)

	return &c, nil
}

func (r *CourseRepository) scanSection(row pgx.Row) (*course.Section, error) {
	var s course.Section

	err := row.Scan(
		&s.ID,
		&s.CourseID,
		&s.Title,
		&s.OrderIndex,
		&s.DurationSeconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, course.ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to scan section: %w", err)
	}

	return &s, nil
}
