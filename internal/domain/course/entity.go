// Package course contains the course catalog domain model: courses, lesson
// sections, and the closed classification enumerations used across the core.
package course

import (
	"time"

	"github.com/edupath/edupath-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION ENUMERATIONS
// Closed sets. Unknown values are rejected explicitly at parse time rather
// than surfacing later as a lookup failure.
// ══════════════════════════════════════════════════════════════════════════════

// Category classifies a course into one of the platform's subject tracks.
type Category string

const (
	Category1 Category = "category_1"
	Category2 Category = "category_2"
	Category3 Category = "category_3"
)

// IsValid checks whether the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case Category1, Category2, Category3:
		return true
	}
	return false
}

// String returns the string representation.
func (c Category) String() string { return string(c) }

// ParseCategory parses a category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", shared.NewDomainError("course", "ParseCategory", shared.ErrInvalidEnum, "unknown category: "+s)
	}
	return c, nil
}

// Level classifies a course into one of ten progression levels.
type Level string

const (
	Level1  Level = "level_1"
	Level2  Level = "level_2"
	Level3  Level = "level_3"
	Level4  Level = "level_4"
	Level5  Level = "level_5"
	Level6  Level = "level_6"
	Level7  Level = "level_7"
	Level8  Level = "level_8"
	Level9  Level = "level_9"
	Level10 Level = "level_10"
)

// IsValid checks whether the level is a known value.
func (l Level) IsValid() bool {
	switch l {
	case Level1, Level2, Level3, Level4, Level5,
		Level6, Level7, Level8, Level9, Level10:
		return true
	}
	return false
}

// String returns the string representation.
func (l Level) String() string { return string(l) }

// ParseLevel parses a level, rejecting unknown values.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.IsValid() {
		return "", shared.NewDomainError("course", "ParseLevel", shared.ErrInvalidEnum, "unknown level: "+s)
	}
	return l, nil
}

// Difficulty classifies course material by how demanding it is.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid checks whether the difficulty is a known value.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// String returns the string representation.
func (d Difficulty) String() string { return string(d) }

// ParseDifficulty parses a difficulty, rejecting unknown values.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.IsValid() {
		return "", shared.NewDomainError("course", "ParseDifficulty", shared.ErrInvalidEnum, "unknown difficulty: "+s)
	}
	return d, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Course is a published course in the catalog.
type Course struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Level       Level
	Difficulty  Difficulty
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks course invariants.
func (c *Course) Validate() error {
	if c.ID == "" {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "course ID is required")
	}
	if c.Title == "" {
		return shared.NewDomainError("course", "Validate", shared.ErrEmptyValue, "course title is required")
	}
	if !c.Category.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown category: "+string(c.Category))
	}
	if !c.Level.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown level: "+string(c.Level))
	}
	if !c.Difficulty.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown difficulty: "+string(c.Difficulty))
	}
	return nil
}

// Section is one lesson segment of a course. Sections are ordered within
// their course by OrderIndex.
type Section struct {
	ID              string
	CourseID        string
	Title           string
	OrderIndex      int
	DurationSeconds int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks section invariants.
func (s *Section) Validate() error {
	if s.ID == "" {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "section ID is required")
	}
	if s.CourseID == "" {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "section course ID is required")
	}
	if s.OrderIndex < 0 {
		return shared.NewDomainError("course", "Validate", shared.ErrNegativeValue, "section order index cannot be negative")
	}
	return nil
}

// Filter narrows catalog queries by classification.
type Filter struct {
	Category   Category
	Level      Level
	Difficulty Difficulty
}

// Validate checks that every filter dimension carries a known value.
func (f Filter) Validate() error {
	if !f.Category.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown category: "+string(f.Category))
	}
	if !f.Level.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown level: "+string(f.Level))
	}
	if !f.Difficulty.IsValid() {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidEnum, "unknown difficulty: "+string(f.Difficulty))
	}
	return nil
}

// Domain errors.
var (
	ErrCourseNotFound  = shared.NewDomainError("course", "Find", shared.ErrNotFound, "course not found")
	ErrSectionNotFound = shared.NewDomainError("course", "FindSection", shared.ErrNotFound, "section not found")
)
