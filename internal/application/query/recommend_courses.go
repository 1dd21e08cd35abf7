// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/pkg/logger"
	"github.com/edupath/edupath-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMEND COURSES QUERY
// Suggests up to three next courses. Stagnant progress wins: each stagnant
// section maps to its course, de-duplicated preserving first-seen order.
// With no stagnation the fallback is a uniform random sample from a fixed
// default shelf (category 1, level 1, basic) - a deliberately simplified
// placeholder for a similarity-based selection.
// ══════════════════════════════════════════════════════════════════════════════

// Recommendation tuning.
const (
	// StagnantAfterDays is how long a not-completed section may sit
	// untouched before it counts as stagnant.
	StagnantAfterDays = 7

	// RecommendationLimit caps the suggestion list.
	RecommendationLimit = 3
)

// DefaultShelf is the fallback filter when the user has no stagnant progress.
var DefaultShelf = course.Filter{
	Category:   course.Category1,
	Level:      course.Level1,
	Difficulty: course.DifficultyBasic,
}

// RecommendationSource says where a suggestion came from.
type RecommendationSource string

const (
	// SourceStagnant - the user stalled on a section of this course.
	SourceStagnant RecommendationSource = "stagnant"

	// SourceDefault - random pick from the default shelf.
	SourceDefault RecommendationSource = "default"
)

// RecommendedCourse is one suggestion.
type RecommendedCourse struct {
	CourseID   string               `json:"course_id"`
	Title      string               `json:"title"`
	Category   course.Category      `json:"category"`
	Level      course.Level         `json:"level"`
	Difficulty course.Difficulty    `json:"difficulty"`
	Source     RecommendationSource `json:"source"`
}

// RecommendationCache short-circuits repeated recommendation reads for the
// same user. Implementations live in infrastructure/persistence/redis.
type RecommendationCache interface {
	// Get returns the cached list and whether it was present.
	Get(ctx context.Context, userID string) ([]RecommendedCourse, bool, error)

	// Set stores the list for the user.
	Set(ctx context.Context, userID string, items []RecommendedCourse) error

	// Invalidate drops the user's cached list.
	Invalidate(ctx context.Context, userID string) error
}

// RecommendCoursesQuery asks for suggestions for one user.
type RecommendCoursesQuery struct {
	UserID string
}

// Validate validates the query.
func (q RecommendCoursesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("recommend_courses: user_id is required")
	}
	return nil
}

// RecommendCoursesResult is the suggestion list.
type RecommendCoursesResult struct {
	UserID  string
	Courses []RecommendedCourse
}

// RecommendCoursesHandler handles the RecommendCoursesQuery.
type RecommendCoursesHandler struct {
	progressRepo progress.Repository
	courseRepo   course.Repository
	cache        RecommendationCache
	log          *logger.Logger
	now          func() time.Time
}

// NewRecommendCoursesHandler creates a new RecommendCoursesHandler.
// cache may be nil; recommendations then always recompute.
func NewRecommendCoursesHandler(
	progressRepo progress.Repository,
	courseRepo course.Repository,
	cache RecommendationCache,
	log *logger.Logger,
) *RecommendCoursesHandler {
	return &RecommendCoursesHandler{
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
		cache:        cache,
		log:          log,
		now:          timeutil.Now,
	}
}

// Handle executes the recommend courses query.
func (h *RecommendCoursesHandler) Handle(ctx context.Context, q RecommendCoursesQuery) (*RecommendCoursesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if items, ok, err := h.cache.Get(ctx, q.UserID); err != nil {
			// Cache trouble is not a reason to fail the read.
			h.log.Warn("recommendation cache read failed", logger.UserID(q.UserID), logger.Err(err))
		} else if ok {
			return &RecommendCoursesResult{UserID: q.UserID, Courses: items}, nil
		}
	}

	items, err := h.compute(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, q.UserID, items); err != nil {
			h.log.Warn("recommendation cache write failed", logger.UserID(q.UserID), logger.Err(err))
		}
	}

	return &RecommendCoursesResult{UserID: q.UserID, Courses: items}, nil
}

func (h *RecommendCoursesHandler) compute(ctx context.Context, userID string) ([]RecommendedCourse, error) {
	cutoff := h.now().AddDate(0, 0, -StagnantAfterDays)
	stagnant, err := h.progressRepo.FindStagnant(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}

	if len(stagnant) > 0 {
		return h.fromStagnant(ctx, stagnant)
	}

	random, err := h.courseRepo.FindRandom(ctx, DefaultShelf, RecommendationLimit)
	if err != nil {
		return nil, err
	}
	items := make([]RecommendedCourse, 0, len(random))
	for _, c := range random {
		items = append(items, toRecommendation(c, SourceDefault))
	}
	return items, nil
}

// fromStagnant maps stagnant sections to their courses, de-duplicating by
// course identity in first-seen order, capped at the limit.
func (h *RecommendCoursesHandler) fromStagnant(ctx context.Context, stagnant []*progress.SectionProgress) ([]RecommendedCourse, error) {
	seen := make(map[string]struct{})
	courseIDs := make([]string, 0, RecommendationLimit)

	for _, row := range stagnant {
		section, err := h.courseRepo.GetSectionByID(ctx, row.SectionID)
		if err != nil {
			if errors.Is(err, course.ErrSectionNotFound) {
				continue // section removed since the progress was recorded
			}
			return nil, err
		}
		if _, dup := seen[section.CourseID]; dup {
			continue
		}
		seen[section.CourseID] = struct{}{}
		courseIDs = append(courseIDs, section.CourseID)
		if len(courseIDs) == RecommendationLimit {
			break
		}
	}

	courses, err := h.courseRepo.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	items := make([]RecommendedCourse, 0, len(courses))
	for _, c := range courses {
		items = append(items, toRecommendation(c, SourceStagnant))
	}
	return items, nil
}

func toRecommendation(c *course.Course, src RecommendationSource) RecommendedCourse {
	return RecommendedCourse{
		CourseID:   c.ID,
		Title:      c.Title,
		Category:   c.Category,
		Level:      c.Level,
		Difficulty: c.Difficulty,
		Source:     src,
	}
}
