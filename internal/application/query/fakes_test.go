package query

import (
	"context"
	"time"

	"github.com/edupath/edupath-core/internal/domain/assistance"
	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/internal/domain/promotion"
	"github.com/edupath/edupath-core/internal/domain/quiz"

	"github.com/shopspring/decimal"
)

// In-memory fakes for the query handler tests. Only the read paths the
// queries exercise are implemented; the embedded interfaces panic on
// anything else, flagging an unexpected call.

// ─── progress ────────────────────────────────────────────────────────────────

type stubProgressRepo struct {
	progress.Repository
	rows []*progress.SectionProgress
}

func (r *stubProgressRepo) ListByUser(_ context.Context, userID string) ([]*progress.SectionProgress, error) {
	var out []*progress.SectionProgress
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *stubProgressRepo) FindStagnant(_ context.Context, userID string, cutoff time.Time) ([]*progress.SectionProgress, error) {
	var out []*progress.SectionProgress
	for _, row := range r.rows {
		if row.UserID == userID && row.IsStagnant(cutoff) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *stubProgressRepo) CountCompleted(_ context.Context, userID string) (int, error) {
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && row.Completed {
			n++
		}
	}
	return n, nil
}

// ─── courses ─────────────────────────────────────────────────────────────────

type stubCourseRepo struct {
	course.Repository
	courses  map[string]*course.Course
	sections map[string]*course.Section

	// randomShelf is returned by FindRandom regardless of the filter.
	randomShelf []*course.Course
}

func (r *stubCourseRepo) GetSectionByID(_ context.Context, id string) (*course.Section, error) {
	s, ok := r.sections[id]
	if !ok {
		return nil, course.ErrSectionNotFound
	}
	return s, nil
}

func (r *stubCourseRepo) GetByIDs(_ context.Context, ids []string) ([]*course.Course, error) {
	out := make([]*course.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCourseRepo) FindRandom(_ context.Context, _ course.Filter, limit int) ([]*course.Course, error) {
	if len(r.randomShelf) > limit {
		return r.randomShelf[:limit], nil
	}
	return r.randomShelf, nil
}

// ─── attempts ────────────────────────────────────────────────────────────────

type stubAttemptRepo struct {
	quiz.AttemptRepository
	attempts []*quiz.Attempt
	average  float64
}

func (r *stubAttemptRepo) ListByUser(_ context.Context, userID string, limit int) ([]*quiz.Attempt, error) {
	var out []*quiz.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubAttemptRepo) CountLowScores(_ context.Context, userID string, below float64) (int, error) {
	n := 0
	for _, a := range r.attempts {
		if a.UserID == userID && a.Score != nil && *a.Score < below {
			n++
		}
	}
	return n, nil
}

func (r *stubAttemptRepo) AverageScore(_ context.Context, _ course.Category, _ course.Level) (float64, error) {
	return r.average, nil
}

// ─── promotions ──────────────────────────────────────────────────────────────

type stubPromotionRepo struct {
	promotion.Repository
	entries []*promotion.Promotion
}

func (r *stubPromotionRepo) SumUnpaid(_ context.Context, promoterID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.entries {
		if p.PromoterID == promoterID && !p.Paid {
			sum = sum.Add(p.CommissionAmount)
		}
	}
	return sum, nil
}

func (r *stubPromotionRepo) CountByPromoter(_ context.Context, promoterID string) (int, error) {
	n := 0
	for _, p := range r.entries {
		if p.PromoterID == promoterID {
			n++
		}
	}
	return n, nil
}

func (r *stubPromotionRepo) ListUnpaid(_ context.Context, promoterID string) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range r.entries {
		if p.PromoterID == promoterID && !p.Paid {
			out = append(out, p)
		}
	}
	return out, nil
}

// ─── payments ────────────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payment.Repository
	payments []*payment.Payment
}

func (r *stubPaymentRepo) ListByUser(_ context.Context, userID string) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) SumPaidBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.Status == payment.StatusPaid && p.PaidAt != nil &&
			!p.PaidAt.Before(from) && p.PaidAt.Before(to) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// ─── assistance ──────────────────────────────────────────────────────────────

type stubAssistanceRepo struct {
	assistance.Repository
	logs []*assistance.Log
}

func (r *stubAssistanceRepo) ListByUser(_ context.Context, userID string) ([]*assistance.Log, error) {
	var out []*assistance.Log
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubAssistanceRepo) CountRecentByUser(_ context.Context, userID string, since time.Time) (int, error) {
	n := 0
	for _, l := range r.logs {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ─── recommendation cache ────────────────────────────────────────────────────

type stubRecommendationCache struct {
	entries map[string][]RecommendedCourse

	gets, sets, invalidations int
}

func newStubRecommendationCache() *stubRecommendationCache {
	return &stubRecommendationCache{entries: make(map[string][]RecommendedCourse)}
}

func (c *stubRecommendationCache) Get(_ context.Context, userID string) ([]RecommendedCourse, bool, error) {
	c.gets++
	items, ok := c.entries[userID]
	return items, ok, nil
}

func (c *stubRecommendationCache) Set(_ context.Context, userID string, items []RecommendedCourse) error {
	c.sets++
	c.entries[userID] = items
	return nil
}

func (c *stubRecommendationCache) Invalidate(_ context.Context, userID string) error {
	c.invalidations++
	delete(c.entries, userID)
	return nil
}
