package command

import (
	"context"
	"sort"
	"time"

	"github.com/edupath/edupath-core/internal/domain/assistance"
	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/payment"
	"github.com/edupath/edupath-core/internal/domain/progress"
	"github.com/edupath/edupath-core/internal/domain/promotion"
	"github.com/edupath/edupath-core/internal/domain/quiz"
	"github.com/edupath/edupath-core/internal/domain/user"

	"github.com/shopspring/decimal"
)

// In-memory repository fakes shared by the command handler tests. They mirror
// the documented contracts of the real repositories, including the
// conditional-update semantics the race-sensitive handlers rely on.

// ─── users ───────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[string]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*user.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) ListByReferrer(_ context.Context, referrerID string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.users {
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			out = append(out, u)
		}
	}
	return out, nil
}

// ─── quizzes ─────────────────────────────────────────────────────────────────

// fakeQuizRepo covers only the lookups the commands use; the embedded
// interface panics on anything else, which would flag an unexpected call.
type fakeQuizRepo struct {
	quiz.Repository
	quizzes map[string]*quiz.Quiz
}

func newFakeQuizRepo(quizzes ...*quiz.Quiz) *fakeQuizRepo {
	r := &fakeQuizRepo{quizzes: make(map[string]*quiz.Quiz)}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id string) (*quiz.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return nil, quiz.ErrQuizNotFound
	}
	return q, nil
}

// ─── attempts ────────────────────────────────────────────────────────────────

type fakeAttemptRepo struct {
	attempts map[string]*quiz.Attempt
}

func newFakeAttemptRepo(attempts ...*quiz.Attempt) *fakeAttemptRepo {
	r := &fakeAttemptRepo{attempts: make(map[string]*quiz.Attempt)}
	for _, a := range attempts {
		copied := *a
		r.attempts[a.ID] = &copied
	}
	return r
}

func (r *fakeAttemptRepo) Create(_ context.Context, a *quiz.Attempt) error {
	copied := *a
	r.attempts[a.ID] = &copied
	return nil
}

func (r *fakeAttemptRepo) GetByID(_ context.Context, id string) (*quiz.Attempt, error) {
	a, ok := r.attempts[id]
	if !ok {
		return nil, quiz.ErrAttemptNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAttemptRepo) Complete(_ context.Context, a *quiz.Attempt) error {
	stored, ok := r.attempts[a.ID]
	if !ok {
		return quiz.ErrAttemptNotFound
	}
	if stored.IsCompleted() {
		return quiz.ErrAttemptCompleted
	}
	copied := *a
	r.attempts[a.ID] = &copied
	return nil
}

func (r *fakeAttemptRepo) ListByUser(_ context.Context, userID string, limit int) ([]*quiz.Attempt, error) {
	var out []*quiz.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListByUserAndQuiz(_ context.Context, userID, quizID string) ([]*quiz.Attempt, error) {
	var out []*quiz.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) CountLowScores(_ context.Context, userID string, below float64) (int, error) {
	n := 0
	for _, a := range r.attempts {
		if a.UserID == userID && a.Score != nil && *a.Score < below {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttemptRepo) AverageScore(_ context.Context, _ course.Category, _ course.Level) (float64, error) {
	return 0, nil
}

// ─── courses ─────────────────────────────────────────────────────────────────

type fakeCourseRepo struct {
	course.Repository
	sections map[string]*course.Section
}

func newFakeCourseRepo(sections ...*course.Section) *fakeCourseRepo {
	r := &fakeCourseRepo{sections: make(map[string]*course.Section)}
	for _, s := range sections {
		r.sections[s.ID] = s
	}
	return r
}

func (r *fakeCourseRepo) GetSectionByID(_ context.Context, id string) (*course.Section, error) {
	s, ok := r.sections[id]
	if !ok {
		return nil, course.ErrSectionNotFound
	}
	return s, nil
}

func (r *fakeCourseRepo) DeleteSection(_ context.Context, id string) error {
	if _, ok := r.sections[id]; !ok {
		return course.ErrSectionNotFound
	}
	delete(r.sections, id)
	return nil
}

// ─── progress ────────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	rows map[string]*progress.SectionProgress
	now  func() time.Time
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		rows: make(map[string]*progress.SectionProgress),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func progressKey(userID, sectionID string) string { return userID + "|" + sectionID }

func (r *fakeProgressRepo) Upsert(_ context.Context, userID, sectionID string, completed, skipped bool) (*progress.SectionProgress, error) {
	key := progressKey(userID, sectionID)
	now := r.now()

	row, ok := r.rows[key]
	if !ok {
		row = &progress.SectionProgress{
			ID:        key,
			UserID:    userID,
			SectionID: sectionID,
			CreatedAt: now,
		}
		r.rows[key] = row
	} else if progress.IsRepeatReport(completed, skipped) {
		row.RepeatCount++
	}

	row.Completed = completed
	row.Skipped = skipped
	row.UpdatedAt = now

	copied := *row
	return &copied, nil
}

func (r *fakeProgressRepo) GetByUserAndSection(_ context.Context, userID, sectionID string) (*progress.SectionProgress, error) {
	row, ok := r.rows[progressKey(userID, sectionID)]
	if !ok {
		return nil, progress.ErrProgressNotFound
	}
	return row, nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID string) ([]*progress.SectionProgress, error) {
	var out []*progress.SectionProgress
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) FindStagnant(_ context.Context, userID string, cutoff time.Time) ([]*progress.SectionProgress, error) {
	var out []*progress.SectionProgress
	for _, row := range r.rows {
		if row.UserID == userID && row.IsStagnant(cutoff) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompleted(_ context.Context, userID string) (int, error) {
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && row.Completed {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) DeleteBySection(_ context.Context, sectionID string) error {
	for key, row := range r.rows {
		if row.SectionID == sectionID {
			delete(r.rows, key)
		}
	}
	return nil
}

// ─── payments ────────────────────────────────────────────────────────────────

type fakePaymentRepo struct {
	payments map[string]*payment.Payment

	// createCollisions makes the first N creates fail with
	// ErrOrderNumberTaken to exercise the regenerate-and-retry path.
	createCollisions int
}

func newFakePaymentRepo(payments ...*payment.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{payments: make(map[string]*payment.Payment)}
	for _, p := range payments {
		copied := *p
		r.payments[p.ID] = &copied
	}
	return r
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	if r.createCollisions > 0 {
		r.createCollisions--
		return payment.ErrOrderNumberTaken
	}
	for _, existing := range r.payments {
		if existing.OrderNumber == p.OrderNumber {
			return payment.ErrOrderNumberTaken
		}
	}
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) GetByOrderNumber(_ context.Context, orderNumber string) (*payment.Payment, error) {
	for _, p := range r.payments {
		if p.OrderNumber == orderNumber {
			copied := *p
			return &copied, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, p *payment.Payment, prev payment.Status) error {
	stored, ok := r.payments[p.ID]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	if stored.Status != prev {
		return payment.ErrTransitionLost
	}
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID string) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListByStatus(_ context.Context, status payment.Status) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CountRecentByUser(_ context.Context, userID string, since time.Time) (int, error) {
	n := 0
	for _, p := range r.payments {
		if p.UserID == userID && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakePaymentRepo) HasPaidOther(_ context.Context, userID, excludeID string) (bool, error) {
	for _, p := range r.payments {
		if p.UserID == userID && p.ID != excludeID && p.Status == payment.StatusPaid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) SumPaidBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.Status == payment.StatusPaid && p.PaidAt != nil &&
			!p.PaidAt.Before(from) && p.PaidAt.Before(to) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type fakePackageRepo struct {
	packages map[string]*payment.SubscriptionPackage
}

func newFakePackageRepo(packages ...*payment.SubscriptionPackage) *fakePackageRepo {
	r := &fakePackageRepo{packages: make(map[string]*payment.SubscriptionPackage)}
	for _, p := range packages {
		r.packages[p.ID] = p
	}
	return r
}

func (r *fakePackageRepo) GetByID(_ context.Context, id string) (*payment.SubscriptionPackage, error) {
	p, ok := r.packages[id]
	if !ok {
		return nil, payment.ErrPackageNotFound
	}
	return p, nil
}

func (r *fakePackageRepo) ListActive(_ context.Context) ([]*payment.SubscriptionPackage, error) {
	var out []*payment.SubscriptionPackage
	for _, p := range r.packages {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// ─── promotions ──────────────────────────────────────────────────────────────

type fakePromotionRepo struct {
	entries []*promotion.Promotion
}

func (r *fakePromotionRepo) Create(_ context.Context, p *promotion.Promotion) error {
	copied := *p
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakePromotionRepo) GetByID(_ context.Context, id string) (*promotion.Promotion, error) {
	for _, p := range r.entries {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, promotion.ErrPromotionNotFound
}

func (r *fakePromotionRepo) ListByPromoter(_ context.Context, promoterID string) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range r.entries {
		if p.PromoterID == promoterID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) ListUnpaid(_ context.Context, promoterID string) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range r.entries {
		if p.PromoterID == promoterID && !p.Paid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) SumUnpaid(_ context.Context, promoterID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.entries {
		if p.PromoterID == promoterID && !p.Paid {
			sum = sum.Add(p.CommissionAmount)
		}
	}
	return sum, nil
}

func (r *fakePromotionRepo) CountByPromoter(_ context.Context, promoterID string) (int, error) {
	n := 0
	for _, p := range r.entries {
		if p.PromoterID == promoterID {
			n++
		}
	}
	return n, nil
}

func (r *fakePromotionRepo) MarkAllPaid(_ context.Context, promoterID string, now time.Time) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range r.entries {
		if p.PromoterID == promoterID && !p.Paid {
			p.Paid = true
			paidAt := now
			p.PaidAt = &paidAt
			p.UpdatedAt = now
			out = append(out, p)
		}
	}
	return out, nil
}

// ─── assistance ──────────────────────────────────────────────────────────────

type fakeAssistanceRepo struct {
	logs map[string]*assistance.Log
}

func newFakeAssistanceRepo() *fakeAssistanceRepo {
	return &fakeAssistanceRepo{logs: make(map[string]*assistance.Log)}
}

func (r *fakeAssistanceRepo) Create(_ context.Context, l *assistance.Log) error {
	copied := *l
	r.logs[l.ID] = &copied
	return nil
}

func (r *fakeAssistanceRepo) GetByID(_ context.Context, id string) (*assistance.Log, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, assistance.ErrLogNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeAssistanceRepo) SaveAnswer(_ context.Context, l *assistance.Log) error {
	if _, ok := r.logs[l.ID]; !ok {
		return assistance.ErrLogNotFound
	}
	copied := *l
	r.logs[l.ID] = &copied
	return nil
}

func (r *fakeAssistanceRepo) ListByUser(_ context.Context, userID string) ([]*assistance.Log, error) {
	var out []*assistance.Log
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeAssistanceRepo) ListUnanswered(_ context.Context) ([]*assistance.Log, error) {
	var out []*assistance.Log
	for _, l := range r.logs {
		if !l.Answered {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeAssistanceRepo) CountRecentByUser(_ context.Context, userID string, since time.Time) (int, error) {
	n := 0
	for _, l := range r.logs {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeLimiter struct {
	allowed bool
}

func (l *fakeLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return l.allowed, nil
}

// ─── transactions ────────────────────────────────────────────────────────────

// nopTxManager runs the function directly; the fakes have no transactional
// state to manage.
type nopTxManager struct{}

func (nopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
