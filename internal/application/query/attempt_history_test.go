package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/quiz"
)

func completedAttempt(id, userID string, score float64, startedAt time.Time) *quiz.Attempt {
	completedAt := startedAt.Add(5 * time.Minute)
	return &quiz.Attempt{
		ID:             id,
		UserID:         userID,
		QuizID:         "quiz1",
		StartedAt:      startedAt,
		CompletedAt:    &completedAt,
		Score:          &score,
		TotalQuestions: 10,
	}
}

func TestGetAttemptHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 80, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 50, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 90, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Len(t, result.Attempts, 3)
	assert.Equal(t, 1, result.LowScoreCount)
	assert.False(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_ConsecutiveLowScores(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 40, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 55, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 30, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.LowScoreCount)
	assert.True(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_WindowMustBeFull(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 10, base.Add(time.Hour)),
		completedAttempt("a2", "user1", 20, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	// Two low scores are not three: the signal stays off.
	assert.Equal(t, 2, result.LowScoreCount)
	assert.False(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_ScoreOfSixtyIsNotLow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 60, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 59.9, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 10, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.LowScoreCount)
	assert.False(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_CustomLowScoreWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 40, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 55, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 90, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)

	// Two trailing lows trip a window of two but not the default of three.
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1", LowScoreWindow: 2})
	require.NoError(t, err)
	assert.True(t, result.ConsecutiveLowScores)

	result, err = h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1"})
	require.NoError(t, err)
	assert.False(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_WideWindowNeedsThatManyAttempts(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 10, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 20, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 30, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1", LowScoreWindow: 4})
	require.NoError(t, err)

	assert.False(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_WindowWiderThanLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	attempts := &stubAttemptRepo{attempts: []*quiz.Attempt{
		completedAttempt("a1", "user1", 10, base.Add(2*time.Hour)),
		completedAttempt("a2", "user1", 20, base.Add(time.Hour)),
		completedAttempt("a3", "user1", 30, base),
	}}

	h := NewGetAttemptHistoryHandler(attempts)
	result, err := h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1", Limit: 1, LowScoreWindow: 3})
	require.NoError(t, err)

	// The list honors the limit while the signal still sees the full window.
	assert.Len(t, result.Attempts, 1)
	assert.True(t, result.ConsecutiveLowScores)
}

func TestGetAttemptHistory_Validation(t *testing.T) {
	h := NewGetAttemptHistoryHandler(&stubAttemptRepo{})

	_, err := h.Handle(context.Background(), GetAttemptHistoryQuery{})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1", Limit: -1})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetAttemptHistoryQuery{UserID: "user1", LowScoreWindow: -1})
	assert.Error(t, err)
}

func TestGetAverageScore(t *testing.T) {
	h := NewGetAverageScoreHandler(&stubAttemptRepo{average: 72.5})

	avg, err := h.Handle(context.Background(), GetAverageScoreQuery{
		Category: "category_1",
		Level:    "level_1",
	})
	require.NoError(t, err)
	assert.Equal(t, 72.5, avg)
}

func TestGetAverageScore_RejectsUnknownEnums(t *testing.T) {
	h := NewGetAverageScoreHandler(&stubAttemptRepo{})

	_, err := h.Handle(context.Background(), GetAverageScoreQuery{Category: "math", Level: "level_1"})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetAverageScoreQuery{Category: "category_1", Level: "hard"})
	assert.Error(t, err)
}
