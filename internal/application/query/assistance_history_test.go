package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/assistance"
)

func assistanceLog(id, userID string, createdAt time.Time) *assistance.Log {
	return &assistance.Log{
		ID:             id,
		UserID:         userID,
		Question:       "what is a derivative?",
		KnowledgePoint: "calculus",
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestGetAssistanceHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := &stubAssistanceRepo{logs: []*assistance.Log{
		assistanceLog("q1", "user1", now.Add(-10*time.Minute)),
		assistanceLog("q2", "user1", now.Add(-50*time.Minute)),
		assistanceLog("q3", "user1", now.Add(-3*time.Hour)),
		assistanceLog("q4", "user2", now.Add(-5*time.Minute)),
	}}

	h := NewGetAssistanceHistoryHandler(logs, 10)
	h.now = func() time.Time { return now }

	result, err := h.Handle(context.Background(), GetAssistanceHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 3)
	assert.Equal(t, 2, result.QuestionsPastHour)
	assert.Equal(t, 10, result.HourlyQuota)
	assert.Equal(t, 8, result.QuotaRemaining)
}

func TestGetAssistanceHistory_RemainingNeverNegative(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logs := &stubAssistanceRepo{logs: []*assistance.Log{
		assistanceLog("q1", "user1", now.Add(-time.Minute)),
		assistanceLog("q2", "user1", now.Add(-2*time.Minute)),
		assistanceLog("q3", "user1", now.Add(-3*time.Minute)),
	}}

	h := NewGetAssistanceHistoryHandler(logs, 2)
	h.now = func() time.Time { return now }

	result, err := h.Handle(context.Background(), GetAssistanceHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.QuestionsPastHour)
	assert.Equal(t, 0, result.QuotaRemaining)
}

func TestGetAssistanceHistory_EmptyLog(t *testing.T) {
	h := NewGetAssistanceHistoryHandler(&stubAssistanceRepo{}, 10)

	result, err := h.Handle(context.Background(), GetAssistanceHistoryQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Empty(t, result.Entries)
	assert.Equal(t, 0, result.QuestionsPastHour)
	assert.Equal(t, 10, result.QuotaRemaining)
}

func TestGetAssistanceHistory_Validation(t *testing.T) {
	h := NewGetAssistanceHistoryHandler(&stubAssistanceRepo{}, 10)

	_, err := h.Handle(context.Background(), GetAssistanceHistoryQuery{})
	assert.Error(t, err)
}
