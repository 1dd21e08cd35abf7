package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/progress"
)

func TestGetProgressOverview(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := &stubProgressRepo{rows: []*progress.SectionProgress{
		{UserID: "user1", SectionID: "s1", Completed: true, UpdatedAt: now.AddDate(0, 0, -30)},
		{UserID: "user1", SectionID: "s2", Completed: false, RepeatCount: 2, UpdatedAt: now.AddDate(0, 0, -10)},
		{UserID: "user1", SectionID: "s3", Completed: false, UpdatedAt: now.AddDate(0, 0, -1)},
		{UserID: "other", SectionID: "s4", Completed: false, UpdatedAt: now.AddDate(0, 0, -10)},
	}}

	h := NewGetProgressOverviewHandler(rows)
	h.now = func() time.Time { return now }

	result, err := h.Handle(context.Background(), GetProgressOverviewQuery{UserID: "user1"})
	require.NoError(t, err)

	assert.Len(t, result.Sections, 3)
	assert.Equal(t, 1, result.CompletedCount)

	// Only s2 is stagnant: s1 is completed, s3 was touched yesterday.
	assert.Equal(t, 1, result.StagnantCount)
	for _, s := range result.Sections {
		switch s.SectionID {
		case "s2":
			assert.True(t, s.Stagnant)
			assert.Equal(t, 2, s.RepeatCount)
		default:
			assert.False(t, s.Stagnant)
		}
	}
}

func TestGetProgressOverview_CustomThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := &stubProgressRepo{rows: []*progress.SectionProgress{
		{UserID: "user1", SectionID: "s1", Completed: false, UpdatedAt: now.AddDate(0, 0, -3)},
	}}

	h := NewGetProgressOverviewHandler(rows)
	h.now = func() time.Time { return now }

	// Under the default 7-day threshold the row is fresh.
	result, err := h.Handle(context.Background(), GetProgressOverviewQuery{UserID: "user1"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.StagnantCount)

	// A tighter 2-day threshold flags it.
	result, err = h.Handle(context.Background(), GetProgressOverviewQuery{
		UserID:            "user1",
		StagnantAfterDays: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.StagnantCount)
}

func TestGetProgressOverview_Validation(t *testing.T) {
	h := NewGetProgressOverviewHandler(&stubProgressRepo{})

	_, err := h.Handle(context.Background(), GetProgressOverviewQuery{})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetProgressOverviewQuery{UserID: "user1", StagnantAfterDays: -1})
	assert.Error(t, err)
}
