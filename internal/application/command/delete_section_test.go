package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupath/edupath-core/internal/domain/course"
	"github.com/edupath/edupath-core/internal/domain/progress"
)

func TestDeleteSection_CascadesProgress(t *testing.T) {
	ctx := context.Background()
	courses := newFakeCourseRepo(
		&course.Section{ID: "sec1", CourseID: "course1"},
		&course.Section{ID: "sec2", CourseID: "course1"},
	)
	rows := newFakeProgressRepo()
	_, err := rows.Upsert(ctx, "user1", "sec1", true, false)
	require.NoError(t, err)
	_, err = rows.Upsert(ctx, "user2", "sec1", false, false)
	require.NoError(t, err)
	_, err = rows.Upsert(ctx, "user1", "sec2", false, true)
	require.NoError(t, err)

	h := NewDeleteSectionHandler(courses, rows, nopTxManager{})
	require.NoError(t, h.Handle(ctx, DeleteSectionCommand{SectionID: "sec1"}))

	// The section and every progress row pointing at it are gone.
	_, err = courses.GetSectionByID(ctx, "sec1")
	assert.ErrorIs(t, err, course.ErrSectionNotFound)
	_, err = rows.GetByUserAndSection(ctx, "user1", "sec1")
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
	_, err = rows.GetByUserAndSection(ctx, "user2", "sec1")
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)

	// Other sections keep their progress.
	_, err = rows.GetByUserAndSection(ctx, "user1", "sec2")
	assert.NoError(t, err)
}

func TestDeleteSection_UnknownSection(t *testing.T) {
	h := NewDeleteSectionHandler(newFakeCourseRepo(), newFakeProgressRepo(), nopTxManager{})

	err := h.Handle(context.Background(), DeleteSectionCommand{SectionID: "ghost"})
	assert.ErrorIs(t, err, course.ErrSectionNotFound)
}
