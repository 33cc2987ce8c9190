package sqlxrepos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/tests"
)

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := NewScheduleRepository(db)

	e1 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "A", schedule.Monday, "09:00", "10:00")
	e2 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "B", schedule.Monday, "10:00", "11:00")
	e3 := testutil.CreateEntry(t, repo, "Art", "t2", "6", "A", schedule.Friday, "08:00", "09:00")

	t.Run("query keeps creation order", func(t *testing.T) {
		entries, err := repo.QueryEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{e1.ID, e2.ID, e3.ID}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
		assert.Equal(t, []schedule.GradeSection{{Grade: "5", Section: "B"}}, entries[1].GradeSections)
		assert.Equal(t, schedule.Monday, entries[1].DayOfWeek)
	})

	t.Run("create requires one cohort", func(t *testing.T) {
		_, err := repo.CreateEntry(ctx, schedule.NewEntry{ClassName: "x", TeacherID: "t", DayOfWeek: schedule.Monday, StartTime: "08:00", EndTime: "09:00"})
		assert.Error(t, err)
	})

	t.Run("update class name", func(t *testing.T) {
		name := "Algebra"
		got, err := repo.UpdateEntry(ctx, e1.ID, schedule.EntryPatch{ClassName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Algebra", got.ClassName)
		assert.Equal(t, e1.StartTime, got.StartTime)
	})

	t.Run("update unknown", func(t *testing.T) {
		name := "x"
		_, err := repo.UpdateEntry(ctx, "nope", schedule.EntryPatch{ClassName: &name})
		assert.Equal(t, schedule.ErrNotFound, err)
	})

	t.Run("students", func(t *testing.T) {
		require.NoError(t, SetStudents(ctx, db, e2.ID, "s2", "s1", "s1"))
		got, err := repo.GetEntry(ctx, e2.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "s2"}, got.StudentIDs)

		assert.Equal(t, schedule.ErrNotFound, SetStudents(ctx, db, "nope", "s1"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteEntry(ctx, e2.ID))
		_, err := repo.GetEntry(ctx, e2.ID)
		assert.Equal(t, schedule.ErrNotFound, err)
		assert.Equal(t, schedule.ErrNotFound, repo.DeleteEntry(ctx, e2.ID))

		entries, err := repo.QueryEntries(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("created after delete goes last", func(t *testing.T) {
		e4 := testutil.CreateEntry(t, repo, "Music", "t3", "5", "A", schedule.Monday, "13:00", "14:00")
		entries, err := repo.QueryEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, e4.ID, entries[len(entries)-1].ID)
	})
}
