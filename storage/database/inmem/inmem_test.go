package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/tests"
)

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewScheduleRepository(db)

	e1 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "A", schedule.Monday, "09:00", "10:00")
	e2 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "B", schedule.Monday, "10:00", "11:00")

	t.Run("returned entries are copies", func(t *testing.T) {
		entries, err := repo.QueryEntries(ctx)
		require.NoError(t, err)
		entries[0].GradeSections[0].Grade = "9"

		got, err := repo.GetEntry(ctx, e1.ID)
		require.NoError(t, err)
		assert.Equal(t, "5", got.GradeSection().Grade)
	})

	t.Run("update", func(t *testing.T) {
		name := "Algebra"
		got, err := repo.UpdateEntry(ctx, e2.ID, schedule.EntryPatch{ClassName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Algebra", got.ClassName)

		_, err = repo.UpdateEntry(ctx, "nope", schedule.EntryPatch{ClassName: &name})
		assert.Equal(t, schedule.ErrNotFound, err)
	})

	t.Run("students", func(t *testing.T) {
		require.NoError(t, SetStudents(db, e1.ID, "s1"))
		got, err := repo.GetEntry(ctx, e1.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, got.StudentIDs)
	})

	t.Run("delete keeps order", func(t *testing.T) {
		e3 := testutil.CreateEntry(t, repo, "Art", "t2", "6", "A", schedule.Friday, "08:00", "09:00")
		require.NoError(t, repo.DeleteEntry(ctx, e1.ID))
		assert.Equal(t, schedule.ErrNotFound, repo.DeleteEntry(ctx, e1.ID))

		entries, err := repo.QueryEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, e2.ID, entries[0].ID)
		assert.Equal(t, e3.ID, entries[1].ID)
	})
}

func TestRosterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRosterRepository(Open())

	math := testutil.CreateSubject(t, repo, "Math")
	ada := testutil.CreateTeacher(t, repo, "Ada", "", math.ID)
	testutil.CreateTeacher(t, repo, "Bob", "")
	s1 := testutil.CreateStudent(t, repo, "Zoe", "5", "A")
	testutil.CreateStudent(t, repo, "Kim", "5", "B")

	teachers, err := repo.FilterTeachersBySubject(ctx, math.ID)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, ada.ID, teachers[0].ID)

	_, err = repo.GetSubject(ctx, "nope")
	assert.Equal(t, roster.ErrSubjectNotFound, err)
	_, err = repo.GetTeacher(ctx, "nope")
	assert.Equal(t, roster.ErrTeacherNotFound, err)

	students, err := repo.FilterStudentsByCohort(ctx, "5", "A")
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{s1}, students)

	students, err = repo.GetStudentsByID(ctx, s1.ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{s1}, students)
}
