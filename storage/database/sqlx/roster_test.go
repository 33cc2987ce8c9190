package sqlxrepos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/tests"
)

func TestRosterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRosterRepository(testutil.PrepareDB(t))

	math := testutil.CreateSubject(t, repo, "Math")
	art := testutil.CreateSubject(t, repo, "Art")
	ada := testutil.CreateTeacher(t, repo, "Ada", "ada@ratiba.test", math.ID, art.ID)
	bob := testutil.CreateTeacher(t, repo, "Bob", "", art.ID)
	s1 := testutil.CreateStudent(t, repo, "Zoe", "5", "A")
	s2 := testutil.CreateStudent(t, repo, "Al", "5", "A")
	testutil.CreateStudent(t, repo, "Kim", "5", "B")
	s4 := testutil.CreateStudent(t, repo, "Lee", "6", "")

	t.Run("subjects", func(t *testing.T) {
		got, err := repo.GetSubject(ctx, math.ID)
		require.NoError(t, err)
		assert.Equal(t, math, got)

		_, err = repo.GetSubject(ctx, "nope")
		assert.Equal(t, roster.ErrSubjectNotFound, err)

		all, err := repo.QuerySubjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, []roster.Subject{art, math}, all)
	})

	t.Run("teachers", func(t *testing.T) {
		got, err := repo.GetTeacher(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@ratiba.test", got.Email)
		assert.ElementsMatch(t, []string{math.ID, art.ID}, got.SubjectIDs)

		got, err = repo.GetTeacher(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "", got.Email)

		_, err = repo.GetTeacher(ctx, "nope")
		assert.Equal(t, roster.ErrTeacherNotFound, err)
	})

	t.Run("teachers by subject", func(t *testing.T) {
		tests := []struct {
			name      string
			subjectID string
			want      []string
		}{
			{name: "one", subjectID: math.ID, want: []string{"Ada"}},
			{name: "two", subjectID: art.ID, want: []string{"Ada", "Bob"}},
			{name: "none", subjectID: "nope", want: []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				teachers, err := repo.FilterTeachersBySubject(ctx, tt.subjectID)
				require.NoError(t, err)
				names := make([]string, 0)
				for _, teacher := range teachers {
					names = append(names, teacher.Name)
				}
				assert.Equal(t, tt.want, names)
			})
		}
	})

	t.Run("students", func(t *testing.T) {
		got, err := repo.GetStudentsByID(ctx, s1.ID, s4.ID, "nope")
		require.NoError(t, err)
		assert.Equal(t, []roster.Student{s4, s1}, got)

		got, err = repo.FilterStudentsByCohort(ctx, "5", "A")
		require.NoError(t, err)
		assert.Equal(t, []roster.Student{s2, s1}, got)

		got, err = repo.FilterStudentsByCohort(ctx, "6", "")
		require.NoError(t, err)
		assert.Equal(t, []roster.Student{s4}, got)
	})
}
