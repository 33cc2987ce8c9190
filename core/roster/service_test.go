package roster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/tests"
)

func TestService_TeachersEligibleForSubject(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewRosterRepository(inmemdb.Open())
	svc := roster.NewService(repo)

	math := testutil.CreateSubject(t, repo, "Math")
	art := testutil.CreateSubject(t, repo, "Art")
	zed := testutil.CreateTeacher(t, repo, "Zed", "", math.ID)
	ada := testutil.CreateTeacher(t, repo, "Ada", "", math.ID, art.ID)
	testutil.CreateTeacher(t, repo, "Bob", "", art.ID)

	tests := []struct {
		name      string
		subjectID string
		want      []roster.Teacher
		wantErr   error
	}{
		{name: "sorted by name", subjectID: math.ID, want: []roster.Teacher{ada, zed}},
		{name: "unknown subject", subjectID: "nope", wantErr: roster.ErrSubjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.TeachersEligibleForSubject(ctx, tt.subjectID)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CreateTeacher(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewRosterRepository(inmemdb.Open())
	svc := roster.NewService(repo)
	math := testutil.CreateSubject(t, repo, "Math")

	teacher, err := svc.CreateTeacher(ctx, roster.NewTeacher{Name: "Ada", SubjectIDs: []string{math.ID}})
	require.NoError(t, err)
	assert.True(t, teacher.Teaches(math.ID))

	_, err = svc.CreateTeacher(ctx, roster.NewTeacher{Name: "Bob", SubjectIDs: []string{"nope"}})
	assert.Equal(t, roster.ErrSubjectNotFound, err)

	names, err := svc.TeacherNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{teacher.ID: "Ada"}, names)
}

func TestService_students(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewRosterRepository(inmemdb.Open())
	svc := roster.NewService(repo)
	zoe := testutil.CreateStudent(t, repo, "Zoe", "5", "A")
	kim := testutil.CreateStudent(t, repo, "Kim", "5", "B")

	got, err := svc.StudentsInCohort(ctx, "5", "A")
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{zoe}, got)

	got, err = svc.StudentsByID(ctx, kim.ID, "nope")
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{kim}, got)

	got, err = svc.StudentsByID(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewTeacher_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name    string
		nt      roster.NewTeacher
		wantErr bool
	}{
		{name: "valid", nt: roster.NewTeacher{Name: " Ada ", Email: "ADA@ratiba.test"}},
		{name: "missing name", nt: roster.NewTeacher{Name: "  "}, wantErr: true},
		{name: "bad email", nt: roster.NewTeacher{Name: "Ada", Email: "ada"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nt.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ada", tt.nt.Name)
			assert.Equal(t, "ada@ratiba.test", tt.nt.Email)
		})
	}
}
