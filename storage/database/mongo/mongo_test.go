package mongodb

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/tests"
)

// prepareDB connects to TEST_MONGO_URI and uses a throwaway database.
func prepareDB(t *testing.T) *mongo.Database {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	conf := &core.Config{Mongo: core.MongoConfig{URI: uri, Database: "ratiba_test_" + uuid.NewString()[:8]}}
	db, err := Open(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = Close(context.Background(), db)
	})
	return db
}

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	db := prepareDB(t)
	repo := NewScheduleRepository(db)

	e1 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "A", schedule.Monday, "09:00", "10:00")
	e2 := testutil.CreateEntry(t, repo, "Math", "t1", "5", "B", schedule.Monday, "10:00", "11:00")

	entries, err := repo.QueryEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e1.ID, entries[0].ID)
	assert.Equal(t, e2.ID, entries[1].ID)

	name := "Algebra"
	got, err := repo.UpdateEntry(ctx, e1.ID, schedule.EntryPatch{ClassName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", got.ClassName)

	require.NoError(t, SetStudents(ctx, db, e2.ID, "s1"))
	got, err = repo.GetEntry(ctx, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, got.StudentIDs)

	require.NoError(t, repo.DeleteEntry(ctx, e1.ID))
	assert.Equal(t, schedule.ErrNotFound, repo.DeleteEntry(ctx, e1.ID))
	_, err = repo.GetEntry(ctx, e1.ID)
	assert.Equal(t, schedule.ErrNotFound, err)
}

func TestRosterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRosterRepository(prepareDB(t))

	math := testutil.CreateSubject(t, repo, "Math")
	ada := testutil.CreateTeacher(t, repo, "Ada", "ada@ratiba.test", math.ID)
	testutil.CreateTeacher(t, repo, "Bob", "")
	s1 := testutil.CreateStudent(t, repo, "Zoe", "5", "A")

	teachers, err := repo.FilterTeachersBySubject(ctx, math.ID)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, ada, teachers[0])

	_, err = repo.GetTeacher(ctx, "nope")
	assert.Equal(t, roster.ErrTeacherNotFound, err)

	students, err := repo.FilterStudentsByCohort(ctx, "5", "A")
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{s1}, students)
}
