package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
)

var testConf = &core.Config{AppName: "Ratiba", Env: "TEST", TestMode: true}

// NewValidator returns a validator with every custom tag and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a logger that discards everything.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), testConf)
}

// NewObservedLogger returns a logger whose records can be inspected.
func NewObservedLogger() (core.Logger, *observer.ObservedLogs) {
	obs, logs := observer.New(zapcore.DebugLevel)
	return logsvc.NewRollbarLogger(zap.New(obs), testConf), logs
}

// PrepareDB opens a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateEntry(
	t *testing.T,
	repo schedule.Repository,
	className, teacherID, grade, section string,
	day schedule.Weekday,
	start, end string,
) schedule.Entry {
	t.Helper()
	e, err := repo.CreateEntry(context.Background(), schedule.NewEntry{
		ClassName:     className,
		TeacherID:     teacherID,
		GradeSections: []schedule.GradeSection{{Grade: grade, Section: section}},
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
	})
	if err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	return e
}

func CreateSubject(t *testing.T, repo roster.Repository, name string) roster.Subject {
	t.Helper()
	subj, err := repo.CreateSubject(context.Background(), roster.Subject{Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateTeacher(t *testing.T, repo roster.Repository, name, email string, subjectIDs ...string) roster.Teacher {
	t.Helper()
	teacher, err := repo.CreateTeacher(context.Background(), roster.Teacher{Name: name, Email: email, SubjectIDs: subjectIDs})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateStudent(t *testing.T, repo roster.Repository, name, grade, section string) roster.Student {
	t.Helper()
	student, err := repo.CreateStudent(context.Background(), roster.Student{Name: name, Grade: grade, Section: section})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

// Slot builds an editor slot.
func Slot(day schedule.Weekday, start, end string) schedule.Schedule {
	return schedule.Schedule{DayOfWeek: day, StartTime: start, EndTime: end}
}

// Cohort builds the editor state of one cohort.
func Cohort(grade, section, teacherID string, slots ...schedule.Schedule) schedule.GradeSectionSchedule {
	return schedule.GradeSectionSchedule{Grade: grade, Section: section, TeacherID: teacherID, Schedules: slots}
}
