package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/roster"
)

type rosterRepository struct {
	db *rosterTables
}

var _ roster.Repository = (*rosterRepository)(nil)

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db.roster}
}

func copyTeacher(t roster.Teacher) roster.Teacher {
	t.SubjectIDs = append([]string{}, t.SubjectIDs...)
	return t
}

func (repo *rosterRepository) CreateSubject(ctx context.Context, subj roster.Subject) (roster.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	subj.ID = uuid.NewString()
	repo.db.subjects = append(repo.db.subjects, subj)
	return subj, nil
}

func (repo *rosterRepository) GetSubject(ctx context.Context, id string) (roster.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, subj := range repo.db.subjects {
		if subj.ID == id {
			return subj, nil
		}
	}
	return roster.Subject{}, roster.ErrSubjectNotFound
}

func (repo *rosterRepository) QuerySubjects(ctx context.Context) ([]roster.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]roster.Subject{}, repo.db.subjects...), nil
}

func (repo *rosterRepository) CreateTeacher(ctx context.Context, teacher roster.Teacher) (roster.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	teacher.ID = uuid.NewString()
	teacher = copyTeacher(teacher)
	repo.db.teachers = append(repo.db.teachers, teacher)
	return copyTeacher(teacher), nil
}

func (repo *rosterRepository) GetTeacher(ctx context.Context, id string) (roster.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.teachers {
		if t.ID == id {
			return copyTeacher(t), nil
		}
	}
	return roster.Teacher{}, roster.ErrTeacherNotFound
}

func (repo *rosterRepository) QueryTeachers(ctx context.Context) ([]roster.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]roster.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, copyTeacher(t))
	}
	return teachers, nil
}

func (repo *rosterRepository) FilterTeachersBySubject(ctx context.Context, subjectID string) ([]roster.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]roster.Teacher, 0)
	for _, t := range repo.db.teachers {
		if t.Teaches(subjectID) {
			teachers = append(teachers, copyTeacher(t))
		}
	}
	return teachers, nil
}

func (repo *rosterRepository) CreateStudent(ctx context.Context, student roster.Student) (roster.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	student.ID = uuid.NewString()
	repo.db.students = append(repo.db.students, student)
	return student, nil
}

func (repo *rosterRepository) GetStudentsByID(ctx context.Context, ids ...string) ([]roster.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	students := make([]roster.Student, 0, len(ids))
	for _, s := range repo.db.students {
		if _, ok := wanted[s.ID]; ok {
			students = append(students, s)
		}
	}
	return students, nil
}

func (repo *rosterRepository) FilterStudentsByCohort(ctx context.Context, grade, section string) ([]roster.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]roster.Student, 0)
	for _, s := range repo.db.students {
		if s.Grade == grade && s.Section == section {
			students = append(students, s)
		}
	}
	return students, nil
}
