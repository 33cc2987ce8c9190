package roster

import (
	"context"
	"errors"
	"sort"
)

var (
	// errors
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTeacherNotFound = errors.New("teacher not found")
)

type (
	// Repository stores the people and subjects the timetable refers to.
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)

		CreateTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		// FilterTeachersBySubject returns the teachers eligible to teach the subject.
		FilterTeachersBySubject(ctx context.Context, subjectID string) ([]Teacher, error)

		CreateStudent(ctx context.Context, student Student) (Student, error)
		GetStudentsByID(ctx context.Context, ids ...string) ([]Student, error)
		FilterStudentsByCohort(ctx context.Context, grade, section string) ([]Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{Name: ns.Name})
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	for _, id := range nt.SubjectIDs {
		if _, err := svc.repo.GetSubject(ctx, id); err != nil {
			return Teacher{}, err
		}
	}
	return svc.repo.CreateTeacher(ctx, Teacher{Name: nt.Name, Email: nt.Email, SubjectIDs: nt.SubjectIDs})
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{Name: ns.Name, Grade: ns.Grade, Section: ns.Section})
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx)
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

// TeachersEligibleForSubject returns ErrSubjectNotFound for an unknown subject.
func (svc *Service) TeachersEligibleForSubject(ctx context.Context, subjectID string) ([]Teacher, error) {
	if _, err := svc.repo.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	teachers, err := svc.repo.FilterTeachersBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers, nil
}

// TeacherNames maps teacher ids to display names.
func (svc *Service) TeacherNames(ctx context.Context) (map[string]string, error) {
	teachers, err := svc.repo.QueryTeachers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}
	return names, nil
}

// StudentsByID ignores unknown ids.
func (svc *Service) StudentsByID(ctx context.Context, ids ...string) ([]Student, error) {
	if len(ids) == 0 {
		return []Student{}, nil
	}
	return svc.repo.GetStudentsByID(ctx, ids...)
}

func (svc *Service) StudentsInCohort(ctx context.Context, grade, section string) ([]Student, error) {
	return svc.repo.FilterStudentsByCohort(ctx, grade, section)
}
