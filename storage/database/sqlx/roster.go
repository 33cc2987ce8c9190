package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
)

type (
	teacherRow struct {
		ID    string      `db:"id"`
		Name  string      `db:"name"`
		Email null.String `db:"email"`
	}

	teacherSubjectRow struct {
		TeacherID string `db:"teacher_id"`
		SubjectID string `db:"subject_id"`
	}

	studentRow struct {
		ID      string      `db:"id"`
		Name    string      `db:"name"`
		Grade   string      `db:"grade"`
		Section null.String `db:"section"`
	}

	rosterRepository struct {
		db core.DB
	}
)

var _ roster.Repository = (*rosterRepository)(nil)

func (r teacherRow) teacher(subjectIDs []string) roster.Teacher {
	if subjectIDs == nil {
		subjectIDs = []string{}
	}
	return roster.Teacher{ID: r.ID, Name: r.Name, Email: r.Email.String, SubjectIDs: subjectIDs}
}

func (r studentRow) student() roster.Student {
	return roster.Student{ID: r.ID, Name: r.Name, Grade: r.Grade, Section: r.Section.String}
}

func studentsFromRows(rows []studentRow) []roster.Student {
	students := make([]roster.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students
}

func NewRosterRepository(db core.DB) roster.Repository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) CreateSubject(ctx context.Context, subj roster.Subject) (roster.Subject, error) {
	subj.ID = uuid.NewString()
	q := repo.db.Rebind("INSERT INTO subjects (id, name) VALUES (?, ?)")
	if _, err := repo.db.ExecContext(ctx, q, subj.ID, subj.Name); err != nil {
		return roster.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo *rosterRepository) GetSubject(ctx context.Context, id string) (roster.Subject, error) {
	var subj roster.Subject
	q := repo.db.Rebind("SELECT id, name FROM subjects WHERE id = ?")
	if err := repo.db.GetContext(ctx, &subj, q, id); err != nil {
		if err == sql.ErrNoRows {
			return roster.Subject{}, roster.ErrSubjectNotFound
		}
		return roster.Subject{}, errors.Wrap(err, "getting subject")
	}
	return subj, nil
}

func (repo *rosterRepository) QuerySubjects(ctx context.Context) ([]roster.Subject, error) {
	subjects := make([]roster.Subject, 0)
	if err := repo.db.SelectContext(ctx, &subjects, "SELECT id, name FROM subjects ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo *rosterRepository) CreateTeacher(ctx context.Context, teacher roster.Teacher) (roster.Teacher, error) {
	teacher.ID = uuid.NewString()
	teacher.SubjectIDs = core.UniqueStrings(teacher.SubjectIDs...)

	err := withTx(ctx, repo.db, func(tx core.DBExecutor) error {
		q := tx.Rebind("INSERT INTO teachers (id, name, email) VALUES (?, ?, ?)")
		if _, err := tx.ExecContext(ctx, q, teacher.ID, teacher.Name, null.NewString(teacher.Email, teacher.Email != "")); err != nil {
			return errors.Wrap(err, "inserting teacher")
		}
		q = tx.Rebind("INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES (?, ?)")
		for _, sid := range teacher.SubjectIDs {
			if _, err := tx.ExecContext(ctx, q, teacher.ID, sid); err != nil {
				return errors.Wrap(err, "linking teacher subject")
			}
		}
		return nil
	})
	if err != nil {
		return roster.Teacher{}, err
	}
	return teacher, nil
}

func (repo *rosterRepository) teacherSubjects(ctx context.Context, ids []string) (map[string][]string, error) {
	links := make(map[string][]string)
	if len(ids) == 0 {
		return links, nil
	}
	q, args, err := sqlx.In("SELECT teacher_id, subject_id FROM teacher_subjects WHERE teacher_id IN (?) ORDER BY teacher_id, subject_id", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building teacher subjects query")
	}
	var rows []teacherSubjectRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting teacher subjects")
	}
	for _, row := range rows {
		links[row.TeacherID] = append(links[row.TeacherID], row.SubjectID)
	}
	return links, nil
}

func (repo *rosterRepository) teachers(ctx context.Context, rows []teacherRow) ([]roster.Teacher, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	links, err := repo.teacherSubjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	teachers := make([]roster.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.teacher(links[row.ID]))
	}
	return teachers, nil
}

func (repo *rosterRepository) GetTeacher(ctx context.Context, id string) (roster.Teacher, error) {
	var row teacherRow
	q := repo.db.Rebind("SELECT id, name, email FROM teachers WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return roster.Teacher{}, roster.ErrTeacherNotFound
		}
		return roster.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	teachers, err := repo.teachers(ctx, []teacherRow{row})
	if err != nil {
		return roster.Teacher{}, err
	}
	return teachers[0], nil
}

func (repo *rosterRepository) QueryTeachers(ctx context.Context) ([]roster.Teacher, error) {
	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name, email FROM teachers ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return repo.teachers(ctx, rows)
}

func (repo *rosterRepository) FilterTeachersBySubject(ctx context.Context, subjectID string) ([]roster.Teacher, error) {
	var rows []teacherRow
	q := repo.db.Rebind(`
		SELECT t.id, t.name, t.email FROM teachers t
		JOIN teacher_subjects ts ON ts.teacher_id = t.id
		WHERE ts.subject_id = ?
		ORDER BY t.name, t.id`)
	if err := repo.db.SelectContext(ctx, &rows, q, subjectID); err != nil {
		return nil, errors.Wrap(err, "filtering teachers")
	}
	return repo.teachers(ctx, rows)
}

func (repo *rosterRepository) CreateStudent(ctx context.Context, student roster.Student) (roster.Student, error) {
	student.ID = uuid.NewString()
	q := repo.db.Rebind("INSERT INTO students (id, name, grade, section) VALUES (?, ?, ?, ?)")
	section := null.NewString(student.Section, student.Section != "")
	if _, err := repo.db.ExecContext(ctx, q, student.ID, student.Name, student.Grade, section); err != nil {
		return roster.Student{}, errors.Wrap(err, "inserting student")
	}
	return student, nil
}

func (repo *rosterRepository) GetStudentsByID(ctx context.Context, ids ...string) ([]roster.Student, error) {
	if len(ids) == 0 {
		return []roster.Student{}, nil
	}
	q, args, err := sqlx.In("SELECT id, name, grade, section FROM students WHERE id IN (?) ORDER BY name, id", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return studentsFromRows(rows), nil
}

func (repo *rosterRepository) FilterStudentsByCohort(ctx context.Context, grade, section string) ([]roster.Student, error) {
	var rows []studentRow
	q := repo.db.Rebind("SELECT id, name, grade, section FROM students WHERE grade = ? AND COALESCE(section, '') = ? ORDER BY name, id")
	if err := repo.db.SelectContext(ctx, &rows, q, grade, section); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return studentsFromRows(rows), nil
}
