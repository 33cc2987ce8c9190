package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

const entryColumns = "id, seq, class_name, teacher_id, grade, section, day_of_week, start_time, end_time"

type (
	entryRow struct {
		ID        string `db:"id"`
		Seq       int64  `db:"seq"`
		ClassName string `db:"class_name"`
		TeacherID string `db:"teacher_id"`
		Grade     string `db:"grade"`
		Section   string `db:"section"`
		DayOfWeek string `db:"day_of_week"`
		StartTime string `db:"start_time"`
		EndTime   string `db:"end_time"`
	}

	enrollmentRow struct {
		EntryID   string `db:"entry_id"`
		StudentID string `db:"student_id"`
	}

	scheduleRepository struct {
		db core.DB
	}
)

var _ schedule.Repository = (*scheduleRepository)(nil)

func (r entryRow) entry(studentIDs []string) schedule.Entry {
	if studentIDs == nil {
		studentIDs = []string{}
	}
	return schedule.Entry{
		ID:            r.ID,
		ClassName:     r.ClassName,
		TeacherID:     r.TeacherID,
		GradeSections: []schedule.GradeSection{{Grade: r.Grade, Section: r.Section}},
		DayOfWeek:     schedule.Weekday(r.DayOfWeek),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		StudentIDs:    studentIDs,
	}
}

// NewScheduleRepository stores one row per entry. Entries are returned in creation order.
func NewScheduleRepository(db core.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) enrollments(ctx context.Context, ids ...string) (map[string][]string, error) {
	var rows []enrollmentRow
	q := "SELECT entry_id, student_id FROM schedule_entry_students ORDER BY entry_id, student_id"
	args := []interface{}{}
	if len(ids) > 0 {
		var err error
		q, args, err = sqlx.In("SELECT entry_id, student_id FROM schedule_entry_students WHERE entry_id IN (?) ORDER BY entry_id, student_id", ids)
		if err != nil {
			return nil, errors.Wrap(err, "building enrollment query")
		}
	}
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}

	students := make(map[string][]string)
	for _, row := range rows {
		students[row.EntryID] = append(students[row.EntryID], row.StudentID)
	}
	return students, nil
}

func (repo *scheduleRepository) QueryEntries(ctx context.Context) ([]schedule.Entry, error) {
	var rows []entryRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+entryColumns+" FROM schedule_entries ORDER BY seq, id"); err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}
	students, err := repo.enrollments(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]schedule.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry(students[row.ID]))
	}
	return entries, nil
}

func (repo *scheduleRepository) GetEntry(ctx context.Context, id string) (schedule.Entry, error) {
	var row entryRow
	q := repo.db.Rebind("SELECT " + entryColumns + " FROM schedule_entries WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Entry{}, schedule.ErrNotFound
		}
		return schedule.Entry{}, errors.Wrap(err, "getting entry")
	}
	students, err := repo.enrollments(ctx, id)
	if err != nil {
		return schedule.Entry{}, err
	}
	return row.entry(students[id]), nil
}

func (repo *scheduleRepository) CreateEntry(ctx context.Context, ne schedule.NewEntry) (schedule.Entry, error) {
	if len(ne.GradeSections) != 1 {
		return schedule.Entry{}, errors.Errorf("entry must target exactly one grade/section, got %d", len(ne.GradeSections))
	}
	gs := ne.GradeSections[0]
	row := entryRow{
		ID:        uuid.NewString(),
		ClassName: ne.ClassName,
		TeacherID: ne.TeacherID,
		Grade:     gs.Grade,
		Section:   gs.Section,
		DayOfWeek: string(ne.DayOfWeek),
		StartTime: ne.StartTime,
		EndTime:   ne.EndTime,
	}

	err := withTx(ctx, repo.db, func(tx core.DBExecutor) error {
		if err := tx.GetContext(ctx, &row.Seq, "SELECT COALESCE(MAX(seq), 0) + 1 FROM schedule_entries"); err != nil {
			return errors.Wrap(err, "next entry seq")
		}
		q := tx.Rebind("INSERT INTO schedule_entries (" + entryColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
		_, err := tx.ExecContext(ctx, q,
			row.ID, row.Seq, row.ClassName, row.TeacherID, row.Grade, row.Section, row.DayOfWeek, row.StartTime, row.EndTime)
		return errors.Wrap(err, "inserting entry")
	})
	if err != nil {
		return schedule.Entry{}, err
	}
	return row.entry(nil), nil
}

func (repo *scheduleRepository) UpdateEntry(ctx context.Context, id string, patch schedule.EntryPatch) (schedule.Entry, error) {
	if patch.ClassName != nil {
		res, err := repo.db.ExecContext(ctx, repo.db.Rebind("UPDATE schedule_entries SET class_name = ? WHERE id = ?"), *patch.ClassName, id)
		if err != nil {
			return schedule.Entry{}, errors.Wrap(err, "updating entry")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return schedule.Entry{}, schedule.ErrNotFound
		}
	}
	return repo.GetEntry(ctx, id)
}

func (repo *scheduleRepository) DeleteEntry(ctx context.Context, id string) error {
	return withTx(ctx, repo.db, func(tx core.DBExecutor) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM schedule_entry_students WHERE entry_id = ?"), id); err != nil {
			return errors.Wrap(err, "deleting enrollments")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM schedule_entries WHERE id = ?"), id)
		if err != nil {
			return errors.Wrap(err, "deleting entry")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "deleting entry")
		}
		if n == 0 {
			return schedule.ErrNotFound
		}
		return nil
	})
}

// SetStudents replaces the students enrolled in an entry. Enrollment is managed outside the scheduler.
func SetStudents(ctx context.Context, db core.DB, entryID string, studentIDs ...string) error {
	return withTx(ctx, db, func(tx core.DBExecutor) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM schedule_entries WHERE id = ?"), entryID); err != nil {
			return errors.Wrap(err, "checking entry")
		}
		if exists == 0 {
			return schedule.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM schedule_entry_students WHERE entry_id = ?"), entryID); err != nil {
			return errors.Wrap(err, "clearing enrollments")
		}
		q := tx.Rebind("INSERT INTO schedule_entry_students (entry_id, student_id) VALUES (?, ?)")
		for _, sid := range core.UniqueStrings(studentIDs...) {
			if _, err := tx.ExecContext(ctx, q, entryID, sid); err != nil {
				return errors.Wrap(err, "enrolling student")
			}
		}
		return nil
	})
}
