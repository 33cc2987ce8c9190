package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/schedule"
)

type scheduleRepository struct {
	db *entryTable
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.entries}
}

func copyEntry(e schedule.Entry) schedule.Entry {
	e.GradeSections = append([]schedule.GradeSection(nil), e.GradeSections...)
	if e.StudentIDs != nil {
		e.StudentIDs = append([]string(nil), e.StudentIDs...)
	}
	return e
}

func (repo *scheduleRepository) QueryEntries(ctx context.Context) ([]schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]schedule.Entry, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		entries = append(entries, copyEntry(*repo.db.table[id]))
	}
	return entries, nil
}

func (repo *scheduleRepository) GetEntry(ctx context.Context, id string) (schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return copyEntry(*e), nil
	}
	return schedule.Entry{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) CreateEntry(ctx context.Context, ne schedule.NewEntry) (schedule.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e := ne.Entry(uuid.NewString())
	repo.db.table[e.ID] = &e
	repo.db.order = append(repo.db.order, e.ID)
	return copyEntry(e), nil
}

func (repo *scheduleRepository) UpdateEntry(ctx context.Context, id string, patch schedule.EntryPatch) (schedule.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return schedule.Entry{}, schedule.ErrNotFound
	}
	*e = patch.Apply(*e)
	return copyEntry(*e), nil
}

func (repo *scheduleRepository) DeleteEntry(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetStudents records the students enrolled in an entry. Enrollment is managed outside the scheduler.
func SetStudents(db *DB, entryID string, studentIDs ...string) error {
	db.entries.mutex.Lock()
	defer db.entries.mutex.Unlock()

	e, ok := db.entries.table[entryID]
	if !ok {
		return schedule.ErrNotFound
	}
	e.StudentIDs = append([]string(nil), studentIDs...)
	return nil
}
