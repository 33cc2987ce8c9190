package schedule

import (
	"context"
	"fmt"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
)

type (
	// Repository is the entry store. Every call applies independently: there is no batch transaction.
	// QueryEntries returns entries in store order (creation order).
	Repository interface {
		QueryEntries(ctx context.Context) ([]Entry, error)
		GetEntry(ctx context.Context, id string) (Entry, error)
		CreateEntry(ctx context.Context, ne NewEntry) (Entry, error)
		UpdateEntry(ctx context.Context, id string, patch EntryPatch) (Entry, error)
		DeleteEntry(ctx context.Context, id string) error
	}

	// Directory resolves the teachers and students entries refer to.
	Directory interface {
		TeachersEligibleForSubject(ctx context.Context, subjectID string) ([]roster.Teacher, error)
		GetTeacher(ctx context.Context, id string) (roster.Teacher, error)
		StudentsByID(ctx context.Context, ids ...string) ([]roster.Student, error)
		StudentsInCohort(ctx context.Context, grade, section string) ([]roster.Student, error)
	}

	// Locker serializes saves touching the same teachers or cohorts.
	// The returned func releases every key.
	Locker interface {
		Lock(ctx context.Context, keys ...string) (unlock func(), err error)
	}

	// Notifier is told about every committed class change.
	Notifier interface {
		ClassChanged(ctx context.Context, change ClassChange)
	}

	// ClassChange describes a committed save or delete.
	ClassChange struct {
		ClassName  string
		TeacherIDs []string // teachers of the class before and after the change
		Plan       Plan
		Entries    []Entry // the class after the change; empty when deleted
		Deleted    bool
	}

	// SaveResult is returned by a successful save.
	SaveResult struct {
		Plan    Plan           `json:"plan"`
		Entries []Entry        `json:"entries"`
		Classes []LogicalClass `json:"classes"`
	}

	ServiceDeps struct {
		Repo       Repository
		Directory  Directory
		Validate   *validator.Validate
		Translator ut.Translator
		Logger     core.Logger
		Locker     Locker   // optional: without it concurrent saves may race
		Notifier   Notifier // optional
	}

	Service struct {
		repo       Repository
		dir        Directory
		rec        *Reconciler
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger
		locker     Locker
		notifier   Notifier
	}
)

func NewService(deps ServiceDeps) *Service {
	return &Service{
		repo:       deps.Repo,
		dir:        deps.Directory,
		rec:        NewReconciler(deps.Validate, deps.Translator),
		validate:   deps.Validate,
		translator: deps.Translator,
		logger:     deps.Logger,
		locker:     deps.Locker,
		notifier:   deps.Notifier,
	}
}

func (svc *Service) ListEntries(ctx context.Context) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx)
}

func (svc *Service) ListClasses(ctx context.Context) ([]LogicalClass, error) {
	entries, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching entries")
	}
	return GroupEntries(entries), nil
}

// GetClass returns the class with every sibling entry, ready to be edited.
func (svc *Service) GetClass(ctx context.Context, key ClassKey) (LogicalClass, error) {
	classes, err := svc.ListClasses(ctx)
	if err != nil {
		return LogicalClass{}, err
	}
	lc, ok := FindClass(classes, key)
	if !ok {
		return LogicalClass{}, ErrNotFound
	}
	return lc, nil
}

// PlanClass computes what SaveClass would do, without writing anything.
func (svc *Service) PlanClass(ctx context.Context, edit ClassEdit) (Plan, error) {
	edit.Clean()
	if err := svc.check(ctx, edit); err != nil {
		return Plan{}, err
	}
	snapshot, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return Plan{}, errors.Wrap(err, "fetching entries")
	}
	existing, err := storedEntries(snapshot, edit)
	if err != nil {
		return Plan{}, err
	}
	return svc.reconcile(ctx, edit, existing, snapshot)
}

// CurrentEntries returns the stored entries the edit would replace.
func (svc *Service) CurrentEntries(ctx context.Context, edit ClassEdit) ([]Entry, error) {
	edit.Clean()
	snapshot, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching entries")
	}
	return storedEntries(snapshot, edit)
}

// SaveClass validates, reconciles and applies the edit.
// Errors are a *core.ValidationError or a *ConflictError when nothing was written,
// and an *ApplyError when the store failed part way.
func (svc *Service) SaveClass(ctx context.Context, edit ClassEdit) (SaveResult, error) {
	edit.Clean()
	if err := svc.check(ctx, edit); err != nil {
		return SaveResult{}, err
	}

	// the stored class is resolved once to know what to lock, then again under the lock
	snapshot, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "fetching entries")
	}
	existing, err := storedEntries(snapshot, edit)
	if err != nil {
		return SaveResult{}, err
	}

	unlock, err := svc.lock(ctx, append(editLockKeys(edit), entryLockKeys(existing)...))
	if err != nil {
		return SaveResult{}, errors.Wrap(err, "locking class")
	}
	defer unlock()

	// saves on the same teachers or cohorts see each other from here
	if snapshot, err = svc.repo.QueryEntries(ctx); err != nil {
		return SaveResult{}, errors.Wrap(err, "fetching entries")
	}
	if existing, err = storedEntries(snapshot, edit); err != nil {
		return SaveResult{}, err
	}
	plan, err := svc.reconcile(ctx, edit, existing, snapshot)
	if err != nil {
		return SaveResult{}, err
	}

	entries, err := svc.apply(ctx, plan, existing)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("saving class %q", edit.ClassName), err, map[string]interface{}{
			"class_name": edit.ClassName,
			"to_create":  len(plan.ToCreate),
			"to_update":  len(plan.ToUpdate),
			"to_delete":  len(plan.ToDelete),
		})
		return SaveResult{}, err
	}

	svc.logger.Info(fmt.Sprintf("class %q saved: %d created, %d updated, %d deleted",
		edit.ClassName, len(plan.ToCreate), len(plan.ToUpdate), len(plan.ToDelete)))

	if !plan.Empty() {
		teacherIDs := edit.TeacherIDs()
		for _, e := range existing {
			teacherIDs = append(teacherIDs, e.TeacherID)
		}
		svc.notify(ctx, ClassChange{
			ClassName:  edit.ClassName,
			TeacherIDs: core.UniqueStrings(teacherIDs...),
			Plan:       plan,
			Entries:    entries,
		})
	}

	return SaveResult{Plan: plan, Entries: entries, Classes: GroupEntries(entries)}, nil
}

// DeleteClass deletes every entry of the class.
func (svc *Service) DeleteClass(ctx context.Context, key ClassKey) (Plan, error) {
	lc, err := svc.GetClass(ctx, key)
	if err != nil {
		return Plan{}, err
	}

	unlock, err := svc.lock(ctx, classLockKeys(lc))
	if err != nil {
		return Plan{}, errors.Wrap(err, "locking class")
	}
	defer unlock()

	// re-read inside the lock: entries may have moved since
	if lc, err = svc.GetClass(ctx, key); err != nil {
		return Plan{}, err
	}

	plan := newPlan()
	plan.ToDelete = append(plan.ToDelete, lc.EntryIDs...)
	if _, err = svc.apply(ctx, plan, nil); err != nil {
		svc.logger.Error(fmt.Sprintf("deleting class %q", key.ClassName), err)
		return Plan{}, err
	}
	svc.logger.Info(fmt.Sprintf("class %q deleted: %d entries", key.ClassName, len(plan.ToDelete)))

	svc.notify(ctx, ClassChange{
		ClassName:  key.ClassName,
		TeacherIDs: []string{key.TeacherID},
		Plan:       plan,
		Deleted:    true,
	})
	return plan, nil
}

// CheckSlot reports whether a single slot could be booked right now.
// excludeIDs are entries to ignore, usually those of the class being edited.
func (svc *Service) CheckSlot(ctx context.Context, c Candidate, excludeIDs ...string) (*ConflictReport, error) {
	if err := c.Validate(svc.validate, svc.translator); err != nil {
		return nil, err
	}
	snapshot, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching entries")
	}
	report := DetectConflict(c, snapshot, NewIDSet(excludeIDs...))
	if report != nil {
		svc.describe(ctx, report)
	}
	return report, nil
}

// EnrolledStudents returns the students attending an entry: its own student list if set,
// otherwise every student of its cohort.
func (svc *Service) EnrolledStudents(ctx context.Context, entryID string) ([]roster.Student, error) {
	e, err := svc.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if len(e.StudentIDs) > 0 {
		return svc.dir.StudentsByID(ctx, e.StudentIDs...)
	}
	gs := e.GradeSection()
	return svc.dir.StudentsInCohort(ctx, gs.Grade, gs.Section)
}

func (svc *Service) EligibleTeachers(ctx context.Context, subjectID string) ([]roster.Teacher, error) {
	return svc.dir.TeachersEligibleForSubject(ctx, subjectID)
}

// Audit scans the store for entries breaking the scheduling invariants.
func (svc *Service) Audit(ctx context.Context) ([]Violation, error) {
	entries, err := svc.repo.QueryEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching entries")
	}
	return Audit(entries), nil
}

// check validates the edit, then checks every teacher may teach the subject.
func (svc *Service) check(ctx context.Context, edit ClassEdit) error {
	if err := edit.Validate(svc.validate, svc.translator); err != nil {
		return err
	}
	if svc.dir == nil {
		return nil
	}

	eligible, err := svc.dir.TeachersEligibleForSubject(ctx, edit.SubjectID)
	if err != nil {
		if errors.Cause(err) == roster.ErrSubjectNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "subject_id", Error: err.Error()})
		}
		return errors.Wrap(err, "fetching eligible teachers")
	}
	ok := make(map[string]struct{}, len(eligible))
	for _, t := range eligible {
		ok[t.ID] = struct{}{}
	}

	var flds []core.FieldError
	for i, gss := range edit.GradeSections {
		if _, found := ok[gss.TeacherID]; !found {
			gs := GradeSection{Grade: gss.Grade, Section: gss.Section}
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("grade_sections[%d].teacher_id", i),
				Error: fmt.Sprintf("%s: teacher %s is not eligible to teach this subject", gs, gss.TeacherID),
			})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *Service) reconcile(ctx context.Context, edit ClassEdit, existing, snapshot []Entry) (Plan, error) {
	plan, err := svc.rec.Reconcile(edit, existing, snapshot)
	if err != nil {
		if cErr, ok := err.(*ConflictError); ok {
			svc.describe(ctx, &cErr.Report)
		}
		return Plan{}, err
	}
	return plan, nil
}

// apply commits the plan one operation at a time: deletes, then updates, then creates.
// It stops at the first failure without undoing what was applied.
// The returned entries are the class's entries after the change.
func (svc *Service) apply(ctx context.Context, plan Plan, existing []Entry) ([]Entry, error) {
	total, applied := plan.Len(), 0
	fail := func(op, id, slot string, err error) error {
		return &ApplyError{Op: op, EntryID: id, Slot: slot, Applied: applied, Total: total, Err: err}
	}

	deleted := NewIDSet(plan.ToDelete...)
	for _, id := range plan.ToDelete {
		if err := svc.repo.DeleteEntry(ctx, id); err != nil {
			return nil, fail(OpDelete, id, "", err)
		}
		applied++
	}

	updated := make(map[string]Entry, len(plan.ToUpdate))
	for _, u := range plan.ToUpdate {
		e, err := svc.repo.UpdateEntry(ctx, u.ID, u.Patch)
		if err != nil {
			return nil, fail(OpUpdate, u.ID, "", err)
		}
		updated[e.ID] = e
		applied++
	}

	entries := make([]Entry, 0, len(existing)+len(plan.ToCreate))
	for _, e := range existing {
		if deleted.Has(e.ID) {
			continue
		}
		if ue, ok := updated[e.ID]; ok {
			e = ue
		}
		entries = append(entries, e)
	}

	for _, ne := range plan.ToCreate {
		e, err := svc.repo.CreateEntry(ctx, ne)
		if err != nil {
			return nil, fail(OpCreate, "", ne.Entry("").String(), err)
		}
		entries = append(entries, e)
		applied++
	}
	return entries, nil
}

func (svc *Service) lock(ctx context.Context, keys []string) (func(), error) {
	if svc.locker == nil || len(keys) == 0 {
		return func() {}, nil
	}
	return svc.locker.Lock(ctx, sortedKeys(keys)...)
}

func (svc *Service) notify(ctx context.Context, change ClassChange) {
	if svc.notifier != nil {
		svc.notifier.ClassChanged(ctx, change)
	}
}

// describe fills in the teacher name of a conflict report, when it can be found.
func (svc *Service) describe(ctx context.Context, report *ConflictReport) {
	if svc.dir == nil {
		return
	}
	if t, err := svc.dir.GetTeacher(ctx, report.Existing.TeacherID); err == nil {
		report.TeacherName = t.Name
	}
}

// storedEntries resolves the stored class an edit replaces, from the whole store.
// The listed entry ids must all belong to one logical class; ids no longer stored are skipped.
// Every entry of that class is returned, in store order. An edit without ids is a new class.
// Either way the class name and teacher of the edit may not be taken by another stored class.
func storedEntries(snapshot []Entry, edit ClassEdit) ([]Entry, error) {
	classes := GroupEntries(snapshot)
	owner := make(map[string]int, len(snapshot))
	for i, lc := range classes {
		for _, id := range lc.EntryIDs {
			owner[id] = i
		}
	}

	found := -1
	for _, id := range edit.EntryIDs {
		i, ok := owner[id]
		if !ok {
			continue
		}
		if found >= 0 && i != found {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "entry_ids", Error: mixedEntriesText})
		}
		found = i
	}
	if len(edit.EntryIDs) > 0 && found < 0 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "entry_ids", Error: staleEntriesText})
	}

	key := ClassKey{ClassName: edit.ClassName, TeacherID: edit.TeacherID}
	if _, taken := FindClass(classes, key); taken && (found < 0 || classes[found].Key() != key) {
		return nil, core.NewValidationError(nil, core.FieldError{
			Field: "class_name",
			Error: fmt.Sprintf(classTakenText, edit.ClassName),
		})
	}
	if found < 0 {
		return nil, nil
	}

	ids := NewIDSet(classes[found].EntryIDs...)
	entries := make([]Entry, 0, len(ids))
	for _, e := range snapshot {
		if ids.Has(e.ID) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// TeacherLockKey and CohortLockKey name the resources a save books.
func TeacherLockKey(teacherID string) string { return "teacher:" + teacherID }

func CohortLockKey(grade, section string) string { return "cohort:" + grade + "/" + section }

func editLockKeys(edit ClassEdit) []string {
	keys := make([]string, 0, 2*len(edit.GradeSections))
	for _, gss := range edit.GradeSections {
		keys = append(keys, TeacherLockKey(gss.TeacherID), CohortLockKey(gss.Grade, gss.Section))
	}
	return sortedKeys(keys)
}

func classLockKeys(lc LogicalClass) []string {
	keys := make([]string, 0, 2*len(lc.GradeSections))
	for _, gss := range lc.GradeSections {
		keys = append(keys, TeacherLockKey(gss.TeacherID), CohortLockKey(gss.Grade, gss.Section))
	}
	return sortedKeys(keys)
}

func entryLockKeys(entries []Entry) []string {
	keys := make([]string, 0, 2*len(entries))
	for _, e := range entries {
		gs := e.GradeSection()
		keys = append(keys, TeacherLockKey(e.TeacherID), CohortLockKey(gs.Grade, gs.Section))
	}
	return keys
}

func sortedKeys(keys []string) []string {
	keys = core.UniqueStrings(keys...)
	sort.Strings(keys)
	return keys
}
