package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
)

func strPtr(s string) *string { return &s }

func TestReconciler_Reconcile(t *testing.T) {
	validate, translator := newValidator()
	rec := NewReconciler(validate, translator)

	// Algebra, taught by T to 5-A, is stored as E1, E2, E3.
	e1 := mkEntry("E1", "Algebra II", "T", "5", "A", Monday, "09:00", "10:00")
	e2 := mkEntry("E2", "Algebra", "T", "5", "A", Wednesday, "09:00", "10:00")
	e3 := mkEntry("E3", "Algebra", "T", "5", "A", Friday, "09:00", "10:00")
	other := mkEntry("O1", "Art", "U", "6", "B", Tuesday, "11:00", "12:00")
	stored := []Entry{e1, e2, e3}
	snapshot := []Entry{e1, e2, e3, other}

	tests := []struct {
		name      string
		edit      ClassEdit
		existing  []Entry
		want      Plan
		wantKind  ConflictKind
		wantValid bool
	}{
		{
			name: "minimal plan",
			edit: ClassEdit{
				ClassName: "Algebra II", SubjectID: "math", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{cohort("5", "A", "T",
					slot(Monday, "09:00", "10:00"),
					slot(Wednesday, "09:00", "10:00"),
					slot(Thursday, "09:00", "10:00"),
				)},
			},
			existing: stored,
			want: Plan{
				ToCreate: []NewEntry{mkCandidate("Algebra II", "T", "5", "A", Thursday, "09:00", "10:00").NewEntry()},
				ToUpdate: []EntryUpdate{{ID: "E2", Patch: EntryPatch{ClassName: strPtr("Algebra II")}}},
				ToDelete: []string{"E3"},
			},
		},
		{
			name: "unchanged re-save",
			edit: ClassEdit{
				ClassName: "Algebra", SubjectID: "math", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{cohort("5", "A", "T",
					slot(Wednesday, "09:00", "10:00"),
					slot(Friday, "09:00", "10:00"),
				)},
			},
			existing: []Entry{e2, e3},
			want:     newPlan(),
		},
		{
			name: "moving a slot over its own old time",
			edit: ClassEdit{
				ClassName: "Algebra", SubjectID: "math", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{cohort("5", "A", "T",
					slot(Wednesday, "09:30", "10:30"),
				)},
			},
			existing: []Entry{e2},
			want: Plan{
				ToCreate: []NewEntry{mkCandidate("Algebra", "T", "5", "A", Wednesday, "09:30", "10:30").NewEntry()},
				ToUpdate: []EntryUpdate{},
				ToDelete: []string{"E2"},
			},
		},
		{
			name: "duplicate slots collapse",
			edit: ClassEdit{
				ClassName: "Chemistry", SubjectID: "sci", TeacherID: "V",
				GradeSections: []GradeSectionSchedule{cohort("7", "A", "V",
					slot(Monday, "13:00", "14:00"),
					slot(Monday, "13:00", "14:00"),
				)},
			},
			want: Plan{
				ToCreate: []NewEntry{mkCandidate("Chemistry", "V", "7", "A", Monday, "13:00", "14:00").NewEntry()},
				ToUpdate: []EntryUpdate{},
				ToDelete: []string{},
			},
		},
		{
			name: "teacher conflict with another class",
			edit: ClassEdit{
				ClassName: "Biology", SubjectID: "sci", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{cohort("6", "B", "T", slot(Monday, "09:30", "10:30"))},
			},
			wantKind: TeacherConflict,
		},
		{
			name: "cohort conflict with another class",
			edit: ClassEdit{
				ClassName: "Biology", SubjectID: "sci", TeacherID: "U",
				GradeSections: []GradeSectionSchedule{cohort("5", "A", "U", slot(Monday, "09:30", "10:30"))},
			},
			wantKind: CohortConflict,
		},
		{
			name: "conflict within the batch",
			edit: ClassEdit{
				ClassName: "Chemistry", SubjectID: "sci", TeacherID: "V",
				GradeSections: []GradeSectionSchedule{
					cohort("7", "A", "V", slot(Monday, "13:00", "14:00")),
					cohort("7", "B", "V", slot(Monday, "13:30", "14:30")),
				},
			},
			wantKind: TeacherConflict,
		},
		{
			name: "new slot conflicts with a retained slot",
			edit: ClassEdit{
				ClassName: "Algebra", SubjectID: "math", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{
					cohort("5", "A", "T", slot(Monday, "09:00", "10:00")),
					cohort("5", "B", "T", slot(Monday, "09:30", "10:30")),
				},
			},
			existing: []Entry{e1},
			wantKind: TeacherConflict,
		},
		{
			name: "touching endpoints are fine",
			edit: ClassEdit{
				ClassName: "Biology", SubjectID: "sci", TeacherID: "T",
				GradeSections: []GradeSectionSchedule{cohort("6", "B", "T", slot(Monday, "10:00", "11:00"))},
			},
			want: Plan{
				ToCreate: []NewEntry{mkCandidate("Biology", "T", "6", "B", Monday, "10:00", "11:00").NewEntry()},
				ToUpdate: []EntryUpdate{},
				ToDelete: []string{},
			},
		},
		{
			name:      "invalid edit",
			edit:      ClassEdit{ClassName: "Biology", SubjectID: "sci"},
			wantValid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := rec.Reconcile(tt.edit, tt.existing, snapshot)
			switch {
			case tt.wantValid:
				require.Error(t, err)
				_, ok := err.(*core.ValidationError)
				assert.True(t, ok, "want *core.ValidationError, got %T", err)
			case tt.wantKind != "":
				require.Error(t, err)
				cErr, ok := err.(*ConflictError)
				require.True(t, ok, "want *ConflictError, got %T", err)
				assert.Equal(t, tt.wantKind, cErr.Report.Kind)
				assert.Equal(t, Plan{}, plan)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, plan)
			}
		})
	}
}

// Two plans computed from the same snapshot do not see each other: both pass even though
// applying both double-books the teacher. Locking around fetch and apply is what prevents it.
func TestReconciler_staleSnapshotRace(t *testing.T) {
	validate, translator := newValidator()
	rec := NewReconciler(validate, translator)
	snapshot := []Entry{mkEntry("O1", "Art", "U", "6", "B", Tuesday, "11:00", "12:00")}

	first := ClassEdit{
		ClassName: "Algebra", SubjectID: "math", TeacherID: "T",
		GradeSections: []GradeSectionSchedule{cohort("5", "A", "T", slot(Monday, "09:00", "10:00"))},
	}
	second := ClassEdit{
		ClassName: "Biology", SubjectID: "sci", TeacherID: "T",
		GradeSections: []GradeSectionSchedule{cohort("6", "B", "T", slot(Monday, "09:30", "10:30"))},
	}

	p1, err := rec.Reconcile(first, nil, snapshot)
	require.NoError(t, err)
	p2, err := rec.Reconcile(second, nil, snapshot)
	require.NoError(t, err)

	committed := append([]Entry(nil), snapshot...)
	for i, ne := range append(p1.ToCreate, p2.ToCreate...) {
		committed = append(committed, ne.Entry(string(rune('a'+i))))
	}
	violations := Audit(committed)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationTeacher, violations[0].Kind)

	// the same second edit against a fresh snapshot is rejected
	_, err = rec.Reconcile(second, nil, committed[:len(snapshot)+len(p1.ToCreate)])
	assert.IsType(t, &ConflictError{}, err)
}

func TestReconciler_cleansInput(t *testing.T) {
	validate, translator := newValidator()
	rec := NewReconciler(validate, translator)

	edit := ClassEdit{
		ClassName: "  Algebra ", SubjectID: "math", TeacherID: "T",
		GradeSections: []GradeSectionSchedule{
			{Grade: " 5", Section: "A ", Schedules: []Schedule{{DayOfWeek: "monday", StartTime: " 09:00", EndTime: "10:00"}}},
		},
	}
	plan, err := rec.Reconcile(edit, nil, nil)
	require.NoError(t, err)
	require.Len(t, plan.ToCreate, 1)
	assert.Equal(t, mkCandidate("Algebra", "T", "5", "A", Monday, "09:00", "10:00").NewEntry(), plan.ToCreate[0])
}
