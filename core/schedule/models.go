package schedule

import (
	"fmt"
	"sort"

	"github.com/trezcool/ratiba/core"
)

type (
	// GradeSection identifies one cohort.
	GradeSection struct {
		Grade   string `json:"grade" bson:"grade"`
		Section string `json:"section" bson:"section"`
	}

	// Entry is the persisted unit: one class, one cohort, one weekly time slot.
	Entry struct {
		ID            string         `json:"id"`
		ClassName     string         `json:"class_name"`
		TeacherID     string         `json:"teacher_id"`
		GradeSections []GradeSection `json:"grade_sections"` // always exactly one
		DayOfWeek     Weekday        `json:"day_of_week"`
		StartTime     string         `json:"start_time"`
		EndTime       string         `json:"end_time"`
		StudentIDs    []string       `json:"student_ids,omitempty"`
	}

	// NewEntry is an Entry before the store assigns its id.
	NewEntry struct {
		ClassName     string         `json:"class_name"`
		TeacherID     string         `json:"teacher_id"`
		GradeSections []GradeSection `json:"grade_sections"`
		DayOfWeek     Weekday        `json:"day_of_week"`
		StartTime     string         `json:"start_time"`
		EndTime       string         `json:"end_time"`
	}

	// EntryPatch is a partial update. Only the class name is ever changed in place.
	EntryPatch struct {
		ClassName *string `json:"class_name,omitempty"`
	}

	EntryUpdate struct {
		ID    string     `json:"id"`
		Patch EntryPatch `json:"patch"`
	}

	// SlotKey is the identity of a physical entry within a logical class.
	SlotKey struct {
		TeacherID string
		Grade     string
		Section   string
		DayOfWeek Weekday
		StartTime string
		EndTime   string
	}

	// Schedule is one weekly time slot in the editor. ID is client-local.
	Schedule struct {
		ID        string  `json:"id,omitempty"`
		DayOfWeek Weekday `json:"day_of_week" validate:"required,weekday"`
		StartTime string  `json:"start_time" validate:"required,hhmm"`
		EndTime   string  `json:"end_time" validate:"required,hhmm"`
	}

	// GradeSectionSchedule is the editor state of one cohort of a class.
	GradeSectionSchedule struct {
		Grade     string     `json:"grade" validate:"required,max=32,alphanum_"`
		Section   string     `json:"section" validate:"required,max=32,alphanum_"`
		TeacherID string     `json:"teacher_id" validate:"required,max=36"`
		Schedules []Schedule `json:"schedules" validate:"min=1,dive"`
	}

	// ClassEdit is the desired state of a logical class as submitted by the editor.
	// EntryIDs lists the stored entries the class had when the editor was opened (empty for a new class).
	ClassEdit struct {
		ClassName     string                 `json:"class_name" validate:"required,max=255"`
		SubjectID     string                 `json:"subject_id" validate:"required"`
		TeacherID     string                 `json:"teacher_id" validate:"max=36"`
		GradeSections []GradeSectionSchedule `json:"grade_sections" validate:"min=1,dive"`
		EntryIDs      []string               `json:"entry_ids,omitempty"`
	}

	// Candidate is a slot about to be created or re-validated.
	Candidate struct {
		ClassName string  `json:"class_name" validate:"required,max=255"`
		TeacherID string  `json:"teacher_id" validate:"required,max=36"`
		Grade     string  `json:"grade" validate:"required,max=32"`
		Section   string  `json:"section" validate:"required,max=32"`
		DayOfWeek Weekday `json:"day_of_week" validate:"required,weekday"`
		StartTime string  `json:"start_time" validate:"required,hhmm"`
		EndTime   string  `json:"end_time" validate:"required,hhmm"`
	}

	IDSet map[string]struct{}
)

func (gs GradeSection) String() string {
	return fmt.Sprintf("Grade %s-%s", gs.Grade, gs.Section)
}

// GradeSection returns the single cohort of the entry.
func (e Entry) GradeSection() GradeSection {
	if len(e.GradeSections) == 0 {
		return GradeSection{}
	}
	return e.GradeSections[0]
}

func (e Entry) Key() SlotKey {
	gs := e.GradeSection()
	return SlotKey{e.TeacherID, gs.Grade, gs.Section, e.DayOfWeek, e.StartTime, e.EndTime}
}

func (e Entry) String() string {
	return fmt.Sprintf("%q for %s on %s %s", e.ClassName, e.GradeSection(), e.DayOfWeek, Window(e.StartTime, e.EndTime))
}

func (ne NewEntry) GradeSection() GradeSection {
	if len(ne.GradeSections) == 0 {
		return GradeSection{}
	}
	return ne.GradeSections[0]
}

// Entry returns the stored form of ne under the given id.
func (ne NewEntry) Entry(id string) Entry {
	return Entry{
		ID:            id,
		ClassName:     ne.ClassName,
		TeacherID:     ne.TeacherID,
		GradeSections: []GradeSection{ne.GradeSection()},
		DayOfWeek:     ne.DayOfWeek,
		StartTime:     ne.StartTime,
		EndTime:       ne.EndTime,
	}
}

// Apply returns e with the patch applied.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.ClassName != nil {
		e.ClassName = *p.ClassName
	}
	return e
}

func (c Candidate) GradeSection() GradeSection {
	return GradeSection{Grade: c.Grade, Section: c.Section}
}

func (c Candidate) Key() SlotKey {
	return SlotKey{c.TeacherID, c.Grade, c.Section, c.DayOfWeek, c.StartTime, c.EndTime}
}

func (c Candidate) NewEntry() NewEntry {
	return NewEntry{
		ClassName:     c.ClassName,
		TeacherID:     c.TeacherID,
		GradeSections: []GradeSection{c.GradeSection()},
		DayOfWeek:     c.DayOfWeek,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
	}
}

func (c Candidate) String() string {
	return fmt.Sprintf("%q for %s on %s %s", c.ClassName, c.GradeSection(), c.DayOfWeek, Window(c.StartTime, c.EndTime))
}

// CandidateFromEntry re-validates a stored entry as a candidate.
func CandidateFromEntry(e Entry) Candidate {
	gs := e.GradeSection()
	return Candidate{
		ClassName: e.ClassName,
		TeacherID: e.TeacherID,
		Grade:     gs.Grade,
		Section:   gs.Section,
		DayOfWeek: e.DayOfWeek,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clean trims user input, normalizes day names and assigns the class teacher to cohorts without one.
func (edit *ClassEdit) Clean() {
	edit.ClassName = core.CleanString(edit.ClassName)
	edit.SubjectID = core.CleanString(edit.SubjectID)
	edit.TeacherID = core.CleanString(edit.TeacherID)
	for i := range edit.GradeSections {
		gss := &edit.GradeSections[i]
		gss.Grade = core.CleanString(gss.Grade)
		gss.Section = core.CleanString(gss.Section)
		gss.TeacherID = core.CleanString(gss.TeacherID)
		if gss.TeacherID == "" {
			gss.TeacherID = edit.TeacherID
		}
		for j := range gss.Schedules {
			sch := &gss.Schedules[j]
			if d, ok := ParseWeekday(string(sch.DayOfWeek)); ok {
				sch.DayOfWeek = d
			}
			sch.StartTime = core.CleanString(sch.StartTime)
			sch.EndTime = core.CleanString(sch.EndTime)
		}
	}
	edit.EntryIDs = core.UniqueStrings(edit.EntryIDs...)
}

// Candidates expands the edit into one candidate per cohort and slot, in editor order.
func (edit ClassEdit) Candidates() []Candidate {
	var cands []Candidate
	for _, gss := range edit.GradeSections {
		for _, sch := range gss.Schedules {
			cands = append(cands, Candidate{
				ClassName: edit.ClassName,
				TeacherID: gss.TeacherID,
				Grade:     gss.Grade,
				Section:   gss.Section,
				DayOfWeek: sch.DayOfWeek,
				StartTime: sch.StartTime,
				EndTime:   sch.EndTime,
			})
		}
	}
	return cands
}

// TeacherIDs returns the distinct teachers of the edit.
func (edit ClassEdit) TeacherIDs() []string {
	ids := make([]string, 0, len(edit.GradeSections)+1)
	for _, gss := range edit.GradeSections {
		ids = append(ids, gss.TeacherID)
	}
	return core.UniqueStrings(ids...)
}

// SortSchedules orders slots by day (Monday first), then start and end time.
func SortSchedules(schs []Schedule) {
	sort.SliceStable(schs, func(i, j int) bool {
		a, b := schs[i], schs[j]
		if a.DayOfWeek != b.DayOfWeek {
			return dayLess(a.DayOfWeek, b.DayOfWeek)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.EndTime < b.EndTime
	})
}

// SortEntries orders entries by day (Monday first), then start time. The sort is stable.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DayOfWeek != b.DayOfWeek {
			return dayLess(a.DayOfWeek, b.DayOfWeek)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.EndTime < b.EndTime
	})
}
