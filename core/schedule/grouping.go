package schedule

import "sort"

// ClassKey identifies a logical class.
type ClassKey struct {
	ClassName string `json:"class_name" query:"class_name"`
	TeacherID string `json:"teacher_id" query:"teacher_id"`
}

// LogicalClass is the derived view of all entries sharing a class name and teacher,
// bucketed by cohort in the editor's shape.
type LogicalClass struct {
	ClassName     string                 `json:"class_name"`
	TeacherID     string                 `json:"teacher_id"`
	GradeSections []GradeSectionSchedule `json:"grade_sections"`
	EntryIDs      []string               `json:"entry_ids"`
}

// GroupEntries derives the logical classes of entries.
// Classes, cohorts and slots keep the order in which they first appear in entries.
func GroupEntries(entries []Entry) []LogicalClass {
	classes := make([]LogicalClass, 0)
	classPos := make(map[ClassKey]int)
	cohortPos := make(map[ClassKey]map[GradeSection]int)

	for _, e := range entries {
		key := ClassKey{ClassName: e.ClassName, TeacherID: e.TeacherID}
		ci, ok := classPos[key]
		if !ok {
			classes = append(classes, LogicalClass{ClassName: e.ClassName, TeacherID: e.TeacherID})
			ci = len(classes) - 1
			classPos[key] = ci
			cohortPos[key] = make(map[GradeSection]int)
		}
		lc := &classes[ci]

		gs := e.GradeSection()
		gi, ok := cohortPos[key][gs]
		if !ok {
			lc.GradeSections = append(lc.GradeSections, GradeSectionSchedule{
				Grade:     gs.Grade,
				Section:   gs.Section,
				TeacherID: e.TeacherID,
			})
			gi = len(lc.GradeSections) - 1
			cohortPos[key][gs] = gi
		}

		lc.GradeSections[gi].Schedules = append(lc.GradeSections[gi].Schedules, Schedule{
			ID:        e.ID,
			DayOfWeek: e.DayOfWeek,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		})
		lc.EntryIDs = append(lc.EntryIDs, e.ID)
	}
	return classes
}

// FindClass returns the class with the given key from classes.
func FindClass(classes []LogicalClass, key ClassKey) (LogicalClass, bool) {
	for _, lc := range classes {
		if lc.Key() == key {
			return lc, true
		}
	}
	return LogicalClass{}, false
}

func (lc LogicalClass) Key() ClassKey {
	return ClassKey{ClassName: lc.ClassName, TeacherID: lc.TeacherID}
}

// Cohorts returns the grade/sections of the class.
func (lc LogicalClass) Cohorts() []GradeSection {
	gss := make([]GradeSection, 0, len(lc.GradeSections))
	for _, gs := range lc.GradeSections {
		gss = append(gss, GradeSection{Grade: gs.Grade, Section: gs.Section})
	}
	return gss
}

// Days returns the distinct days the class meets, Monday first.
func (lc LogicalClass) Days() []Weekday {
	seen := make(map[Weekday]struct{})
	days := make([]Weekday, 0, len(Weekdays))
	for _, gs := range lc.GradeSections {
		for _, sch := range gs.Schedules {
			if _, ok := seen[sch.DayOfWeek]; !ok {
				seen[sch.DayOfWeek] = struct{}{}
				days = append(days, sch.DayOfWeek)
			}
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return dayLess(days[i], days[j]) })
	return days
}

// Edit reconstructs the editor state of the class, including every sibling entry id.
func (lc LogicalClass) Edit(subjectID string) ClassEdit {
	edit := ClassEdit{
		ClassName:     lc.ClassName,
		SubjectID:     subjectID,
		TeacherID:     lc.TeacherID,
		GradeSections: make([]GradeSectionSchedule, 0, len(lc.GradeSections)),
		EntryIDs:      append([]string(nil), lc.EntryIDs...),
	}
	for _, gs := range lc.GradeSections {
		gs.Schedules = append([]Schedule(nil), gs.Schedules...)
		SortSchedules(gs.Schedules)
		edit.GradeSections = append(edit.GradeSections, gs)
	}
	return edit
}
