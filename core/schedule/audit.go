package schedule

import "fmt"

type ViolationKind string

const (
	ViolationTeacher       = ViolationKind(TeacherConflict)
	ViolationCohort        = ViolationKind(CohortConflict)
	ViolationGradeSections ViolationKind = "grade_sections_count"
	ViolationTime          ViolationKind = "invalid_time"
)

// Violation is a stored state that breaks a scheduling invariant.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	EntryIDs []string      `json:"entry_ids"`
	Message  string        `json:"message"`
}

// Audit checks a full store snapshot for double bookings and malformed entries.
// Stale-snapshot races are the usual source of double bookings found here.
// Each conflicting pair is reported once, against the entry stored first.
func Audit(entries []Entry) []Violation {
	violations := make([]Violation, 0)
	idx := NewConflictIndex(nil)

	for _, e := range entries {
		if n := len(e.GradeSections); n != 1 {
			violations = append(violations, Violation{
				Kind:     ViolationGradeSections,
				EntryIDs: []string{e.ID},
				Message:  fmt.Sprintf("entry %s has %d grade/sections, expected exactly 1", e.ID, n),
			})
		}
		switch {
		case !e.DayOfWeek.Valid():
			violations = append(violations, Violation{
				Kind:     ViolationTime,
				EntryIDs: []string{e.ID},
				Message:  fmt.Sprintf("entry %s has an invalid day %q", e.ID, e.DayOfWeek),
			})
		case !ValidClock(e.StartTime) || !ValidClock(e.EndTime) || e.StartTime >= e.EndTime:
			violations = append(violations, Violation{
				Kind:     ViolationTime,
				EntryIDs: []string{e.ID},
				Message:  fmt.Sprintf("entry %s has an invalid time range %s", e.ID, Window(e.StartTime, e.EndTime)),
			})
		}

		for _, report := range idx.DetectAll(CandidateFromEntry(e), nil) {
			who := e.GradeSection().String()
			if report.Kind == TeacherConflict {
				who = "teacher " + e.TeacherID
			}
			violations = append(violations, Violation{
				Kind:     ViolationKind(report.Kind),
				EntryIDs: []string{report.Existing.ID, e.ID},
				Message:  fmt.Sprintf("%s is double-booked: %s overlaps %s", who, e, report.Existing),
			})
		}
		idx.Add(e)
	}
	return violations
}
