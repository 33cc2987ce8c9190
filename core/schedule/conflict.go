package schedule

import "fmt"

type ConflictKind string

const (
	TeacherConflict ConflictKind = "teacher_double_booked"
	CohortConflict  ConflictKind = "cohort_double_booked"
)

// ConflictReport describes why a candidate slot cannot be committed.
type ConflictReport struct {
	Kind        ConflictKind `json:"kind"`
	Candidate   Candidate    `json:"candidate"`
	Existing    Entry        `json:"existing"`
	TeacherName string       `json:"teacher_name,omitempty"`
}

func (r ConflictReport) teacher() string {
	if r.TeacherName != "" {
		return r.TeacherName
	}
	return "teacher " + r.Existing.TeacherID
}

// Message is the user-facing description of the conflict.
func (r ConflictReport) Message() string {
	ex := r.Existing
	when := fmt.Sprintf("%s %s", ex.DayOfWeek, Window(ex.StartTime, ex.EndTime))
	switch r.Kind {
	case TeacherConflict:
		return fmt.Sprintf("%s is already teaching %q to %s on %s, so %s cannot be scheduled",
			r.teacher(), ex.ClassName, ex.GradeSection(), when, r.Candidate)
	default:
		return fmt.Sprintf("%s already has %q on %s, so %s cannot be scheduled",
			ex.GradeSection(), ex.ClassName, when, r.Candidate)
	}
}

// checkEntry applies both booking rules of one stored entry to the candidate.
// The teacher rule is checked first.
func checkEntry(c Candidate, e Entry) *ConflictReport {
	if e.DayOfWeek != c.DayOfWeek {
		return nil
	}
	if !Overlaps(c.StartTime, c.EndTime, e.StartTime, e.EndTime) {
		return nil
	}

	sameCohort := e.GradeSection() == c.GradeSection()
	sameClass := e.ClassName == c.ClassName

	if e.TeacherID == c.TeacherID && !(sameCohort && sameClass) {
		return &ConflictReport{Kind: TeacherConflict, Candidate: c, Existing: e}
	}
	if sameCohort && !sameClass {
		return &ConflictReport{Kind: CohortConflict, Candidate: c, Existing: e}
	}
	return nil
}

// DetectConflict scans existing in order and returns the first entry that double-books
// the candidate's teacher or cohort. Entries whose id is in exclude are ignored.
// A nil result means the candidate can be committed.
func DetectConflict(candidate Candidate, existing []Entry, exclude IDSet) *ConflictReport {
	for _, e := range existing {
		if exclude.Has(e.ID) {
			continue
		}
		if report := checkEntry(candidate, e); report != nil {
			return report
		}
	}
	return nil
}
