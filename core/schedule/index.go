package schedule

type (
	teacherDay struct {
		teacherID string
		day       Weekday
	}

	cohortDay struct {
		grade   string
		section string
		day     Weekday
	}
)

// ConflictIndex answers the same question as DetectConflict without scanning every entry.
// Entries are bucketed by (teacher, day) and (cohort, day). Only entries sharing the candidate's
// day and either its teacher or its cohort can trigger a rule, so visiting the union of both
// buckets in insertion order yields the same first conflict as a full scan.
type ConflictIndex struct {
	entries   []Entry
	byTeacher map[teacherDay][]int
	byCohort  map[cohortDay][]int
}

func NewConflictIndex(entries []Entry) *ConflictIndex {
	idx := &ConflictIndex{
		entries:   make([]Entry, 0, len(entries)),
		byTeacher: make(map[teacherDay][]int),
		byCohort:  make(map[cohortDay][]int),
	}
	for _, e := range entries {
		idx.Add(e)
	}
	return idx
}

// Add appends e after every indexed entry.
func (idx *ConflictIndex) Add(e Entry) {
	pos := len(idx.entries)
	idx.entries = append(idx.entries, e)

	tk := teacherDay{e.TeacherID, e.DayOfWeek}
	idx.byTeacher[tk] = append(idx.byTeacher[tk], pos)

	gs := e.GradeSection()
	ck := cohortDay{gs.Grade, gs.Section, e.DayOfWeek}
	idx.byCohort[ck] = append(idx.byCohort[ck], pos)
}

func (idx *ConflictIndex) Len() int { return len(idx.entries) }

// Detect returns the first conflict in insertion order, or nil.
func (idx *ConflictIndex) Detect(c Candidate, exclude IDSet) *ConflictReport {
	if reports := idx.detect(c, exclude, true); len(reports) > 0 {
		return &reports[0]
	}
	return nil
}

// DetectAll returns every conflicting entry in insertion order.
func (idx *ConflictIndex) DetectAll(c Candidate, exclude IDSet) []ConflictReport {
	return idx.detect(c, exclude, false)
}

func (idx *ConflictIndex) detect(c Candidate, exclude IDSet, first bool) []ConflictReport {
	tp := idx.byTeacher[teacherDay{c.TeacherID, c.DayOfWeek}]
	cp := idx.byCohort[cohortDay{c.Grade, c.Section, c.DayOfWeek}]

	var reports []ConflictReport
	i, j := 0, 0
	// both position lists are ascending: merge them, visiting shared positions once
	for i < len(tp) || j < len(cp) {
		var pos int
		switch {
		case j >= len(cp) || (i < len(tp) && tp[i] < cp[j]):
			pos = tp[i]
			i++
		case i >= len(tp) || cp[j] < tp[i]:
			pos = cp[j]
			j++
		default:
			pos = tp[i]
			i++
			j++
		}

		e := idx.entries[pos]
		if exclude.Has(e.ID) {
			continue
		}
		if report := checkEntry(c, e); report != nil {
			reports = append(reports, *report)
			if first {
				break
			}
		}
	}
	return reports
}
