package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudit(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []Violation
	}{
		{
			name: "clean",
			entries: []Entry{
				mkEntry("e1", "Algebra", "T", "5", "A", Monday, "09:00", "10:00"),
				mkEntry("e2", "Algebra", "T", "5", "A", Monday, "10:00", "11:00"),
				mkEntry("e3", "Algebra", "U", "5", "A", Monday, "09:00", "10:00"),
			},
			want: []Violation{},
		},
		{
			name: "teacher double-booked",
			entries: []Entry{
				mkEntry("e1", "Algebra", "T", "5", "A", Monday, "09:00", "10:00"),
				mkEntry("e2", "Biology", "T", "6", "B", Monday, "09:30", "10:30"),
			},
			want: []Violation{{
				Kind:     ViolationTeacher,
				EntryIDs: []string{"e1", "e2"},
				Message:  `teacher T is double-booked: "Biology" for Grade 6-B on Monday 09:30-10:30 overlaps "Algebra" for Grade 5-A on Monday 09:00-10:00`,
			}},
		},
		{
			name: "cohort double-booked",
			entries: []Entry{
				mkEntry("e1", "Algebra", "T", "5", "A", Monday, "09:00", "10:00"),
				mkEntry("e2", "Biology", "U", "5", "A", Monday, "09:30", "10:30"),
			},
			want: []Violation{{
				Kind:     ViolationCohort,
				EntryIDs: []string{"e1", "e2"},
				Message:  `Grade 5-A is double-booked: "Biology" for Grade 5-A on Monday 09:30-10:30 overlaps "Algebra" for Grade 5-A on Monday 09:00-10:00`,
			}},
		},
		{
			name: "malformed entries",
			entries: []Entry{
				{ID: "e1", ClassName: "Algebra", TeacherID: "T", DayOfWeek: "Someday", StartTime: "09:00", EndTime: "10:00",
					GradeSections: []GradeSection{{Grade: "5", Section: "A"}, {Grade: "5", Section: "B"}}},
				mkEntry("e2", "Biology", "U", "6", "A", Tuesday, "10:00", "09:00"),
			},
			want: []Violation{
				{Kind: ViolationGradeSections, EntryIDs: []string{"e1"}, Message: "entry e1 has 2 grade/sections, expected exactly 1"},
				{Kind: ViolationTime, EntryIDs: []string{"e1"}, Message: `entry e1 has an invalid day "Someday"`},
				{Kind: ViolationTime, EntryIDs: []string{"e2"}, Message: "entry e2 has an invalid time range 10:00-09:00"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Audit(tt.entries))
		})
	}
}
