package exportsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ratiba/core/schedule"
)

func entry(id, class, teacher, grade, section string, day schedule.Weekday, start, end string) schedule.Entry {
	return schedule.Entry{
		ID:            id,
		ClassName:     class,
		TeacherID:     teacher,
		GradeSections: []schedule.GradeSection{{Grade: grade, Section: section}},
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
	}
}

func TestTimetable_Write(t *testing.T) {
	entries := []schedule.Entry{
		entry("e1", "Math", "t1", "5", "A", schedule.Monday, "09:00", "10:00"),
		entry("e2", "Math", "t1", "5", "B", schedule.Tuesday, "09:00", "10:00"),
		entry("e3", "Art", "t2", "5", "A", schedule.Monday, "08:00", "09:00"),
	}
	names := map[string]string{"t1": "Ada Lovelace", "t2": "Frida"}

	buf := new(bytes.Buffer)
	require.NoError(t, NewTimetable(entries, names).Write(buf))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Grade 5-A", "Grade 5-B", "Ada Lovelace", "Frida"}, f.GetSheetList())

	tests := []struct {
		name  string
		sheet string
		cell  string
		want  string
	}{
		{name: "header time", sheet: "Grade 5-A", cell: "A1", want: "Time"},
		{name: "header monday", sheet: "Grade 5-A", cell: "B1", want: "Monday"},
		{name: "header sunday", sheet: "Grade 5-A", cell: "H1", want: "Sunday"},
		{name: "earliest window first", sheet: "Grade 5-A", cell: "A2", want: "08:00-09:00"},
		{name: "cohort cell names teacher", sheet: "Grade 5-A", cell: "B2", want: "Art (Frida)"},
		{name: "second window", sheet: "Grade 5-A", cell: "B3", want: "Math (Ada Lovelace)"},
		{name: "teacher cell names cohort", sheet: "Ada Lovelace", cell: "C2", want: "Math (Grade 5-B)"},
		{name: "empty slot", sheet: "Ada Lovelace", cell: "D2", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.GetCellValue(tt.sheet, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimetable_Workbook_empty(t *testing.T) {
	f, err := NewTimetable(nil, nil).Workbook()
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Timetable"}, f.GetSheetList())
	got, err := f.GetCellValue("Timetable", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Time", got)
}

func TestTimetable_overlapsShareCell(t *testing.T) {
	entries := []schedule.Entry{
		entry("e1", "Math", "t1", "5", "A", schedule.Monday, "09:00", "10:00"),
		entry("e2", "Art", "t2", "5", "A", schedule.Monday, "09:00", "10:00"),
	}
	f, err := NewTimetable(entries, nil).Workbook()
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Grade 5-A", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Math (t1)\nArt (t2)", got)
}

func Test_uniqueSheetName(t *testing.T) {
	taken := make(map[string]struct{})
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Grade 5-A", want: "Grade 5-A"},
		{name: "duplicate", in: "grade 5-a", want: "grade 5-a 2"},
		{name: "illegal chars", in: "A/B: [x]", want: "A B  (x)"},
		{name: "too long", in: "Abcdefghijklmnopqrstuvwxyz0123456789", want: "Abcdefghijklmnopqrstuvwxyz01234"},
		{name: "too long duplicate", in: "Abcdefghijklmnopqrstuvwxyz0123456789", want: "Abcdefghijklmnopqrstuvwxyz012 2"},
		{name: "blank", in: "  ", want: "Sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueSheetName(tt.in, taken))
		})
	}
}
