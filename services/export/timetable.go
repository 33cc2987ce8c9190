package exportsvc

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ratiba/core/schedule"
)

const (
	defaultSheet  = "Sheet1"
	emptySheet    = "Timetable"
	maxSheetName  = 31
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeColHeader = "Time"
)

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

type (
	sheet struct {
		name    string
		entries []schedule.Entry
		label   func(e schedule.Entry) string
	}

	// Timetable renders weekly grids: one sheet per cohort, then one per teacher.
	// Rows are the distinct time windows of the sheet, columns are the days Monday to Sunday.
	Timetable struct {
		entries      []schedule.Entry
		teacherNames map[string]string
	}
)

func NewTimetable(entries []schedule.Entry, teacherNames map[string]string) *Timetable {
	return &Timetable{entries: entries, teacherNames: teacherNames}
}

func (tt *Timetable) teacher(id string) string {
	if name, ok := tt.teacherNames[id]; ok && name != "" {
		return name
	}
	return id
}

func (tt *Timetable) sheets() []sheet {
	var (
		cohorts    []schedule.GradeSection
		byCohort   = make(map[schedule.GradeSection][]schedule.Entry)
		teachers   []string
		byTeacher  = make(map[string][]schedule.Entry)
		sheetNames = make(map[string]struct{})
	)
	for _, e := range tt.entries {
		gs := e.GradeSection()
		if _, ok := byCohort[gs]; !ok {
			cohorts = append(cohorts, gs)
		}
		byCohort[gs] = append(byCohort[gs], e)
		if _, ok := byTeacher[e.TeacherID]; !ok {
			teachers = append(teachers, e.TeacherID)
		}
		byTeacher[e.TeacherID] = append(byTeacher[e.TeacherID], e)
	}
	sort.SliceStable(cohorts, func(i, j int) bool {
		if cohorts[i].Grade != cohorts[j].Grade {
			return cohorts[i].Grade < cohorts[j].Grade
		}
		return cohorts[i].Section < cohorts[j].Section
	})
	sort.SliceStable(teachers, func(i, j int) bool { return tt.teacher(teachers[i]) < tt.teacher(teachers[j]) })

	sheets := make([]sheet, 0, len(cohorts)+len(teachers))
	for _, gs := range cohorts {
		sheets = append(sheets, sheet{
			name:    uniqueSheetName(gs.String(), sheetNames),
			entries: byCohort[gs],
			label:   func(e schedule.Entry) string { return e.ClassName + " (" + tt.teacher(e.TeacherID) + ")" },
		})
	}
	for _, id := range teachers {
		sheets = append(sheets, sheet{
			name:    uniqueSheetName(tt.teacher(id), sheetNames),
			entries: byTeacher[id],
			label:   func(e schedule.Entry) string { return e.ClassName + " (" + e.GradeSection().String() + ")" },
		})
	}
	return sheets
}

// uniqueSheetName makes name a legal sheet name not yet in taken, and records it.
func uniqueSheetName(name string, taken map[string]struct{}) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(name))
	if base == "" {
		base = "Sheet"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for i := 2; ; i++ {
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			break
		}
		suffix := fmt.Sprintf(" %d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	taken[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

// Workbook builds the excelize file. The caller closes it.
func (tt *Timetable) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating cell style")
	}

	sheets := tt.sheets()
	if len(sheets) == 0 {
		if err = f.SetSheetName(defaultSheet, emptySheet); err != nil {
			return nil, errors.Wrap(err, "naming empty sheet")
		}
		if err = writeHeader(f, emptySheet, headerStyle); err != nil {
			return nil, err
		}
		return f, nil
	}

	for i, sh := range sheets {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sh.name)
		} else {
			_, err = f.NewSheet(sh.name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "creating sheet %s", sh.name)
		}
		if err = writeSheet(f, sh, headerStyle, cellStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook as .xlsx to w.
func (tt *Timetable) Write(w io.Writer) error {
	f, err := tt.Workbook()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeHeader(f *excelize.File, name string, style int) error {
	header := make([]interface{}, 0, len(schedule.Weekdays)+1)
	header = append(header, timeColHeader)
	for _, d := range schedule.Weekdays {
		header = append(header, d.String())
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return errors.Wrapf(err, "writing %s header", name)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return errors.Wrapf(err, "styling %s header", name)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(name, "A", "A", 14); err != nil {
		return err
	}
	return f.SetColWidth(name, "B", lastCol, 28)
}

func writeSheet(f *excelize.File, sh sheet, headerStyle, cellStyle int) error {
	if err := writeHeader(f, sh.name, headerStyle); err != nil {
		return err
	}

	windows := make([]string, 0)
	seen := make(map[string]struct{})
	cells := make(map[string][]string)
	entries := append([]schedule.Entry(nil), sh.entries...)
	schedule.SortEntries(entries)
	for _, e := range entries {
		if !e.DayOfWeek.Valid() {
			continue
		}
		w := schedule.Window(e.StartTime, e.EndTime)
		if _, ok := seen[w]; !ok {
			windows = append(windows, w)
			seen[w] = struct{}{}
		}
		cell := w + "|" + e.DayOfWeek.String()
		cells[cell] = append(cells[cell], sh.label(e))
	}
	sort.Strings(windows)

	for i, w := range windows {
		row := i + 2
		name, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sh.name, name, w); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
		for col, d := range schedule.Weekdays {
			labels, ok := cells[w+"|"+d.String()]
			if !ok {
				continue
			}
			if name, err = excelize.CoordinatesToCellName(col+2, row); err != nil {
				return err
			}
			if err = f.SetCellValue(sh.name, name, strings.Join(labels, "\n")); err != nil {
				return errors.Wrapf(err, "writing %s", name)
			}
		}
	}

	if len(windows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(schedule.Weekdays)+1, len(windows)+1)
		if err := f.SetCellStyle(sh.name, "A2", last, cellStyle); err != nil {
			return errors.Wrapf(err, "styling %s", sh.name)
		}
	}
	return nil
}
