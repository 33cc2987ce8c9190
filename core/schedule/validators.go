package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	hhmmTag  = "hhmm"
	hhmmText = "{0} must be a time in HH:MM 24-hour format"

	weekdayTag  = "weekday"
	weekdayText = "{0} must be a day of the week, Monday to Sunday"

	timeOrderTag  = "timeorder"
	timeOrderText = "{0} must be later than the start time"

	noCohortsText   = "select at least one grade/section"
	noSlotsText     = "add at least one schedule slot"
	noTeacherText   = "assign a teacher"
	noClassNameText = "enter a class name"
	noSubjectText   = "select a subject"

	mixedEntriesText = "entries belong to more than one class, reload the class and retry"
	staleEntriesText = "the class was deleted since it was opened, reload and retry"
	classTakenText   = "class %q already exists for this teacher, open it to edit"

	cohortPathRegex = regexp.MustCompile(`^grade_sections\[(\d+)\](?:\.schedules\[(\d+)\])?`)
)

// InitValidators registers the scheduling validation tags. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	validate.RegisterStructValidation(scheduleStructValidation, Schedule{})
	validate.RegisterStructValidation(candidateStructValidation, Candidate{})
	core.RegisterCustomTranslation(validate, translator, timeOrderTag, timeOrderText)
}

func hhmmValidation(fl validator.FieldLevel) bool {
	return ValidClock(fl.Field().String())
}

func weekdayValidation(fl validator.FieldLevel) bool {
	return Weekday(fl.Field().String()).Valid()
}

func scheduleStructValidation(sl validator.StructLevel) {
	sch := sl.Current().Interface().(Schedule)
	if ValidClock(sch.StartTime) && ValidClock(sch.EndTime) && sch.StartTime >= sch.EndTime {
		sl.ReportError(sch.EndTime, "end_time", "EndTime", timeOrderTag, "")
	}
}

func candidateStructValidation(sl validator.StructLevel) {
	c := sl.Current().Interface().(Candidate)
	if ValidClock(c.StartTime) && ValidClock(c.EndTime) && c.StartTime >= c.EndTime {
		sl.ReportError(c.EndTime, "end_time", "EndTime", timeOrderTag, "")
	}
}

// Validate checks the edit before any store access.
// Every failure is reported against its JSON field path, e.g. `grade_sections[1].schedules[0].end_time`,
// with a message naming the grade/section and slot concerned.
func (edit ClassEdit) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidationFields(validate.Struct(edit), translator, func(path string, fe validator.FieldError) string {
		return edit.describe(path, fe, translator)
	})
}

func (edit ClassEdit) describe(path string, fe validator.FieldError, translator ut.Translator) string {
	switch {
	case path == "class_name" && fe.Tag() == "required":
		return noClassNameText
	case path == "subject_id" && fe.Tag() == "required":
		return noSubjectText
	case path == "grade_sections" && fe.Tag() == "min":
		return noCohortsText
	}

	var msg string
	switch {
	case strings.HasSuffix(path, ".schedules") && fe.Tag() == "min":
		msg = noSlotsText
	case strings.HasSuffix(path, ".teacher_id") && fe.Tag() == "required":
		msg = noTeacherText
	default:
		msg = fe.Translate(translator)
	}

	if where := edit.location(path); where != "" {
		return where + ": " + msg
	}
	return msg
}

// location names the cohort, and the slot if any, that a field path points into.
func (edit ClassEdit) location(path string) string {
	m := cohortPathRegex.FindStringSubmatch(path)
	if m == nil {
		return ""
	}

	ci, _ := strconv.Atoi(m[1])
	if ci >= len(edit.GradeSections) {
		return ""
	}
	gss := edit.GradeSections[ci]
	where := fmt.Sprintf("grade/section #%d", ci+1)
	if gss.Grade != "" && gss.Section != "" {
		where = GradeSection{Grade: gss.Grade, Section: gss.Section}.String()
	}

	if m[2] == "" {
		return where
	}
	si, _ := strconv.Atoi(m[2])
	if si >= len(gss.Schedules) {
		return where
	}
	sch := gss.Schedules[si]
	slot := fmt.Sprintf("slot #%d", si+1)
	if sch.DayOfWeek.Valid() {
		slot = sch.DayOfWeek.String()
		if sch.StartTime != "" || sch.EndTime != "" {
			slot += " " + Window(sch.StartTime, sch.EndTime)
		}
	}
	return where + ", " + slot
}

// Validate checks a single slot outside of a class edit.
func (c Candidate) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidationFields(validate.Struct(c), translator, nil)
}
