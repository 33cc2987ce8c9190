package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func mkEntry(id, class, teacher, grade, section string, day Weekday, start, end string) Entry {
	return Entry{
		ID:            id,
		ClassName:     class,
		TeacherID:     teacher,
		GradeSections: []GradeSection{{Grade: grade, Section: section}},
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
	}
}

func mkCandidate(class, teacher, grade, section string, day Weekday, start, end string) Candidate {
	return Candidate{
		ClassName: class,
		TeacherID: teacher,
		Grade:     grade,
		Section:   section,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
}

func slot(day Weekday, start, end string) Schedule {
	return Schedule{DayOfWeek: day, StartTime: start, EndTime: end}
}

func cohort(grade, section, teacher string, slots ...Schedule) GradeSectionSchedule {
	return GradeSectionSchedule{Grade: grade, Section: section, TeacherID: teacher, Schedules: slots}
}
