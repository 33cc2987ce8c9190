package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

const (
	classNameParam = "class_name"
	teacherIDParam = "teacher_id"
	subjectIDParam = "subject_id"

	requiredText = "this field is required"
)

// bindClassKey reads the class identity from the query string. Both parts are required.
func bindClassKey(ctx echo.Context) (schedule.ClassKey, error) {
	key := schedule.ClassKey{
		ClassName: core.CleanString(ctx.QueryParam(classNameParam)),
		TeacherID: strings.TrimSpace(ctx.QueryParam(teacherIDParam)),
	}

	var flds []core.FieldError
	if key.ClassName == "" {
		flds = append(flds, core.FieldError{Field: classNameParam, Error: requiredText})
	}
	if key.TeacherID == "" {
		flds = append(flds, core.FieldError{Field: teacherIDParam, Error: requiredText})
	}
	if len(flds) > 0 {
		return schedule.ClassKey{}, core.NewValidationError(nil, flds...)
	}
	return key, nil
}
