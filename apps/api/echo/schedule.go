package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/services/export"
)

type (
	// CheckSlotRequest asks whether a single slot can be booked.
	// ExcludeIDs are usually the entries of the class being edited.
	CheckSlotRequest struct {
		schedule.Candidate
		ExcludeIDs []string `json:"exclude_ids"`
	}

	CheckSlotResponse struct {
		OK       bool                     `json:"ok"`
		Message  string                   `json:"message,omitempty"`
		Conflict *schedule.ConflictReport `json:"conflict,omitempty"`
	}

	scheduleApi struct {
		svc    *schedule.Service
		roster *roster.Service
	}
)

func registerScheduleAPI(g *echo.Group, svc *schedule.Service, rosterSvc *roster.Service) {
	api := scheduleApi{svc: svc, roster: rosterSvc}

	cg := g.Group("/classes")
	cg.GET("", api.queryClasses)
	cg.GET("/edit", api.editClass)
	cg.POST("", api.saveClass)
	cg.POST("/plan", api.planClass)
	cg.DELETE("", api.deleteClass)

	g.GET("/entries", api.queryEntries)
	g.GET("/entries/:id/students", api.enrolledStudents)
	g.POST("/conflicts/check", api.checkSlot)
	g.GET("/audit", api.audit)
	g.GET("/timetable.xlsx", api.exportTimetable)
}

// Handlers

func (api *scheduleApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.ListClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

// editClass returns the editor state of a class. subject_id is echoed back since entries do not store it.
func (api *scheduleApi) editClass(ctx echo.Context) error {
	key, err := bindClassKey(ctx)
	if err != nil {
		return err
	}
	lc, err := api.svc.GetClass(ctx.Request().Context(), key)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, lc.Edit(ctx.QueryParam(subjectIDParam)))
}

func (api *scheduleApi) saveClass(ctx echo.Context) error {
	var data schedule.ClassEdit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassEdit")
	}

	res, err := api.svc.SaveClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving class")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *scheduleApi) planClass(ctx echo.Context) error {
	var data schedule.ClassEdit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassEdit")
	}

	plan, err := api.svc.PlanClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "planning class")
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *scheduleApi) deleteClass(ctx echo.Context) error {
	key, err := bindClassKey(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.DeleteClass(ctx.Request().Context(), key); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) queryEntries(ctx echo.Context) error {
	entries, err := api.svc.ListEntries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *scheduleApi) enrolledStudents(ctx echo.Context) error {
	students, err := api.svc.EnrolledStudents(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting enrolled students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *scheduleApi) checkSlot(ctx echo.Context) error {
	var data CheckSlotRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckSlotRequest")
	}

	report, err := api.svc.CheckSlot(ctx.Request().Context(), data.Candidate, data.ExcludeIDs...)
	if err != nil {
		return errors.Wrap(err, "checking slot")
	}
	if report == nil {
		return ctx.JSON(http.StatusOK, CheckSlotResponse{OK: true})
	}
	return ctx.JSON(http.StatusOK, CheckSlotResponse{Message: report.Message(), Conflict: report})
}

func (api *scheduleApi) audit(ctx echo.Context) error {
	violations, err := api.svc.Audit(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "auditing entries")
	}
	return ctx.JSON(http.StatusOK, violations)
}

func (api *scheduleApi) exportTimetable(ctx echo.Context) error {
	entries, err := api.svc.ListEntries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}
	names, err := api.roster.TeacherNames(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}

	var buf bytes.Buffer
	if err = exportsvc.NewTimetable(entries, names).Write(&buf); err != nil {
		return errors.Wrap(err, "writing timetable")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "timetable.xlsx"))
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}
