package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trezcool/ratiba/core/schedule"
)

func (cli *commandLine) classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print every logical class with its cohorts and weekly slots",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.classes(context.Background())
		},
	}
}

func (cli *commandLine) auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check the stored timetable for double bookings and malformed entries",
		Long: `Scan every stored entry for teacher or cohort double bookings and malformed entries.

Exits with status 1 when a violation is found.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.audit(context.Background())
		},
	}
}

func (cli *commandLine) teacherName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

// classLines renders the slots of classes, one line per entry, cohort first.
func (cli *commandLine) classLines(classes []schedule.LogicalClass, names map[string]string) []string {
	lines := make([]string, 0)
	for _, lc := range classes {
		for _, gss := range lc.GradeSections {
			gs := schedule.GradeSection{Grade: gss.Grade, Section: gss.Section}
			schs := append([]schedule.Schedule(nil), gss.Schedules...)
			schedule.SortSchedules(schs)
			for _, sch := range schs {
				lines = append(lines, fmt.Sprintf("%-12s %-9s %s  %s (%s)",
					gs, sch.DayOfWeek, schedule.Window(sch.StartTime, sch.EndTime), lc.ClassName, cli.teacherName(names, gss.TeacherID)))
			}
		}
	}
	return lines
}

func (cli *commandLine) classes(ctx context.Context) error {
	classes, err := cli.svc.ListClasses(ctx)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		fmt.Fprintln(cli.out, "No classes scheduled.")
		return nil
	}
	names, err := cli.roster.TeacherNames(ctx)
	if err != nil {
		return err
	}

	for _, lc := range classes {
		days := make([]string, 0)
		for _, d := range lc.Days() {
			days = append(days, d.String())
		}
		colorTitle.Fprintf(cli.out, "%s (%s)", lc.ClassName, cli.teacherName(names, lc.TeacherID))
		colorMuted.Fprintf(cli.out, "  %d slots, %s\n", len(lc.EntryIDs), strings.Join(days, ", "))
		for _, line := range cli.classLines([]schedule.LogicalClass{lc}, names) {
			fmt.Fprintf(cli.out, "  %s\n", line)
		}
	}
	return nil
}

func (cli *commandLine) audit(ctx context.Context) error {
	violations, err := cli.svc.Audit(ctx)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		colorAdded.Fprintln(cli.out, "No violations found.")
		return nil
	}

	for _, v := range violations {
		colorRemoved.Fprintf(cli.out, "[%s] ", v.Kind)
		fmt.Fprintf(cli.out, "%s\n", v.Message)
		colorMuted.Fprintf(cli.out, "  entries: %s\n", strings.Join(v.EntryIDs, ", "))
	}
	fmt.Fprintf(cli.out, "%d violation(s)\n", len(violations))
	return errViolations
}
