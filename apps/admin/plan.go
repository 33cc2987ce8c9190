package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/trezcool/ratiba/core/schedule"
)

func (cli *commandLine) planCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "plan --file edit.json",
		Short: "Dry-run a class edit: print the changes it would make and the timetable diff",
		Long: `Reconcile a class edit against the stored timetable without writing anything.

The file holds the editor state of one class, as posted to POST /v1/classes.
Validation and conflict errors are reported exactly as a save would report them.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.plan(context.Background(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding the class edit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readClassEdit(path string) (schedule.ClassEdit, error) {
	var edit schedule.ClassEdit
	data, err := os.ReadFile(path)
	if err != nil {
		return edit, errors.Wrap(err, "reading class edit")
	}
	if err = json.Unmarshal(data, &edit); err != nil {
		return edit, errors.Wrapf(err, "decoding %s", path)
	}
	return edit, nil
}

// planned returns the class entries as they would be once plan is applied to existing.
func planned(existing []schedule.Entry, plan schedule.Plan) []schedule.Entry {
	deleted := schedule.NewIDSet(plan.ToDelete...)
	patches := make(map[string]schedule.EntryPatch, len(plan.ToUpdate))
	for _, u := range plan.ToUpdate {
		patches[u.ID] = u.Patch
	}

	entries := make([]schedule.Entry, 0, len(existing)+len(plan.ToCreate))
	for _, e := range existing {
		if deleted.Has(e.ID) {
			continue
		}
		if p, ok := patches[e.ID]; ok {
			e = p.Apply(e)
		}
		entries = append(entries, e)
	}
	for i, ne := range plan.ToCreate {
		entries = append(entries, ne.Entry(fmt.Sprintf("new-%d", i+1)))
	}
	return entries
}

func (cli *commandLine) plan(ctx context.Context, path string) error {
	edit, err := readClassEdit(path)
	if err != nil {
		return err
	}
	plan, err := cli.svc.PlanClass(ctx, edit)
	if err != nil {
		return err
	}

	existing, err := cli.svc.CurrentEntries(ctx, edit)
	if err != nil {
		return err
	}

	colorTitle.Fprintf(cli.out, "Plan for %q: %d to create, %d to update, %d to delete\n",
		edit.ClassName, len(plan.ToCreate), len(plan.ToUpdate), len(plan.ToDelete))
	if plan.Empty() {
		fmt.Fprintln(cli.out, "No changes.")
		return nil
	}
	for _, ne := range plan.ToCreate {
		colorAdded.Fprintf(cli.out, "  + %s\n", ne.Entry(""))
	}
	for _, u := range plan.ToUpdate {
		colorChanged.Fprintf(cli.out, "  ~ entry %s: rename to %q\n", u.ID, *u.Patch.ClassName)
	}
	for _, id := range plan.ToDelete {
		colorRemoved.Fprintf(cli.out, "  - entry %s\n", id)
	}

	names, err := cli.roster.TeacherNames(ctx)
	if err != nil {
		return err
	}
	before := cli.classLines(schedule.GroupEntries(existing), names)
	after := cli.classLines(schedule.GroupEntries(planned(existing, plan)), names)
	sort.Strings(before)
	sort.Strings(after)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(joinLines(before)),
		B:        difflib.SplitLines(joinLines(after)),
		FromFile: "current",
		ToFile:   "planned",
		Context:  3,
	})
	if err != nil {
		return errors.Wrap(err, "diffing timetable")
	}
	fmt.Fprintln(cli.out)
	fmt.Fprint(cli.out, diff)
	return nil
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
