package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/ratiba/services/export"
)

func (cli *commandLine) exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the weekly timetable workbook: one sheet per grade/section and one per teacher",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.export(context.Background(), out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "timetable.xlsx", "Output file")
	return cmd
}

func (cli *commandLine) export(ctx context.Context, path string) error {
	entries, err := cli.svc.ListEntries(ctx)
	if err != nil {
		return err
	}
	names, err := cli.roster.TeacherNames(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating workbook file")
	}
	if err = exportsvc.NewTimetable(entries, names).Write(f); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "writing workbook")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing workbook file")
	}

	fmt.Fprintf(cli.out, "Wrote %d entries to %s\n", len(entries), path)
	return nil
}
