package main

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp       = errors.New("help provided")
	errViolations = errors.New("the timetable breaks scheduling rules")
	errNoSQL      = errors.New("migrations need an SQL database engine")

	colorTitle   = color.New(color.Bold)
	colorMuted   = color.New(color.Faint)
	colorAdded   = color.New(color.FgGreen)
	colorRemoved = color.New(color.FgRed)
	colorChanged = color.New(color.FgYellow)
)

type commandLine struct {
	out    io.Writer
	db     *sqlx.DB // nil unless the engine is SQL
	svc    *schedule.Service
	roster *roster.Service
}

func (cli *commandLine) rootCmd() *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Ratiba operator commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			color.NoColor = noColor || !isTerminalFunc(int(os.Stdout.Fd()))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(cli.migrateCmd())
	root.AddCommand(cli.classesCmd())
	root.AddCommand(cli.auditCmd())
	root.AddCommand(cli.planCmd())
	root.AddCommand(cli.exportCmd())
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}
