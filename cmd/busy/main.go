package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version info, set by ldflags during build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "busy",
		Short:         "busy builds C/C++ projects from BUSY files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newBuildCommand(),
		newListCommand(),
		newGraphCommand(),
		newCheckCommand(),
		newDumpASTCommand(),
		newReplCommand(),
		newVersionCommand(),
	)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "busy %s\n", bold(Version))
			if Commit != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", Commit)
			}
			if BuildTime != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", BuildTime)
			}
			return nil
		},
	}
}

func fatalf(cmd *cobra.Command, format string, args ...interface{}) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", red("error"), fmt.Sprintf(format, args...))
	return fmt.Errorf(format, args...)
}
