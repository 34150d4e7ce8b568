package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/repl"
)

func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive BUSY shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			repl.New(Version).Start(os.Stdin, cmd.OutOrStdout())
			return nil
		},
	}
}
