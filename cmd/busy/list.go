package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/selector"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List every product instance in a BUSY module tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			mod, diags, err := loadModule(dir, paramtable.New())
			if err != nil {
				return fatalf(cmd, "%s", err)
			}
			if len(diags) > 0 {
				printDiagnostics(diags)
				return fatalf(cmd, "%d error(s)", len(diags))
			}

			products := selector.Collect(mod)
			for _, p := range products {
				class := "?"
				if p.Class != nil {
					class = p.Class.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s : %s\n", p.Name(), class)
			}
			return nil
		},
	}
	return cmd
}
