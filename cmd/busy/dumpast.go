package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/symbol"
)

func newDumpASTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-ast [dir]",
		Short: "Print the parsed declaration tree",
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
			dumpDecl(cmd.OutOrStdout(), mod, 0)
			return nil
		},
	}
	return cmd
}

func dumpDecl(out io.Writer, decl *symbol.Decl, depth int) {
	indent := strings.Repeat("  ", depth)
	extra := ""
	if decl.Type != nil {
		extra = " : " + decl.Type.Name
	}
	fmt.Fprintf(out, "%s%s %s%s\n", indent, decl.Kind.String(), decl.Name, extra)
	for _, child := range decl.Children {
		dumpDecl(out, child, depth+1)
	}
}
