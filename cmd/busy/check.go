package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/paramtable"
)

func newCheckCommand() *cobra.Command {
	var paramFlags []string
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse and type-check a BUSY module tree without building it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			params := paramtable.New()
			if err := applyParamFlags(params, paramFlags); err != nil {
				return fatalf(cmd, "%s", err)
			}

			_, diags, err := loadModule(dir, params)
			if err != nil {
				return fatalf(cmd, "%s", err)
			}
			if len(diags) > 0 {
				printDiagnostics(diags)
				return fatalf(cmd, "%d error(s)", len(diags))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s no errors found\n", green("ok"))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "set a parameter table entry as name=value")
	return cmd
}

func applyParamFlags(params *paramtable.Table, flags []string) error {
	for _, kv := range flags {
		key, value, ok := splitKV(kv)
		if !ok {
			return fmt.Errorf("invalid --param %q: expected name=value", kv)
		}
		params.Set(key, value)
	}
	return nil
}

func splitKV(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
