package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/selector"
	"github.com/busy-build/busy/internal/visitor"
)

func newBuildCommand() *cobra.Command {
	var (
		buildDir   string
		toolchain  string
		windows    bool
		paramFlags []string
		ctDefaults string
		jsonOut    bool
	)
	cmd := &cobra.Command{
		Use:   "build [dir] [designator...]",
		Short: "Walk the selected products and emit the backend's operation stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			var designators []string
			if len(args) > 0 {
				dir = args[0]
				designators = args[1:]
			}

			params := paramtable.New()
			if err := applyParamFlags(params, paramFlags); err != nil {
				return fatalf(cmd, "%s", err)
			}

			mod, diags, err := loadModule(dir, params)
			if err != nil {
				return fatalf(cmd, "%s", err)
			}
			if len(diags) > 0 {
				printDiagnostics(diags)
				return fatalf(cmd, "%d error(s)", len(diags))
			}

			products, err := selector.Select(mod, designators)
			if err != nil {
				return fatalf(cmd, "%s", err)
			}

			host := backend.NewHostInfo(toolchain, windows)
			be := backend.NewConsole(host, nil)
			be.Out = cmd.OutOrStdout()
			if jsonOut {
				be.Out = io.Discard
			}

			var ct backend.CTDefaults
			if ctDefaults != "" {
				var err error
				ct, err = backend.LoadCTDefaults(ctDefaults)
				if err != nil {
					return fatalf(cmd, "%s", err)
				}
			}

			outs, err := visitor.Visit(products, be, host, buildDir, ct)
			if err != nil {
				return fatalf(cmd, "%s", err)
			}

			if jsonOut {
				plan, err := visitor.Plan(outs)
				if err != nil {
					return fatalf(cmd, "%s", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(plan))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s built %d product(s)\n", green("✓"), len(products))
			return nil
		},
	}
	cmd.Flags().StringVar(&buildDir, "build-dir", "build", "root build output directory")
	cmd.Flags().StringVar(&toolchain, "toolchain", "gcc", "active toolchain name (gcc, clang, msvc)")
	cmd.Flags().BoolVar(&windows, "windows", false, "use Windows file-extension conventions")
	cmd.Flags().StringVar(&ctDefaults, "ctdefaults", "", "path to a toolchain.yaml default-flags table")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "set a parameter table entry as name=value")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the resulting build plan as busy.plan/v1 JSON instead of running the backend")
	return cmd
}
