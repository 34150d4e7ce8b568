package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/selector"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

func newGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [dir] [designator...]",
		Short: "Print the selected products' build order and dependency edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			var designators []string
			if len(args) > 0 {
				dir = args[0]
				designators = args[1:]
			}

			mod, diags, err := loadModule(dir, paramtable.New())
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

			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Name())
				for _, dep := range directDeps(p, products) {
					fmt.Fprintf(cmd.OutOrStdout(), "  -> %s\n", dep)
				}
			}
			return nil
		},
	}
	return cmd
}

// directDeps names p's `.deps` targets, filtered to those present in the
// selected set (so forward references outside the selection are omitted
// rather than printed dangling).
func directDeps(p selector.Product, all []selector.Product) []string {
	byInst := make(map[*symbol.Instance]string, len(all))
	for _, q := range all {
		byInst[q.Inst] = q.Name()
	}

	raw, ok := p.Inst.Get("deps")
	if !ok {
		return nil
	}
	depsVal, ok := raw.(value.Value)
	if !ok || depsVal.Kind != value.List {
		return nil
	}

	var out []string
	for _, elem := range depsVal.Elems {
		if elem.Kind != value.ClassInst || elem.Inst == nil {
			continue
		}
		if name, ok := byInst[elem.Inst]; ok {
			out = append(out, name)
		}
	}
	return out
}
