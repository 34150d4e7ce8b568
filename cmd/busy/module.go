package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/parser"
	"github.com/busy-build/busy/internal/symbol"
)

// loadModule reads and parses the BUSY file at root's top level, resolving
// every subdir/submod/submodule declaration it names along the way.
func loadModule(root string, params *paramtable.Table) (*symbol.Decl, []*errors.Diagnostic, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}

	dir, err := busymod.Root(abs)
	if err != nil {
		return nil, nil, err
	}

	dir.BUSYPath = filepath.Join(dir.FSPath, busymod.BUSYFileName)
	data, err := os.ReadFile(dir.BUSYPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s: %w", dir.BUSYPath, err)
	}

	modules := busymod.NewLoader(busymod.OSFS{})
	mod, diags := parser.Parse(string(data), dir.BUSYPath, params, modules, dir, nil)
	if len(diags) == 0 {
		if verr := params.Validate(); verr != nil {
			diags = append(diags, errors.New(errors.SEM009, errors.Pos{}, "%s", verr.Error()))
		}
	}
	return mod, diags, nil
}

func printDiagnostics(diags []*errors.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", d.Code, d.Report())
	}
}
