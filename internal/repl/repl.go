// Package repl implements BUSY's interactive shell: a line-accumulating
// front end onto the same parser/evaluator the batch CLI drives, so a
// user can build up a module body interactively and inspect the
// resulting declaration tree without writing a BUSY file to disk.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/parser"
	"github.com/busy-build/busy/internal/symbol"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL accumulates a module body across accepted lines, re-parsing the
// whole buffer from scratch on every new line (the parser evaluates as
// it parses, so there is no separate incremental evaluation step to
// hook into).
type REPL struct {
	version string
	rootDir busymod.Dir
	buffer  []string
	mod     *symbol.Decl
	history []string
}

// New creates a REPL rooted at the current working directory, for
// resolving any subdir/submod/submodule declaration entered at the
// prompt.
func New(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	root, rerr := busymod.Root(dir)
	if rerr != nil {
		root = busymod.Dir{Logical: "//", RDir: ".", FSPath: dir}
	}
	return &REPL{version: version, rootDir: root}
}

// Start runs the read-eval-print loop until EOF or :quit, writing to out.
// Input lines come from the terminal through liner; in is not read.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".busy_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("busy"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(in string) (c []string) {
		if !strings.HasPrefix(in, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":reset", ":dump-ast", ":list", ":load"} {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return c
	})

	for {
		input, err := line.Prompt("busy> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// evalLine tentatively appends input to the buffer and reparses the
// whole module. A parse that raises diagnostics rolls the line back, so
// a bad statement never corrupts the accumulated session.
func (r *REPL) evalLine(input string, out io.Writer) {
	candidate := append(append([]string{}, r.buffer...), input)
	src := strings.Join(candidate, "\n")

	params := paramtable.New()
	modules := busymod.NewLoader(busymod.OSFS{})
	mod, diags := parser.Parse(src, "<repl>", params, modules, r.rootDir, nil)

	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintf(out, "%s %s\n", red("["+d.Code+"]"), d.Report())
		}
		return
	}

	r.buffer = candidate
	r.mod = mod
	fmt.Fprintf(out, "%s\n", green("ok"))
}

func (r *REPL) handleCommand(cmd string, out io.Writer) {
	parts := strings.Fields(cmd)
	switch parts[0] {
	case ":help", ":h":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  :help          Show this help")
		fmt.Fprintln(out, "  :quit          Exit the REPL")
		fmt.Fprintln(out, "  :reset         Clear the accumulated session")
		fmt.Fprintln(out, "  :list          List top-level declarations")
		fmt.Fprintln(out, "  :dump-ast      Print the declaration tree")
		fmt.Fprintln(out, "  :load <file>   Append a file's contents to the session")

	case ":reset":
		r.buffer = nil
		r.mod = nil
		fmt.Fprintf(out, "%s\n", yellow("session cleared"))

	case ":list":
		if r.mod == nil {
			fmt.Fprintln(out, dim("(empty session)"))
			return
		}
		for _, child := range r.mod.Children {
			fmt.Fprintf(out, "  %s %s : %s\n", cyan(child.Kind.String()), child.Name, typeName(child))
		}

	case ":dump-ast":
		if r.mod == nil {
			fmt.Fprintln(out, dim("(empty session)"))
			return
		}
		dumpAST(out, r.mod, 0)

	case ":load":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :load <file>")
			return
		}
		data, err := os.ReadFile(parts[1])
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.evalLine(string(data), out)

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
	}
}

func typeName(d *symbol.Decl) string {
	if d.Type == nil {
		return "?"
	}
	return d.Type.Name
}

// dumpAST prints decl's declaration tree, indented by depth. The
// `busy dump-ast` CLI subcommand uses its own walk, dumpDecl.
func dumpAST(out io.Writer, decl *symbol.Decl, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%s%s %s\n", indent, decl.Kind.String(), decl.Name)
	for _, child := range decl.Children {
		dumpAST(out, child, depth+1)
	}
}
