package backend

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	consoleGreen  = color.New(color.FgGreen).SprintFunc()
	consoleRed    = color.New(color.FgRed).SprintFunc()
	consoleYellow = color.New(color.FgYellow).SprintFunc()
	consoleCyan   = color.New(color.FgCyan).SprintFunc()
	consoleBold   = color.New(color.Bold).SprintFunc()
	consoleDim    = color.New(color.Faint).SprintFunc()
)

// Console is the default Backend: it logs to an io.Writer with
// fatih/color level coloring and invokes the host toolchain via
// os/exec-driven commands supplied by the caller per op.
type Console struct {
	Out  io.Writer
	Host HostInfo

	forkDepth int
	run       func(op BeginOp, params Params) error
}

// NewConsole builds a Console backend writing to os.Stdout, driving
// the host toolchain through run (nil means log-only: no command is
// actually invoked, useful for `busy check`/`busy dump-ast`).
func NewConsole(host HostInfo, run func(op BeginOp, params Params) error) *Console {
	return &Console{Out: os.Stdout, Host: host, run: run}
}

func (c *Console) Log(level Level, file string, row, col int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	loc := ""
	if file != "" && row != 0 {
		loc = fmt.Sprintf("%s:%d:%d: ", file, row, col)
	}
	switch level {
	case Info, Debug:
		fmt.Fprintf(c.Out, "%s%s %s\n", loc, consoleDim("["+level.String()+"]"), msg)
	case Message:
		fmt.Fprintf(c.Out, "%s%s %s\n", loc, consoleCyan("[message]"), msg)
	case Warning:
		fmt.Fprintf(c.Out, "%s%s %s\n", loc, consoleYellow("[warning]"), msg)
	case Error, Critical:
		fmt.Fprintf(c.Out, "%s%s %s\n", loc, consoleRed("["+level.String()+"]"), msg)
	}
}

func (c *Console) BeginOp(op BeginOp, params Params) bool {
	fmt.Fprintf(c.Out, "%s %s\n", consoleGreen(">"), consoleBold(op.String()))
	for _, f := range params.InFile {
		fmt.Fprintf(c.Out, "    %s %s\n", consoleDim("in "), f)
	}
	for _, f := range params.OutFile {
		fmt.Fprintf(c.Out, "    %s %s\n", consoleDim("out"), f)
	}
	if op == EnteringProduct || c.run == nil {
		return true
	}
	if err := c.run(op, params); err != nil {
		c.Log(Error, "", 0, 0, "%s", err)
		return false
	}
	return true
}

func (c *Console) EndOp(op BeginOp) {}

func (c *Console) Fork(n int) {
	if n >= 0 {
		c.forkDepth++
		fmt.Fprintf(c.Out, "%s fork(%d)\n", consoleDim("··"), n)
	} else {
		c.forkDepth--
	}
}

func (c *Console) Kind() Kind { return KindDefault }
