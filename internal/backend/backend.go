// Package backend defines the consumer interface the build-graph
// visitor (internal/visitor) drives: a logger for diagnostics and a
// Backend for the begin-op/param/end-op/fork operation stream. BUSY's
// core never invokes a compiler or writes a project file directly; it
// only ever calls through this interface, so the same walk drives a
// real toolchain, a qmake emitter, or a test double.
package backend

import "fmt"

// Level is a logger severity: Info, Debug, Message, Warning, Error, or
// Critical.
type Level int

const (
	Info Level = iota
	Debug
	Message
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Message:
		return "message"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Logger receives diagnostics from every pipeline phase. file=="" and
// row==0 mean "no location".
type Logger interface {
	Log(level Level, file string, row, col int, format string, args ...interface{})
}

// BeginOp identifies one of the visitor's emitted operations.
// EnteringProduct is informational and has no matching EndOp.
type BeginOp int

const (
	Compile BeginOp = iota
	LinkExe
	LinkDll
	LinkLib
	RunMoc
	RunRcc
	RunUic
	RunLua
	Copy
	EnteringProduct
)

func (op BeginOp) String() string {
	switch op {
	case Compile:
		return "Compile"
	case LinkExe:
		return "LinkExe"
	case LinkDll:
		return "LinkDll"
	case LinkLib:
		return "LinkLib"
	case RunMoc:
		return "RunMoc"
	case RunRcc:
		return "RunRcc"
	case RunUic:
		return "RunUic"
	case RunLua:
		return "RunLua"
	case Copy:
		return "Copy"
	case EnteringProduct:
		return "EnteringProduct"
	default:
		return fmt.Sprintf("BeginOp(%d)", int(op))
	}
}

// Params is one op's parameter bag: infile, outfile, cflag, define,
// include_dir, ldflag, lib_dir, lib_name, lib_file, framework, defFile,
// name, arg. Every field is a list: the wire alphabet allows repeating
// a parameter (e.g. multiple cflag entries).
type Params struct {
	InFile     []string
	OutFile    []string
	CFlag      []string
	Define     []string
	IncludeDir []string
	LdFlag     []string
	LibDir     []string
	LibName    []string
	LibFile    []string
	Framework  []string
	DefFile    []string
	Name       []string
	Arg        []string
}

// Backend is the pluggable consumer of the visitor's op stream. Kind
// reports what output shape a SourceSet should hand to its dependents:
// most backends want raw ObjectFiles, a qmake-style backend wants a
// prebuilt SourceSetLib instead.
type Backend interface {
	Logger

	// BeginOp starts an operation; returning false cancels the walk.
	// EnteringProduct has no matching EndOp call.
	BeginOp(op BeginOp, params Params) bool
	EndOp(op BeginOp)

	// Fork announces n parallelizable subordinate operations opening
	// a group, or closes the current group when n < 0. Advisory only.
	Fork(n int)

	Kind() Kind
}

// Kind distinguishes the one backend behavior the visitor special-cases:
// how a SourceSet's compiled objects should reach its dependents.
type Kind int

const (
	// KindDefault backends receive a SourceSet's raw ObjectFiles.
	KindDefault Kind = iota
	// KindQMake backends receive a prebuilt SourceSetLib archive instead.
	KindQMake
)

// HostInfo is the out-of-scope host-detection table, modeled purely as
// a consumer interface so the visitor and its backends can be exercised
// without reimplementing OS probing.
type HostInfo interface {
	// Toolchain names the active compiler family ("gcc", "clang", "msvc").
	Toolchain() string
	// ObjExt/LibExt/ExeExt are the platform's file extensions for
	// object files, library archives, and executables.
	ObjExt() string
	LibExt() string
	ExeExt() string
	// LibPrefix is "lib" on non-Windows hosts, "" on Windows.
	LibPrefix() string
	IsWindows() bool
}
