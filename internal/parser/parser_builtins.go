package parser

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/busy-build/busy/internal/errors"
	buspath "github.com/busy-build/busy/internal/path"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// builtinID enumerates BUSY's built-in procedures.
type builtinID int

const (
	bSameList builtinID = iota + 1
	bSameSet
	bToInt
	bToReal
	bToString
	bToPath
	_ // 7 reserved, no builtin assigned
	bError
	bWarning
	bMessage
	bDump
	bAbspath
	bRelpath
	bReadstring
	bTrycompile
	bBuildDir
	bModname
	bSetDefaults
)

var builtinNames = map[string]builtinID{
	"same_list":    bSameList,
	"same_set":     bSameSet,
	"toint":        bToInt,
	"toreal":       bToReal,
	"tostring":     bToString,
	"topath":       bToPath,
	"error":        bError,
	"warning":      bWarning,
	"message":      bMessage,
	"dump":         bDump,
	"abspath":      bAbspath,
	"relpath":      bRelpath,
	"readstring":   bReadstring,
	"trycompile":   bTrycompile,
	"build_dir":    bBuildDir,
	"modname":      bModname,
	"set_defaults": bSetDefaults,
}

// dispatchCall handles `designator '(' args ')'` for built-in procedure
// calls; macro calls are intercepted earlier by their callers since
// macro arguments capture raw token chains rather than evaluated values.
// A designator that resolves to neither is a semantic error.
func (p *Parser) dispatchCall(decl *symbol.Decl, args []value.Value) value.Value {
	if decl != nil {
		name := decl.Name
		if id, ok := builtinNames[name]; ok {
			return p.callBuiltin(id, name, args)
		}
		pos := decl.Position()
		p.fail(errors.SEM003, errors.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, "%q is not callable", name)
	}
	return value.Value{}
}

func (p *Parser) callBuiltin(id builtinID, name string, args []value.Value) value.Value {
	switch id {
	case bSameList:
		if len(args) != 2 {
			return p.builtinArity(name, 2, len(args))
		}
		return value.BoolV(sameList(args[0], args[1]))
	case bSameSet:
		if len(args) != 2 {
			return p.builtinArity(name, 2, len(args))
		}
		return value.BoolV(sameSet(args[0], args[1]))
	case bToInt:
		if len(args) != 1 || args[0].Kind != value.Real {
			return p.builtinArgError(name, "(real) -> int")
		}
		return value.IntV(int64(args[0].R))
	case bToReal:
		if len(args) != 1 || args[0].Kind != value.Int {
			return p.builtinArgError(name, "(int) -> real")
		}
		return value.RealV(float64(args[0].I))
	case bToString:
		if len(args) != 1 {
			return p.builtinArity(name, 1, len(args))
		}
		return value.StringV(args[0].String())
	case bToPath:
		if len(args) != 1 || args[0].Kind != value.String {
			return p.builtinArgError(name, "(string) -> path")
		}
		norm, status := buspath.Normalize(args[0].S)
		if status != buspath.OK {
			p.fail(errors.PTH002, errors.Pos{}, "topath(%q): %s", args[0].S, status)
			return value.Value{}
		}
		return value.PathV(norm)
	case bError:
		p.logLevel("error", args)
		if !p.skip() {
			p.fail(errors.BAK002, errors.Pos{}, "%s", joinArgs(args))
		}
		return value.Value{}
	case bWarning:
		p.logLevel("warning", args)
		return value.Value{}
	case bMessage:
		p.logLevel("message", args)
		return value.Value{}
	case bDump:
		if !p.skip() {
			fmt.Fprintln(os.Stderr, joinArgs(args))
		}
		return value.Value{}
	case bAbspath:
		return p.builtinAbspath(args)
	case bRelpath:
		return p.builtinRelpath(args)
	case bReadstring:
		if p.skip() {
			return value.StringV("")
		}
		if len(args) != 1 || args[0].Kind != value.Path {
			return p.builtinArgError(name, "(path) -> string")
		}
		data, err := os.ReadFile(buspath.Denormalize(args[0].S))
		if err != nil {
			p.fail(errors.RES002, errors.Pos{}, "readstring(%q): %v", args[0].S, err)
			return value.StringV("")
		}
		return value.StringV(normalizeWhitespace(string(data)))
	case bTrycompile:
		if p.skip() {
			return value.BoolV(true)
		}
		return value.BoolV(p.tryCompile(args))
	case bBuildDir:
		return value.PathV(p.buildDir())
	case bModname:
		return p.builtinModname(args)
	case bSetDefaults:
		// Config attachment is a visitor-time concern; at parse time
		// set_defaults only validates its argument shape.
		if len(args) != 2 || args[0].Kind != value.Symbol {
			return p.builtinArgError(name, "(symbol, Config) -> ()")
		}
		return value.Value{}
	default:
		p.fail(errors.SEM011, errors.Pos{}, "unknown built-in %q", name)
		return value.Value{}
	}
}

func (p *Parser) builtinArity(name string, want, got int) value.Value {
	p.fail(errors.SEM011, errors.Pos{}, "%s expects %d argument(s), got %d", name, want, got)
	return value.Value{}
}

func (p *Parser) builtinArgError(name, sig string) value.Value {
	p.fail(errors.SEM011, errors.Pos{}, "%s: argument types do not match %s", name, sig)
	return value.Value{}
}

func (p *Parser) logLevel(level string, args []value.Value) {
	if p.skip() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", level, joinArgs(args))
}

func joinArgs(args []value.Value) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a.String()
	}
	return s
}

func sameList(a, b value.Value) bool {
	if a.Kind != value.List || b.Kind != value.List || len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !value.Equal(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

func sameSet(a, b value.Value) bool {
	if a.Kind != value.List || b.Kind != value.List {
		return false
	}
	contains := func(list []value.Value, v value.Value) bool {
		for _, e := range list {
			if value.Equal(e, v) {
				return true
			}
		}
		return false
	}
	for _, e := range a.Elems {
		if !contains(b.Elems, e) {
			return false
		}
	}
	for _, e := range b.Elems {
		if !contains(a.Elems, e) {
			return false
		}
	}
	return true
}

// builtinAbspath implements the three abspath overloads: (), (path), and
// (module, path) -> path, each expanding a path relative to the named (or
// current) module's logical directory.
func (p *Parser) builtinAbspath(args []value.Value) value.Value {
	dir := p.currentModuleDir()
	rel := "."
	switch len(args) {
	case 0:
	case 1:
		if args[0].Kind != value.Path {
			return p.builtinArgError("abspath", "(path) -> path")
		}
		rel = args[0].S
	case 2:
		if args[0].Kind != value.ModuleRef || args[1].Kind != value.Path {
			return p.builtinArgError("abspath", "(module, path) -> path")
		}
		if args[0].Mod != nil {
			dir.Logical = args[0].Mod.Dir
		}
		rel = args[1].S
	default:
		return p.builtinArity("abspath", 1, len(args))
	}
	joined, status := buspath.Join(dir.Logical, rel)
	if status != buspath.OK {
		p.fail(errors.PTH002, errors.Pos{}, "abspath: %s", status)
		return value.Value{}
	}
	return value.PathV(joined)
}

// builtinRelpath implements (), (module) -> path: the named (or current)
// module's logical directory.
func (p *Parser) builtinRelpath(args []value.Value) value.Value {
	dir := p.currentModuleDir()
	switch len(args) {
	case 0:
	case 1:
		if args[0].Kind != value.ModuleRef || args[0].Mod == nil {
			return p.builtinArgError("relpath", "(module) -> path")
		}
		dir.Logical = args[0].Mod.Dir
	default:
		return p.builtinArity("relpath", 1, len(args))
	}
	return value.PathV(dir.Logical)
}

// builtinModname implements (), (module) -> string: the module's short
// label (its leaf directory name).
func (p *Parser) builtinModname(args []value.Value) value.Value {
	dir := p.currentModuleDir()
	switch len(args) {
	case 0:
	case 1:
		if args[0].Kind != value.ModuleRef || args[0].Mod == nil {
			return p.builtinArgError("modname", "(module) -> string")
		}
		return value.StringV(args[0].Mod.DirName)
	default:
		return p.builtinArity("modname", 1, len(args))
	}
	return value.StringV(dir.DirName)
}

// buildDir joins the configured root build directory with the current
// module's logical-relative directory.
func (p *Parser) buildDir() string {
	dir := p.currentModuleDir()
	joined, status := buspath.Join(p.rootBuildDir(), dir.RDir)
	if status != buspath.OK {
		return dir.RDir
	}
	return joined
}

func (p *Parser) rootBuildDir() string {
	if p.RootBuildDir == "" {
		return "."
	}
	return p.RootBuildDir
}

// tryCompile invokes the host C compiler against a throwaway source file
// to probe for a flag/include/define combination.
func (p *Parser) tryCompile(args []value.Value) bool {
	if len(args) == 0 || args[0].Kind != value.String {
		p.builtinArgError("trycompile", "(string, list<string>?, list<path>?, list<string>?) -> bool")
		return false
	}
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	tmp, err := os.CreateTemp("", "busy-trycompile-*.c")
	if err != nil {
		return false
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	if _, err := tmp.WriteString(args[0].S); err != nil {
		return false
	}

	ccArgs := []string{"-c", tmp.Name(), "-o", os.DevNull}
	if len(args) > 1 && args[1].Kind == value.List {
		for _, f := range args[1].Elems {
			ccArgs = append(ccArgs, f.S)
		}
	}
	if len(args) > 2 && args[2].Kind == value.List {
		for _, inc := range args[2].Elems {
			ccArgs = append(ccArgs, "-I"+buspath.Denormalize(inc.S))
		}
	}
	if len(args) > 3 && args[3].Kind == value.List {
		for _, d := range args[3].Elems {
			ccArgs = append(ccArgs, "-D"+d.S)
		}
	}

	cmd := exec.Command(cc, ccArgs...)
	return cmd.Run() == nil
}

func normalizeWhitespace(s string) string {
	out := make([]rune, 0, len(s))
	prevSpace := false
	for _, r := range s {
		switch r {
		case '\\':
			out = append(out, '\\', '\\')
			prevSpace = false
		case '"':
			out = append(out, '\\', '"')
			prevSpace = false
		case ' ', '\t', '\n', '\r':
			if !prevSpace {
				out = append(out, ' ')
			}
			prevSpace = true
		default:
			out = append(out, r)
			prevSpace = false
		}
	}
	return string(out)
}
