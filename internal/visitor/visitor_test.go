package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/selector"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// buildProduct fabricates a VarDecl+Instance pair of the given class,
// wired to deps and seeded with fields, shaped like what the parser's
// installBuiltinClasses + parseVarDecl would produce.
func buildProduct(owner *symbol.Decl, name string, class *symbol.Decl, fields map[string]value.Value, deps ...*symbol.Instance) *symbol.Decl {
	decl := symbol.NewDecl(symbol.VarDecl, name, symbol.Pos{})
	decl.Visi = symbol.Public
	decl.Type = class
	decl.Owner = owner
	_ = owner.AddChild(decl)

	inst := symbol.NewInstance(decl)
	inst.Class = class
	decl.Inst = inst

	for k, v := range fields {
		inst.Set(k, v)
	}
	depElems := make([]value.Value, len(deps))
	for i, d := range deps {
		depElems[i] = value.Value{Kind: value.ClassInst, Inst: d}
	}
	inst.Set("deps", value.ListV(depElems))
	return decl
}

func pathList(paths ...string) value.Value {
	elems := make([]value.Value, len(paths))
	for i, p := range paths {
		elems[i] = value.PathV(p)
	}
	return value.ListV(elems)
}

func newModule(name string) *symbol.Decl {
	return symbol.NewDecl(symbol.ModuleDef, name, symbol.Pos{})
}

func classDecl(name string) *symbol.Decl {
	return symbol.NewDecl(symbol.ClassDecl, name, symbol.Pos{})
}

func TestVisitExecutableCompilesAndLinks(t *testing.T) {
	mod := newModule("root")
	mod.RDir = "build"
	libClass := classDecl("Library")
	exeClass := classDecl("Executable")

	core := buildProduct(mod, "core", libClass, map[string]value.Value{
		"sources": pathList("./core.c"),
		"name":    value.StringV("core"),
	})
	app := buildProduct(mod, "app", exeClass, map[string]value.Value{
		"sources": pathList("./main.c"),
		"name":    value.StringV("app"),
	}, core.Inst)

	products, err := selector.Select(mod, []string{"root.app"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	host := backend.NewHostInfo("gcc", false)
	outs, err := Visit(products, rec, host, "out", nil)
	require.NoError(t, err)

	appOut := outs["root.app"]
	assert.Equal(t, Executable, appOut.Kind)
	assert.Equal(t, "out/build/app", appOut.Path)

	var compiles, links, entering int
	for _, op := range rec.Ops {
		switch op.Op {
		case backend.Compile:
			compiles++
		case backend.LinkExe:
			links++
			assert.Contains(t, op.Params.InFile, "out/build/app/_main.o")
			assert.Contains(t, op.Params.LibFile, "out/build/libcore.a")
		case backend.EnteringProduct:
			entering++
		}
	}
	assert.Equal(t, 2, compiles)
	assert.Equal(t, 1, links)
	assert.Equal(t, 2, entering)

	// core's EnteringProduct must precede app's.
	var coreIdx, appIdx int
	for i, op := range rec.Ops {
		if op.Op == backend.EnteringProduct && len(op.Params.Name) == 1 {
			if op.Params.Name[0] == "root.core" {
				coreIdx = i
			}
			if op.Params.Name[0] == "root.app" {
				appIdx = i
			}
		}
	}
	assert.Less(t, coreIdx, appIdx)
}

func TestVisitLibraryProducesStaticLibByDefault(t *testing.T) {
	mod := newModule("root")
	libClass := classDecl("Library")
	lib := buildProduct(mod, "core", libClass, map[string]value.Value{
		"sources": pathList("./a.c"),
	})

	products, err := selector.Select(mod, []string{"root.core"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	host := backend.NewHostInfo("gcc", false)
	outs, err := Visit(products, rec, host, "out", nil)
	require.NoError(t, err)

	out := outs["root.core"]
	assert.Equal(t, StaticLib, out.Kind)
	assert.Equal(t, "out/libcore.a", out.Path)
	_ = lib
}

func TestVisitDynamicLibraryUsesLinkDll(t *testing.T) {
	mod := newModule("root")
	libClass := classDecl("Library")
	buildProduct(mod, "core", libClass, map[string]value.Value{
		"sources":  pathList("./a.c"),
		"lib_type": value.SymbolV("dynamic"),
	})

	products, err := selector.Select(mod, []string{"root.core"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	outs, err := Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	require.NoError(t, err)

	assert.Equal(t, DynamicLib, outs["root.core"].Kind)
	found := false
	for _, op := range rec.Ops {
		if op.Op == backend.LinkDll {
			found = true
		}
	}
	assert.True(t, found)
}

func TestVisitGroupFlattensDependencyOutputs(t *testing.T) {
	mod := newModule("root")
	libClass := classDecl("Library")
	groupClass := classDecl("Group")

	a := buildProduct(mod, "a", libClass, map[string]value.Value{"sources": pathList("./a.c")})
	b := buildProduct(mod, "b", libClass, map[string]value.Value{"sources": pathList("./b.c")})
	buildProduct(mod, "g", groupClass, nil, a.Inst, b.Inst)

	products, err := selector.Select(mod, []string{"root.g"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	outs, err := Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	require.NoError(t, err)

	g := outs["root.g"]
	require.Equal(t, Mixed, g.Kind)
	require.Len(t, g.Items, 2)
}

func TestVisitSourceSetYieldsObjectFilesByDefault(t *testing.T) {
	mod := newModule("root")
	ssClass := classDecl("SourceSet")
	buildProduct(mod, "s", ssClass, map[string]value.Value{
		"sources": pathList("./a.c", "./b.c"),
	})

	products, err := selector.Select(mod, []string{"root.s"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	outs, err := Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	require.NoError(t, err)

	out := outs["root.s"]
	assert.Equal(t, ObjectFiles, out.Kind)
	assert.Len(t, out.Paths, 2)
}

func TestVisitCancellationAbortsWalk(t *testing.T) {
	mod := newModule("root")
	exeClass := classDecl("Executable")
	buildProduct(mod, "app", exeClass, map[string]value.Value{
		"sources": pathList("./main.c"),
	})

	products, err := selector.Select(mod, []string{"root.app"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	rec.CancelAt(0) // cancel at EnteringProduct, the walk's very first op
	_, err = Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	assert.Error(t, err)
}

func TestVisitMemoizesSharedDependency(t *testing.T) {
	mod := newModule("root")
	libClass := classDecl("Library")
	exeClass := classDecl("Executable")

	shared := buildProduct(mod, "shared", libClass, map[string]value.Value{"sources": pathList("./s.c")})
	a := buildProduct(mod, "a", exeClass, map[string]value.Value{"sources": pathList("./a.c")}, shared.Inst)
	buildProduct(mod, "b", exeClass, map[string]value.Value{"sources": pathList("./b.c")}, shared.Inst, a.Inst)

	products, err := selector.Select(mod, []string{"root.b"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	_, err = Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	require.NoError(t, err)

	sharedEntries := 0
	for _, op := range rec.Ops {
		if op.Op == backend.EnteringProduct && len(op.Params.Name) == 1 && op.Params.Name[0] == "root.shared" {
			sharedEntries++
		}
	}
	assert.Equal(t, 1, sharedEntries)
}
