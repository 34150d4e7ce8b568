package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

// buildProduct fabricates a VarDecl+Instance pair shaped like one the
// parser would produce for `let <name> <visi> : Library = { ... }`,
// wired to the given dependency instances via a "deps" field.
func buildProduct(owner *symbol.Decl, name string, visi symbol.Visibility, libClass *symbol.Decl, deps ...*symbol.Instance) *symbol.Decl {
	decl := symbol.NewDecl(symbol.VarDecl, name, symbol.Pos{})
	decl.Visi = visi
	decl.Type = libClass
	decl.Owner = owner
	_ = owner.AddChild(decl)

	inst := symbol.NewInstance(decl)
	inst.Class = libClass
	decl.Inst = inst

	depElems := make([]value.Value, len(deps))
	for i, d := range deps {
		depElems[i] = value.Value{Kind: value.ClassInst, Inst: d}
	}
	inst.Set("deps", value.ListV(depElems))
	return decl
}

func newRoot() (*symbol.Decl, *symbol.Decl) {
	root := symbol.NewDecl(symbol.ModuleDef, "root", symbol.Pos{})
	libClass := symbol.NewDecl(symbol.ClassDecl, "Library", symbol.Pos{})
	return root, libClass
}

func TestCollectFindsEveryProductInTree(t *testing.T) {
	root, libClass := newRoot()
	buildProduct(root, "core", symbol.Public, libClass)
	buildProduct(root, "app", symbol.PublicDefault, libClass)

	products := Collect(root)
	assert.Len(t, products, 2)
}

func TestSelectDefaultsToPublicDefaultProducts(t *testing.T) {
	root, libClass := newRoot()
	buildProduct(root, "core", symbol.Public, libClass)
	app := buildProduct(root, "app", symbol.PublicDefault, libClass)

	products, err := Select(root, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, app, products[0].Decl)
}

func TestSelectByDesignatorIncludesTransitiveDeps(t *testing.T) {
	root, libClass := newRoot()
	core := buildProduct(root, "core", symbol.Public, libClass)
	app := buildProduct(root, "app", symbol.Public, libClass, core.Inst)

	products, err := Select(root, []string{"root.app"})
	require.NoError(t, err)
	require.Len(t, products, 2)

	// core must precede app: a dependency is visited before its dependent.
	assert.Equal(t, "root.core", products[0].Name())
	assert.Equal(t, "root.app", products[1].Name())
}

func TestSelectUnknownDesignatorIsAnError(t *testing.T) {
	root, libClass := newRoot()
	buildProduct(root, "core", symbol.Public, libClass)

	_, err := Select(root, []string{"root.missing"})
	assert.Error(t, err)
}

func TestTopoSortOrdersDependenciesBeforeDependents(t *testing.T) {
	root, libClass := newRoot()
	a := buildProduct(root, "a", symbol.Public, libClass)
	b := buildProduct(root, "b", symbol.Public, libClass, a.Inst)
	c := buildProduct(root, "c", symbol.Public, libClass, b.Inst)

	ordered, err := TopoSort([]Product{
		{Decl: c, Inst: c.Inst, Class: libClass},
		{Decl: a, Inst: a.Inst, Class: libClass},
		{Decl: b, Inst: b.Inst, Class: libClass},
	})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"root.a", "root.b", "root.c"}, []string{
		ordered[0].Name(), ordered[1].Name(), ordered[2].Name(),
	})
}

func TestTopoSortDetectsCycle(t *testing.T) {
	root, libClass := newRoot()
	a := buildProduct(root, "a", symbol.Public, libClass)
	b := buildProduct(root, "b", symbol.Public, libClass, a.Inst)
	// close the cycle: a depends on b, b depends on a.
	a.Inst.Set("deps", value.ListV([]value.Value{{Kind: value.ClassInst, Inst: b.Inst}}))

	_, err := TopoSort([]Product{
		{Decl: a, Inst: a.Inst, Class: libClass},
		{Decl: b, Inst: b.Inst, Class: libClass},
	})
	assert.Error(t, err)
}
