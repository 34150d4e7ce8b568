package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChildRegistersByName(t *testing.T) {
	mod := NewDecl(ModuleDef, "app", Pos{File: "app/BUSY", Line: 1})
	v := NewDecl(VarDecl, "x", Pos{File: "app/BUSY", Line: 2})
	require.NoError(t, mod.AddChild(v))

	got, ok := mod.Lookup("x")
	assert.True(t, ok)
	assert.Same(t, v, got)
	assert.Same(t, mod, v.Owner)
}

func TestAddChildDuplicateNameErrors(t *testing.T) {
	mod := NewDecl(ModuleDef, "app", Pos{})
	require.NoError(t, mod.AddChild(NewDecl(VarDecl, "x", Pos{})))
	err := mod.AddChild(NewDecl(VarDecl, "x", Pos{File: "app/BUSY", Line: 3}))
	assert.Error(t, err)
}

func TestQualifiedNameWalksOwnerChain(t *testing.T) {
	root := NewDecl(ModuleDef, "app", Pos{})
	sub := NewDecl(ModuleDef, "lib", Pos{})
	require.NoError(t, root.AddChild(sub))
	p := NewDecl(VarDecl, "version", Pos{})
	p.RW = RWParam
	require.NoError(t, sub.AddChild(p))

	assert.Equal(t, "app.lib.version", p.QualifiedName())
}

func TestVisibilityFromSuffix(t *testing.T) {
	assert.Equal(t, Private, VisibilityFromSuffix(""))
	assert.Equal(t, Protected, VisibilityFromSuffix("-"))
	assert.Equal(t, Public, VisibilityFromSuffix("*"))
	assert.Equal(t, PublicDefault, VisibilityFromSuffix("!"))
}

func TestReadWriteReadOnly(t *testing.T) {
	assert.True(t, RWLet.ReadOnly())
	assert.True(t, RWParam.ReadOnly())
	assert.False(t, RWVar.ReadOnly())
}

func TestInstanceSetPreservesOrder(t *testing.T) {
	decl := NewDecl(ClassDecl, "Point", Pos{})
	in := NewInstance(decl)
	in.Set("y", 2)
	in.Set("x", 1)
	in.Set("y", 20)

	assert.Equal(t, []string{"y", "x"}, in.Order)
	v, ok := in.Get("y")
	assert.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestDumpIncludesKindAndChildren(t *testing.T) {
	mod := NewDecl(ModuleDef, "app", Pos{})
	v := NewDecl(VarDecl, "x", Pos{})
	v.RW = RWLet
	require.NoError(t, mod.AddChild(v))

	out := Dump(mod)
	assert.Contains(t, out, "ModuleDef app")
	assert.Contains(t, out, "VarDecl x")
	assert.Contains(t, out, "(let)")
}
