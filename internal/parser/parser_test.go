package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/symbol"
	"github.com/busy-build/busy/internal/value"
)

func parseModule(t *testing.T, src string) (*symbol.Decl, []*errors.Diagnostic) {
	t.Helper()
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}
	return Parse(src, "BUSY", paramtable.New(), nil, dir, nil)
}

func TestParseVarDeclStoresInitializer(t *testing.T) {
	mod, errs := parseModule(t, `var x = 1 + 2;`)
	require.Empty(t, errs)

	decl, ok := mod.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, symbol.VarDecl, decl.Kind)

	v, ok := mod.Inst.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.IntV(3), v)
}

func TestParseExternallyVisibleLetIsReadOnly(t *testing.T) {
	_, errs := parseModule(t, `
		let pi* = 3;
		pi = 4;
	`)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM010, errs[0].Code)
}

func TestParseAssignmentToVarSucceeds(t *testing.T) {
	mod, errs := parseModule(t, `
		var total = 1;
		total = total + 4;
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("total")
	require.True(t, ok)
	assert.Equal(t, value.IntV(5), v)
}

func TestParseCompoundAssignment(t *testing.T) {
	mod, errs := parseModule(t, `
		var total = 10;
		total -= 3;
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("total")
	require.True(t, ok)
	assert.Equal(t, value.IntV(7), v)
}

func TestParseIfTakesTrueBranch(t *testing.T) {
	mod, errs := parseModule(t, `
		var flag = true;
		var result = 0;
		if flag then
			result = 1;
		else
			result = 2;
		end
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("result")
	require.True(t, ok)
	assert.Equal(t, value.IntV(1), v)
}

func TestParseIfSuppressesUntakenBranchSideEffects(t *testing.T) {
	mod, errs := parseModule(t, `
		var flag = false;
		var touched = 0;
		if flag {
			touched = 1;
		} else {
			touched = 2;
		}
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("touched")
	require.True(t, ok)
	assert.Equal(t, value.IntV(2), v)
}

func TestParseUndefinedIdentifierReportsSEM002(t *testing.T) {
	_, errs := parseModule(t, `var x = nope;`)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM002, errs[0].Code)
}

func TestParseDuplicateNameReportsSEM001(t *testing.T) {
	_, errs := parseModule(t, `
		var x = 1;
		var x = 2;
	`)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM001, errs[0].Code)
}

func TestParseEnumAndClassTypeDecl(t *testing.T) {
	mod, errs := parseModule(t, `
		type Color = (`+"`red, `green, `blue"+`)
		type Point = class
			x : int = 0;
			y : int = 0;
		end
	`)
	require.Empty(t, errs)

	color, ok := mod.Lookup("Color")
	require.True(t, ok)
	assert.Equal(t, symbol.EnumDecl, color.Kind)
	assert.Equal(t, []string{"`red", "`green", "`blue"}, color.Symbols)

	point, ok := mod.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, symbol.ClassDecl, point.Kind)
	_, ok = point.Lookup("x")
	assert.True(t, ok)
}

func TestParseClassFieldRejectsClassType(t *testing.T) {
	_, errs := parseModule(t, `
		type Inner = class
			v : int = 0;
		end
		type Outer = class
			nested : Inner;
		end
	`)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM006, errs[0].Code)
}

func TestParseParamOverrideCoercesType(t *testing.T) {
	params := paramtable.New()
	params.Set("root.debug", "true")
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	mod, errs := Parse(`param debug = false;`, "BUSY", params, nil, dir, nil)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("debug")
	require.True(t, ok)
	assert.Equal(t, value.BoolV(true), v)
	assert.Empty(t, params.UnusedKeys())
}

func TestParseParamOverrideBadCoercionReportsSEM008(t *testing.T) {
	params := paramtable.New()
	params.Set("root.count", "not-an-int")
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	_, errs := Parse(`param count = 0;`, "BUSY", params, nil, dir, nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM008, errs[0].Code)
}

func TestParseBuiltinSameList(t *testing.T) {
	mod, errs := parseModule(t, `
		var a = [1, 2, 3];
		var b = [1, 2, 3];
		var same = same_list(a, b);
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("same")
	require.True(t, ok)
	assert.Equal(t, value.BoolV(true), v)
}

func TestParseBuiltinToIntRejectsWrongArgType(t *testing.T) {
	_, errs := parseModule(t, `var x = toint("nope");`)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.SEM011, errs[0].Code)
}

func TestParseMacroExpandsBody(t *testing.T) {
	mod, errs := parseModule(t, `
		var total = 0;
		define bump(n) {
			total = total + n;
		}
		bump(5);
		bump(2);
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("total")
	require.True(t, ok)
	assert.Equal(t, value.IntV(7), v)
}

func TestParseTernaryExpression(t *testing.T) {
	mod, errs := parseModule(t, `
		var flag = true;
		var picked = (flag ? 1 : 2);
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("picked")
	require.True(t, ok)
	assert.Equal(t, value.IntV(1), v)
}

func TestParseListLiteralAndMembership(t *testing.T) {
	mod, errs := parseModule(t, `
		var xs = [1, 2, 3];
		var has2 = 2 in xs;
	`)
	require.Empty(t, errs)

	v, ok := mod.Inst.Get("has2")
	require.True(t, ok)
	assert.Equal(t, value.BoolV(true), v)
}

func TestParseProductDeclarationPopulatesFields(t *testing.T) {
	mod, errs := parseModule(t, `
		let lib* : Library = {
			.sources += ./a.c;
			.name = "foo";
		}
	`)
	require.Empty(t, errs)

	lib, ok := mod.Lookup("lib")
	require.True(t, ok)
	assert.Equal(t, symbol.Public, lib.Visi)
	require.NotNil(t, lib.Type)
	assert.Equal(t, "Library", lib.Type.Name)

	v, ok := mod.Inst.Get("lib")
	require.True(t, ok)
	classInst := v.(value.Value)
	require.Equal(t, value.ClassInst, classInst.Kind)

	name, ok := classInst.Inst.Get("name")
	require.True(t, ok)
	assert.Equal(t, value.StringV("foo"), name)

	sources, ok := classInst.Inst.Get("sources")
	require.True(t, ok)
	sv := sources.(value.Value)
	require.Len(t, sv.Elems, 1)
	assert.Equal(t, value.PathV("./a.c"), sv.Elems[0])
}
