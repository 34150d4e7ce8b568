package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/busymod"
	"github.com/busy-build/busy/internal/errors"
	"github.com/busy-build/busy/internal/paramtable"
	"github.com/busy-build/busy/internal/symbol"
)

type fakeFS struct {
	busyFiles map[string]string
}

func newFakeFS() *fakeFS { return &fakeFS{busyFiles: map[string]string{}} }

func (f *fakeFS) Exists(path string) bool {
	_, ok := f.busyFiles[path]
	return ok
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.busyFiles[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return []byte(data), nil
}

func TestParseSubdirRecursesIntoChildModule(t *testing.T) {
	fs := newFakeFS()
	fs.busyFiles["/root/lib/BUSY"] = `var greeting = "hi";`
	loader := busymod.NewLoader(fs)
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	mod, errs := Parse(`subdir lib;`, "/root/BUSY", paramtable.New(), loader, dir, nil)
	require.Empty(t, errs)

	lib, ok := mod.Lookup("lib")
	require.True(t, ok)
	assert.Equal(t, symbol.ModuleDef, lib.Kind)
	assert.Same(t, mod, lib.Owner)

	greeting, ok := lib.Lookup("greeting")
	require.True(t, ok)
	assert.NotNil(t, greeting)
}

func TestParseSubmoduleMissingBUSYWithoutElseIsFatal(t *testing.T) {
	fs := newFakeFS()
	loader := busymod.NewLoader(fs)
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	_, errs := Parse(`subdir missing;`, "/root/BUSY", paramtable.New(), loader, dir, nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.RES001, errs[0].Code)
}

func TestParseSubmoduleElseFallbackBecomesDummy(t *testing.T) {
	fs := newFakeFS()
	loader := busymod.NewLoader(fs)
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	mod, errs := Parse(`subdir missing else './also_missing';`, "/root/BUSY", paramtable.New(), loader, dir, nil)
	require.Empty(t, errs)

	child, ok := mod.Lookup("missing")
	require.True(t, ok)
	assert.True(t, child.Dummy)
}

func TestParseSubmoduleParamBindInstallsOverride(t *testing.T) {
	fs := newFakeFS()
	fs.busyFiles["/root/lib/BUSY"] = `param level = 0;`
	loader := busymod.NewLoader(fs)
	params := paramtable.New()
	dir := busymod.Dir{Logical: "//", RDir: ".", FSPath: "/root", DirName: "root"}

	_, errs := Parse(`subdir lib(level := 3);`, "/root/BUSY", params, loader, dir, nil)
	require.Empty(t, errs)
	assert.Empty(t, params.UnusedKeys())
}
