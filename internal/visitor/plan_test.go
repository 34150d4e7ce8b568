package visitor

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/busy-build/busy/internal/backend"
	"github.com/busy-build/busy/internal/selector"
	"github.com/busy-build/busy/internal/value"
)

func TestPlanRendersSortedDeterministicJSON(t *testing.T) {
	mod := newModule("root")
	libClass := classDecl("Library")
	appClass := classDecl("Executable")

	core := buildProduct(mod, "core", libClass, map[string]value.Value{
		"sources": pathList("./core.c"),
	})
	buildProduct(mod, "app", appClass, map[string]value.Value{
		"sources": pathList("./main.c"),
	}, core.Inst)

	products, err := selector.Select(mod, []string{"root.app", "root.core"})
	require.NoError(t, err)

	rec := backend.NewRecording()
	outs, err := Visit(products, rec, backend.NewHostInfo("gcc", false), "out", nil)
	require.NoError(t, err)

	raw, err := Plan(outs)
	require.NoError(t, err)

	var got struct {
		Version string `json:"version"`
		Products []struct {
			Product string `json:"product"`
			Kind    string `json:"kind"`
			Path    string `json:"path"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))

	want := struct {
		Version string `json:"version"`
		Products []struct {
			Product string `json:"product"`
			Kind    string `json:"kind"`
			Path    string `json:"path"`
		} `json:"products"`
	}{
		Version: "busy.plan/v1",
		Products: []struct {
			Product string `json:"product"`
			Kind    string `json:"kind"`
			Path    string `json:"path"`
		}{
			// sorted lexically by product name: "root.app" < "root.core"
			{Product: "root.app", Kind: "Executable", Path: "out/app"},
			{Product: "root.core", Kind: "StaticLib", Path: "out/libcore.a"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan JSON mismatch (-want +got):\n%s", diff)
	}
}
