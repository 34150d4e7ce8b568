package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingCapturesOpsInOrder(t *testing.T) {
	r := NewRecording()
	require.True(t, r.BeginOp(Compile, Params{InFile: []string{"a.c"}}))
	r.EndOp(Compile)
	require.True(t, r.BeginOp(LinkLib, Params{OutFile: []string{"libfoo.a"}}))
	r.EndOp(LinkLib)

	require.Len(t, r.Ops, 2)
	assert.Equal(t, Compile, r.Ops[0].Op)
	assert.True(t, r.Ops[0].Ended)
	assert.Equal(t, LinkLib, r.Ops[1].Op)
	assert.True(t, r.Ops[1].Ended)
}

func TestRecordingCancelAtAbortsThatOp(t *testing.T) {
	r := NewRecording()
	r.CancelAt(1)

	assert.True(t, r.BeginOp(Compile, Params{}))
	assert.False(t, r.BeginOp(LinkLib, Params{}))
}

func TestRecordingLogsLevelAndLocation(t *testing.T) {
	r := NewRecording()
	r.Log(Error, "BUSY", 3, 7, "undefined identifier %q", "x")

	require.Len(t, r.Logs, 1)
	assert.Equal(t, Error, r.Logs[0].Level)
	assert.Equal(t, "BUSY", r.Logs[0].File)
	assert.Equal(t, 3, r.Logs[0].Row)
}

func TestHostInfoNonWindowsConventions(t *testing.T) {
	host := NewHostInfo("gcc", false)
	assert.Equal(t, "o", host.ObjExt())
	assert.Equal(t, ".a", host.LibExt())
	assert.Equal(t, "", host.ExeExt())
	assert.Equal(t, "lib", host.LibPrefix())
}

func TestHostInfoWindowsConventions(t *testing.T) {
	host := NewHostInfo("msvc", true)
	assert.Equal(t, "obj", host.ObjExt())
	assert.Equal(t, ".lib", host.LibExt())
	assert.Equal(t, ".exe", host.ExeExt())
	assert.Equal(t, "", host.LibPrefix())
}

func TestCTDefaultsLookupMissingToolchainIsZeroValue(t *testing.T) {
	table := CTDefaults{"gcc": {CFlags: []string{"-Wall"}}}
	assert.Equal(t, ToolchainDefaults{CFlags: []string{"-Wall"}}, table.For("gcc"))
	assert.Equal(t, ToolchainDefaults{}, table.For("msvc"))
}
