package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoLookup(t *testing.T) {
	info, ok := Info(LEX001)
	assert.True(t, ok)
	assert.Equal(t, "lexer", info.Phase)
}

func TestInfoUnknownCode(t *testing.T) {
	_, ok := Info("NOPE999")
	assert.False(t, ok)
}

func TestPhasePredicates(t *testing.T) {
	assert.True(t, IsPathError(PTH002))
	assert.True(t, IsLexError(LEX003))
	assert.True(t, IsSemanticError(SEM007))
	assert.True(t, IsResourceError(RES001))
	assert.True(t, IsBackendError(BAK001))

	assert.False(t, IsPathError(LEX001))
	assert.False(t, IsSemanticError(PTH001))
}

func TestDiagnosticReport(t *testing.T) {
	d := New(SEM007, Pos{File: "a/BUSY", Line: 3, Column: 5}, "path points to the same directory as current or outer module")
	d = d.WithTrace([]Frame{
		{Pos: Pos{File: "a/BUSY", Line: 10, Column: 1}, Label: "expansion of macro 'id'"},
	})
	report := d.Report()
	assert.Contains(t, report, "a/BUSY:3:5")
	assert.Contains(t, report, "instantiated from here")
}
