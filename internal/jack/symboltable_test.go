package jack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nand2tetris.dev/jackc/internal/jack"
)

func TestSymbolTableDenseIndices(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")

	require.NoError(t, st.Define("x", "int", jack.Field))
	require.NoError(t, st.Define("y", "int", jack.Field))
	require.NoError(t, st.Define("count", "int", jack.Static))

	x, ok := st.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, jack.Symbol{Type: "int", Kind: jack.Field, Index: 0}, x)

	y, ok := st.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, 1, y.Index)

	count, ok := st.Lookup("count")
	require.True(t, ok)
	assert.Equal(t, jack.Symbol{Type: "int", Kind: jack.Static, Index: 0}, count)

	assert.Equal(t, 2, st.Count(jack.Field))
	assert.Equal(t, 1, st.Count(jack.Static))
}

func TestSymbolTableMethodSeedsReceiver(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")
	st.BeginSubroutine("method")

	this, ok := st.Lookup("this")
	require.True(t, ok)
	assert.Equal(t, jack.Symbol{Type: "Point", Kind: jack.Arg, Index: 0}, this)

	require.NoError(t, st.Define("dx", "int", jack.Arg))
	dx, ok := st.Lookup("dx")
	require.True(t, ok)
	assert.Equal(t, 1, dx.Index)
}

func TestSymbolTableFunctionDoesNotSeedReceiver(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")
	st.BeginSubroutine("function")

	_, ok := st.Lookup("this")
	assert.False(t, ok)

	require.NoError(t, st.Define("a", "int", jack.Arg))
	a, ok := st.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Index)
}

func TestSymbolTableSubroutineScopeShadowsClassScope(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")
	require.NoError(t, st.Define("x", "int", jack.Field))

	st.BeginSubroutine("function")
	require.NoError(t, st.Define("x", "int", jack.Var))

	x, ok := st.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, jack.Var, x.Kind)
	assert.Equal(t, 0, x.Index)
}

func TestSymbolTableSubroutineScopeResets(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")

	st.BeginSubroutine("function")
	require.NoError(t, st.Define("a", "int", jack.Var))
	assert.Equal(t, 1, st.Count(jack.Var))

	st.BeginSubroutine("function")
	assert.Equal(t, 0, st.Count(jack.Var))
	_, ok := st.Lookup("a")
	assert.False(t, ok)
}

func TestSymbolTableRedefinitionErrors(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")
	require.NoError(t, st.Define("x", "int", jack.Field))

	err := st.Define("x", "int", jack.Field)
	assert.Error(t, err)
}

func TestSymbolTableUnresolvedLookup(t *testing.T) {
	st := jack.NewSymbolTable()
	st.BeginClass("Point")
	st.BeginSubroutine("function")

	_, ok := st.Lookup("nowhere")
	assert.False(t, ok)
}
