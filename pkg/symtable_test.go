package jackc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable_OffsetsPerKindCounter(t *testing.T) {
	tab := NewSymbolTable()

	tab.Insert(Symbol{Name: "x", Kind: KindField, Type: "int"})
	tab.Insert(Symbol{Name: "y", Kind: KindField, Type: "int"})
	tab.Insert(Symbol{Name: "count", Kind: KindStatic, Type: "int"})

	assert.Equal(t, 0, tab.Offset("x"))
	assert.Equal(t, 1, tab.Offset("y"))
	assert.Equal(t, 0, tab.Offset("count"))
	assert.Equal(t, 2, tab.Count(KindField))
	assert.Equal(t, 1, tab.Count(KindStatic))
}

func TestSymbolTable_LookupFirstMatchWins(t *testing.T) {
	tab := NewSymbolTable()
	tab.Insert(Symbol{Name: "x", Kind: KindLocal, Type: "int"})
	tab.Insert(Symbol{Name: "x", Kind: KindLocal, Type: "boolean"})

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "int", sym.Type)
	assert.Equal(t, 0, sym.Offset)
}

func TestSymbolTable_InitialisedFlag(t *testing.T) {
	tab := NewSymbolTable()
	tab.Insert(Symbol{Name: "x", Kind: KindLocal, Type: "int"})

	assert.False(t, tab.IsInitialised("x"))
	tab.MarkInitialised("x")
	assert.True(t, tab.IsInitialised("x"))
}

func TestSymbolTable_AppendParamTypeTargetsLatestEntry(t *testing.T) {
	tab := NewSymbolTable()
	tab.Insert(Symbol{Name: "compute", Kind: KindSubroutine, Type: "int"})

	tab.AppendParamType("compute", "int")
	tab.AppendParamType("compute", "boolean")

	sym, ok := tab.Lookup("compute")
	require.True(t, ok)
	assert.Equal(t, []string{"int", "boolean"}, sym.ParamTypes)
}

func TestSymbolTable_NonOffsetKindsDontConsumeCounters(t *testing.T) {
	tab := NewSymbolTable()
	tab.Insert(Symbol{Name: "Main", Kind: KindClass})
	tab.Insert(Symbol{Name: "x", Kind: KindField, Type: "int"})

	assert.Equal(t, 0, tab.Offset("x"))
	assert.Equal(t, 1, tab.Count(KindClass))
}
