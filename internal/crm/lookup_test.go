package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(vals ...[]string) []Row {
	out := make([]Row, 0, len(vals))
	for i, v := range vals {
		out = append(out, Row{Index: SheetRow(i + 1), Values: v})
	}
	return out
}

func TestLookup_NumericIsDisplayIndex(t *testing.T) {
	rows := rowsOf([]string{"a", "Juan"}, []string{"b", "Pedro"}, []string{"c", "12"})
	m, ok := Lookup(rows, "2")
	require.True(t, ok)
	assert.Equal(t, "Pedro", m.Row.Value(1))
	assert.Equal(t, 2, m.Position)
	assert.Equal(t, 3, m.Row.Index)

	_, ok = Lookup(rows, "0")
	assert.False(t, ok)
	_, ok = Lookup(rows, "4")
	assert.False(t, ok)
}

func TestLookup_SubstringCaseInsensitiveFirstWins(t *testing.T) {
	rows := rowsOf(
		[]string{"01/01/2024", "Ana", "Gol"},
		[]string{"02/01/2024", "Juan Pérez", "Fiesta 2018"},
		[]string{"03/01/2024", "JUANA", "Fiesta Kinetic"},
	)
	m, ok := Lookup(rows, "fiesta")
	require.True(t, ok)
	assert.Equal(t, 2, m.Position)
	assert.Equal(t, []int{3}, m.Ambiguous)

	m, ok = Lookup(rows, "  juana ")
	require.True(t, ok)
	assert.Equal(t, 3, m.Position)
	assert.Empty(t, m.Ambiguous)

	_, ok = Lookup(rows, "Corolla")
	assert.False(t, ok)
	_, ok = Lookup(rows, " ")
	assert.False(t, ok)
}

func TestLookup_SkipsEmptyRows(t *testing.T) {
	rows := rowsOf([]string{"", ""}, []string{"x", "Juan"})
	_, ok := Lookup(rows, "1")
	assert.False(t, ok)
	m, ok := Lookup(rows, "juan")
	require.True(t, ok)
	assert.Equal(t, 2, m.Position)
}

func TestFindRecord_ByIDThenValues(t *testing.T) {
	target := Row{Values: []string{"d", "Juan", "Gol", "", "", "", "", "", "", "", "id-1"}}
	rows := rowsOf(
		[]string{"d", "Ana", "Up", "", "", "", "", "", "", "", "id-0"},
		[]string{"d", "Juan", "Gol", "", "", "", "", "", "", "", "id-1"},
	)
	r, ok := FindRecord(rows, target, StockSchema)
	require.True(t, ok)
	assert.Equal(t, 3, r.Index)

	legacy := Row{Values: []string{"d", "Ana", "Up"}}
	legacyRows := rowsOf([]string{"d", "Juan"}, []string{"d", "Ana", "Up", ""})
	r, ok = FindRecord(legacyRows, legacy, StockSchema)
	require.True(t, ok)
	assert.Equal(t, 3, r.Index)

	_, ok = FindRecord(rowsOf([]string{"d", "Ana", "Up", "", "", "", "", "", "", "", "id-9"}), target, StockSchema)
	assert.False(t, ok)
}
