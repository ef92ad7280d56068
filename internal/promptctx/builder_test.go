package promptctx

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autocrm/internal/crm"
	"autocrm/internal/llm"
)

func row(i int, vals map[string]string) crm.Row {
	r := crm.Row{Index: crm.SheetRow(i), Fields: vals}
	for _, v := range vals {
		r.Values = append(r.Values, v)
	}
	return r
}

func TestSnapshot_StopsAfterConsecutiveEmptyRows(t *testing.T) {
	b := NewBuilder("", 0, 0, 2)
	rows := []crm.Row{
		row(1, map[string]string{"Cliente": "Ana"}),
		row(2, map[string]string{"Cliente": ""}),
		row(3, map[string]string{"Cliente": "Juan"}),
		row(4, map[string]string{}),
		row(5, map[string]string{}),
		row(6, map[string]string{"Cliente": "Tail"}),
	}
	snap := b.Snapshot(rows)
	require.Len(t, snap, 2)
	assert.Equal(t, "Ana", snap[0]["Cliente"])
	assert.Equal(t, "Juan", snap[1]["Cliente"])
}

func TestSnapshot_PositionsMatchLookup(t *testing.T) {
	b := NewBuilder("", 0, 0, 0)
	rows := []crm.Row{
		row(1, map[string]string{"Cliente": "Ana"}),
		row(2, map[string]string{"Cliente": ""}),
		row(3, map[string]string{"Cliente": "Juan"}),
	}
	snap := b.Snapshot(rows)
	require.Len(t, snap, 2)
	assert.Equal(t, "1", snap[0][PositionKey])
	assert.Equal(t, "Juan", snap[1]["Cliente"])
	assert.Equal(t, "3", snap[1][PositionKey])

	for _, rec := range snap {
		m, ok := crm.Lookup(rows, rec[PositionKey])
		require.True(t, ok, rec[PositionKey])
		assert.Equal(t, rec["Cliente"], m.Row.Fields["Cliente"])
	}
}

func TestSnapshot_CapsRecords(t *testing.T) {
	b := NewBuilder("", 0, 3, 0)
	var rows []crm.Row
	for i := 1; i <= 10; i++ {
		rows = append(rows, row(i, map[string]string{"Cliente": fmt.Sprint(i), "Columna Nueva": "x"}))
	}
	snap := b.Snapshot(rows)
	require.Len(t, snap, 3)
	assert.Equal(t, "x", snap[2]["Columna Nueva"])
}

func TestBuild_WindowsHistory(t *testing.T) {
	b := NewBuilder("Sos el asistente de la agencia.", 4, 0, 0)
	var hist []llm.Message
	for i := 0; i < 9; i++ {
		hist = append(hist, llm.Message{Role: llm.RoleUser, Content: fmt.Sprint(i)})
	}
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	msgs := b.Build(now, []crm.Row{row(1, map[string]string{"Vehiculo": "Gol"})}, nil, hist)

	require.Len(t, msgs, 5)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "5", msgs[1].Content)
	assert.Equal(t, "8", msgs[4].Content)

	sys := msgs[0].Content
	assert.True(t, strings.HasPrefix(sys, "Sos el asistente de la agencia."))
	assert.Contains(t, sys, "Hoy: 2024-03-05.")
	assert.Contains(t, sys, `Stock: [{"#":"1","Vehiculo":"Gol"}]`)
	assert.Contains(t, sys, "Leeds: []")
	assert.Contains(t, sys, "GUARDAR_AUTO")
	assert.Contains(t, sys, "BORRAR_EVENTO")
	assert.Contains(t, sys, "DATA_START {json} DATA_END")
}
