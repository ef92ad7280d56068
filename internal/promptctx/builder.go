// Package promptctx assembles the bounded context sent to the model on every
// turn: instructions, a snapshot of the spreadsheets and recent history.
package promptctx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"autocrm/internal/crm"
	"autocrm/internal/directive"
	"autocrm/internal/llm"
)

const (
	DefaultHistoryWindow = 6
	DefaultMaxRecords    = 15
	DefaultEmptyRowStop  = 3

	PositionKey = "#"
)

type Builder struct {
	// Instructions is operator-provided text placed before the generated
	// system prompt.
	Instructions  string
	HistoryWindow int
	MaxRecords    int
	EmptyRowStop  int
}

func NewBuilder(instructions string, historyWindow, maxRecords, emptyStop int) *Builder {
	b := &Builder{
		Instructions:  instructions,
		HistoryWindow: historyWindow,
		MaxRecords:    maxRecords,
		EmptyRowStop:  emptyStop,
	}
	if b.HistoryWindow <= 0 {
		b.HistoryWindow = DefaultHistoryWindow
	}
	if b.MaxRecords <= 0 {
		b.MaxRecords = DefaultMaxRecords
	}
	if b.EmptyRowStop <= 0 {
		b.EmptyRowStop = DefaultEmptyRowStop
	}
	return b
}

// Snapshot returns at most MaxRecords non-empty records in sheet order,
// stopping early after EmptyRowStop consecutive empty rows. Records are the
// rows' column→value maps plus PositionKey, the number crm.Lookup resolves.
func (b *Builder) Snapshot(rows []crm.Row) []map[string]string {
	var out []map[string]string
	empty := 0
	for i, r := range rows {
		if r.Empty() {
			empty++
			if empty >= b.EmptyRowStop {
				break
			}
			continue
		}
		empty = 0
		rec := make(map[string]string, len(r.Fields)+1)
		for k, v := range r.Fields {
			rec[k] = v
		}
		rec[PositionKey] = strconv.Itoa(i + 1)
		out = append(out, rec)
		if len(out) >= b.MaxRecords {
			break
		}
	}
	return out
}

// Build returns the system message followed by the most recent history.
func (b *Builder) Build(now time.Time, stock, leads []crm.Row, history []llm.Message) []llm.Message {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: b.SystemPrompt(now, stock, leads)}}
	if len(history) > b.HistoryWindow {
		history = history[len(history)-b.HistoryWindow:]
	}
	return append(msgs, history...)
}

func (b *Builder) SystemPrompt(now time.Time, stock, leads []crm.Row) string {
	var sb strings.Builder
	if s := strings.TrimSpace(b.Instructions); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Hoy: %s.\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Stock: %s\n", render(b.Snapshot(stock)))
	fmt.Fprintf(&sb, "Leeds: %s\n", render(b.Snapshot(leads)))
	sb.WriteString("Responde corto. Para ejecutar una acción agregá un bloque ")
	fmt.Fprintf(&sb, "%s {json} %s por acción.\n", directive.StartSentinel, directive.EndSentinel)
	sb.WriteString("Acciones (campo " + directive.KindField + "):\n")
	for _, k := range directive.Kinds() {
		fmt.Fprintf(&sb, "- %s: %s\n", k, strings.Join(fieldsFor[k], ", "))
	}
	sb.WriteString("Para borrar, " + directive.FieldSearch + " puede ser el valor de \"" + PositionKey + "\" del registro o un texto del registro.")
	return sb.String()
}

var fieldsFor = map[directive.Kind][]string{
	directive.SaveVehicle: {
		directive.FieldCustomer, directive.FieldVehicle, directive.FieldYear,
		directive.FieldKm, directive.FieldColor, directive.FieldPlate,
	},
	directive.DeleteVehicle: {directive.FieldSearch},
	directive.SaveLead: {
		directive.FieldCustomer, directive.FieldSearch, directive.FieldPhone,
		directive.FieldNote, directive.FieldRemind + " (YYYY-MM-DD o -)",
	},
	directive.DeleteLead:     {directive.FieldSearch},
	directive.WhatsApp:       {directive.FieldCustomer, directive.FieldPhone, directive.FieldMessage},
	directive.CancelReminder: {directive.FieldCustomer},
}

func render(records []map[string]string) string {
	if len(records) == 0 {
		return "[]"
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "[]"
	}
	return string(b)
}
