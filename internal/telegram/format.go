package telegram

import (
	"fmt"
	"strings"
	"time"

	"autocrm/internal/auth"
	"autocrm/internal/crm"
	"autocrm/internal/quota"
)

// renderRows lists the non-empty rows with the same 1-based numbering the
// model and the lookup use. The ID column is hidden.
func renderRows(title string, rows []crm.Row, schema crm.Schema, limit int) string {
	var bld strings.Builder
	bld.WriteString(title)
	bld.WriteString("\n")
	shown := 0
	for i, r := range rows {
		if r.Empty() {
			continue
		}
		if limit > 0 && shown >= limit {
			bld.WriteString("…\n")
			break
		}
		var cells []string
		for c, v := range r.Values {
			v = strings.TrimSpace(v)
			if c == schema.ID || v == "" {
				continue
			}
			cells = append(cells, v)
		}
		bld.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.Join(cells, " | ")))
		shown++
	}
	if shown == 0 {
		bld.WriteString("(vacío)")
	}
	return strings.TrimRight(bld.String(), "\n")
}

func renderUsage(u quota.Usage) string {
	var bld strings.Builder
	bld.WriteString("📊 Uso del modelo (último minuto)\n")
	if u.Limit > 0 {
		bld.WriteString(fmt.Sprintf("Llamadas: %d/%d", u.Calls, u.Limit))
	} else {
		bld.WriteString(fmt.Sprintf("Llamadas: %d", u.Calls))
	}
	if u.ResetIn > 0 {
		bld.WriteString(fmt.Sprintf("\nSe libera en %s", u.ResetIn.Round(time.Second)))
	}
	return bld.String()
}

func renderOperators(title string, ops []auth.Operator) string {
	var bld strings.Builder
	bld.WriteString(title)
	bld.WriteString("\n")
	for _, o := range ops {
		bld.WriteString(fmt.Sprintf("- id=%d, %s\n", o.ID, o.Display()))
	}
	if len(ops) == 0 {
		bld.WriteString("(ninguno)")
	}
	return strings.TrimRight(bld.String(), "\n")
}

// chunk splits text into pieces of at most n runes, preferring line breaks.
func chunk(text string, n int) []string {
	r := []rune(text)
	if len(r) <= n {
		return []string{text}
	}
	var out []string
	for len(r) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if r[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(r[:cut]), "\n"))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
