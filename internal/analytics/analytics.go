// Package analytics summarises the recorded turns of one day.
package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"autocrm/internal/storage"
)

// DailyStats is the activity of one calendar day.
type DailyStats struct {
	Date            string                   `json:"date"`
	TotalTurns      int                      `json:"total_turns"`
	UniqueOperators int                      `json:"unique_operators"`
	ModelFailures   int                      `json:"model_failures"`
	ActionsTotal    int                      `json:"actions_total"`
	ActionsByKind   map[string]int           `json:"actions_by_kind"`
	ActionsByStatus map[string]int           `json:"actions_by_status"`
	OperatorStats   map[int64]*OperatorStats `json:"operator_stats"`
}

type OperatorStats struct {
	UserID  int64 `json:"user_id"`
	Turns   int   `json:"turns"`
	Actions int   `json:"actions"`
}

// AnalyzeDailyLogs aggregates the events whose timestamp falls on the day
// of targetDate, in targetDate's location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	loc := targetDate.Location()
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		ActionsByKind:   make(map[string]int),
		ActionsByStatus: make(map[string]int),
		OperatorStats:   make(map[int64]*OperatorStats),
	}

	for _, event := range events {
		ts := event.Timestamp.In(loc)
		if ts.Before(startOfDay) || !ts.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" && len(event.Actions) == 0 {
			continue
		}
		stats.TotalTurns++
		if event.Error != "" {
			stats.ModelFailures++
		}

		op, ok := stats.OperatorStats[event.UserID]
		if !ok {
			op = &OperatorStats{UserID: event.UserID}
			stats.OperatorStats[event.UserID] = op
		}
		op.Turns++

		for _, a := range event.Actions {
			stats.ActionsTotal++
			stats.ActionsByKind[a.Kind]++
			stats.ActionsByStatus[a.Status]++
			op.Actions++
		}
	}

	stats.UniqueOperators = len(stats.OperatorStats)
	return stats
}

// Summary renders the stats for the admin chat.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Actividad del %s\n", ds.Date)
	fmt.Fprintf(&b, "Mensajes: %d · Operadores: %d · Fallas del modelo: %d\n", ds.TotalTurns, ds.UniqueOperators, ds.ModelFailures)
	fmt.Fprintf(&b, "Acciones: %d\n", ds.ActionsTotal)

	for _, k := range sortedKeys(ds.ActionsByKind) {
		fmt.Fprintf(&b, "- %s: %d\n", k, ds.ActionsByKind[k])
	}
	if len(ds.ActionsByStatus) > 0 {
		var parts []string
		for _, k := range sortedKeys(ds.ActionsByStatus) {
			parts = append(parts, fmt.Sprintf("%s=%d", k, ds.ActionsByStatus[k]))
		}
		fmt.Fprintf(&b, "Resultados: %s\n", strings.Join(parts, ", "))
	}

	ids := make([]int64, 0, len(ds.OperatorStats))
	for id := range ds.OperatorStats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		op := ds.OperatorStats[id]
		fmt.Fprintf(&b, "- Operador %d: %d mensajes, %d acciones\n", op.UserID, op.Turns, op.Actions)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
