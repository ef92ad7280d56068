package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"autocrm/internal/storage"
)

func TestAnalyzeDailyLogs(t *testing.T) {
	testDate := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	events := []storage.Event{
		{
			Timestamp:   testDate.Add(2 * time.Hour),
			UserID:      123,
			UserMessage: "guardá un gol",
			Actions:     []storage.Action{{Kind: "GUARDAR_AUTO", Status: "ok"}},
		},
		{
			Timestamp:   testDate.Add(4 * time.Hour),
			UserID:      123,
			UserMessage: "borrá el 3 y anotá a juan",
			Actions: []storage.Action{
				{Kind: "ELIMINAR_AUTO", Status: "not_found"},
				{Kind: "GUARDAR_LEED", Status: "warning"},
			},
		},
		{
			Timestamp:   testDate.Add(6 * time.Hour),
			UserID:      456,
			UserMessage: "hola",
			Error:       "all llm providers failed",
		},
		// Previous day
		{
			Timestamp:   testDate.Add(-2 * time.Hour),
			UserID:      789,
			UserMessage: "ayer",
			Actions:     []storage.Action{{Kind: "WHATSAPP", Status: "ok"}},
		},
		// Next day
		{
			Timestamp:   testDate.Add(26 * time.Hour),
			UserID:      123,
			UserMessage: "mañana",
		},
	}

	stats := AnalyzeDailyLogs(events, testDate)

	if stats.Date != "2026-10-17" {
		t.Errorf("Expected date 2026-10-17, got %s", stats.Date)
	}
	if stats.TotalTurns != 3 {
		t.Errorf("Expected 3 turns, got %d", stats.TotalTurns)
	}
	if stats.UniqueOperators != 2 {
		t.Errorf("Expected 2 unique operators, got %d", stats.UniqueOperators)
	}
	if stats.ModelFailures != 1 {
		t.Errorf("Expected 1 model failure, got %d", stats.ModelFailures)
	}
	if stats.ActionsTotal != 3 {
		t.Errorf("Expected 3 actions, got %d", stats.ActionsTotal)
	}
	if stats.ActionsByKind["WHATSAPP"] != 0 {
		t.Errorf("Previous day action leaked into stats")
	}
	if stats.ActionsByStatus["not_found"] != 1 || stats.ActionsByStatus["ok"] != 1 {
		t.Errorf("Unexpected status counts: %v", stats.ActionsByStatus)
	}

	op := stats.OperatorStats[123]
	if op == nil || op.Turns != 2 || op.Actions != 3 {
		t.Errorf("Unexpected stats for operator 123: %+v", op)
	}
}

func TestAnalyzeDailyLogs_UsesTargetLocation(t *testing.T) {
	art := time.FixedZone("ART", -3*3600)
	// 01:00 UTC on the 18th is the evening of the 17th in ART
	events := []storage.Event{{Timestamp: time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC), UserID: 1, UserMessage: "x"}}

	stats := AnalyzeDailyLogs(events, time.Date(2026, 10, 17, 12, 0, 0, 0, art))
	if stats.TotalTurns != 1 {
		t.Errorf("Expected event counted in local day, got %d", stats.TotalTurns)
	}
}

func TestSummaryAndJSON(t *testing.T) {
	stats := AnalyzeDailyLogs([]storage.Event{
		{Timestamp: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC), UserID: 42, UserMessage: "x",
			Actions: []storage.Action{{Kind: "GUARDAR_LEED", Status: "ok"}}},
	}, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))

	summary := stats.Summary()
	for _, want := range []string{"2026-10-17", "Mensajes: 1", "GUARDAR_LEED: 1", "ok=1", "Operador 42"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, summary)
		}
	}

	raw, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var back DailyStats
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if back.ActionsTotal != 1 {
		t.Errorf("Expected 1 action after decode, got %d", back.ActionsTotal)
	}
}
