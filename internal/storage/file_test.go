package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "turns.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), SessionID: "s1", UserMessage: "guardá el gol", AssistantResponse: "Listo.",
		Actions: []Action{{Kind: "GUARDAR_AUTO", Status: "ok", Message: "Guardado"}}}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), SessionID: "s1", UserMessage: "hola", Error: "all llm providers failed"}
	if err := rec.AppendInteraction(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendInteraction(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	// garbage lines are skipped
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = f.WriteString("not json\n")
	_ = f.Close()

	events, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2, got %d", len(events))
	}
	if len(events[0].Actions) != 1 || events[0].Actions[0].Kind != "GUARDAR_AUTO" {
		t.Fatalf("actions not persisted: %+v", events[0])
	}
	if events[1].Error == "" {
		t.Fatalf("error not persisted: %+v", events[1])
	}
}
