package history

import (
	"sync"

	"autocrm/internal/llm"
)

// Transcript is the append-only message log of one chat session.
type Transcript struct {
	mu   sync.RWMutex
	msgs []llm.Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) AppendUser(content string) {
	t.append(llm.Message{Role: llm.RoleUser, Content: content})
}

func (t *Transcript) AppendAssistant(content string) {
	t.append(llm.Message{Role: llm.RoleAssistant, Content: content})
}

func (t *Transcript) append(msg llm.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msg)
}

// All returns a copy of every message in insertion order.
func (t *Transcript) All() []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]llm.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Last returns a copy of at most n most recent messages.
func (t *Transcript) Last(n int) []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(t.msgs) - n
	if start < 0 {
		start = 0
	}
	out := make([]llm.Message, len(t.msgs)-start)
	copy(out, t.msgs[start:])
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = nil
}
