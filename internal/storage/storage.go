package storage

import "time"

// Action is the recorded result of one executed directive.
type Action struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// Event represents a single processed turn of a chat session.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	UserID            int64     `json:"user_id,omitempty"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response,omitempty"`
	Model             string    `json:"model,omitempty"`
	Actions           []Action  `json:"actions,omitempty"`
	Warnings          []string  `json:"warnings,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// Recorder abstracts persistence of turn events.
// LoadInteractions should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
