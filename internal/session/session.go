// Package session runs one chat turn end to end: context assembly, the model
// call, directive decoding and dispatch, and the transcript update.
package session

import (
	"sync"

	"github.com/google/uuid"

	"autocrm/internal/history"
	"autocrm/internal/quota"
)

type State string

const (
	AwaitingInput         State = "awaiting_input"
	Assembling            State = "assembling"
	AwaitingModelResponse State = "awaiting_model_response"
	Decoding              State = "decoding"
	Dispatching           State = "dispatching"
	Rendered              State = "rendered"
)

// Session is the explicit per-conversation state threaded through every
// turn. Turns on one session never overlap.
type Session struct {
	ID         string
	UserID     int64
	Transcript *history.Transcript
	Quota      *quota.Window

	turn  sync.Mutex
	mu    sync.RWMutex
	state State
}

func New(userID int64, quotaLimit int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Transcript: history.NewTranscript(),
		Quota:      quota.NewWindow(quotaLimit),
		state:      AwaitingInput,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Store keeps one session per user.
type Store struct {
	mu         sync.Mutex
	sessions   map[int64]*Session
	quotaLimit int
}

func NewStore(quotaLimit int) *Store {
	return &Store{sessions: make(map[int64]*Session), quotaLimit: quotaLimit}
}

func (st *Store) Get(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = New(userID, st.quotaLimit)
		st.sessions[userID] = s
	}
	return s
}

// Reset replaces the user's session with a fresh one.
func (st *Store) Reset(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := New(userID, st.quotaLimit)
	st.sessions[userID] = s
	return s
}
