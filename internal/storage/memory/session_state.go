package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AltairaLabs/intentgate/internal/session"
)

var (
	errSessionNil     = errors.New("session cannot be nil")
	errSessionIDEmpty = errors.New("session ID cannot be empty")
)

var _ session.Store = (*SessionStore)(nil)

// SessionStore implements session.Store using an in-memory map
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.SessionState
}

// NewSessionStore creates a new in-memory session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.SessionState),
	}
}

// Create stores a new session
func (s *SessionStore) Create(ctx context.Context, st *session.SessionState) error {
	if st == nil {
		return errSessionNil
	}
	if st.ID == "" {
		return session.ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[st.ID]; exists {
		return fmt.Errorf("%w: %s", session.ErrSessionExists, st.ID)
	}

	// Store a copy to prevent external modifications
	s.sessions[st.ID] = st.Clone()
	return nil
}

// Get retrieves a session by ID, or nil when absent
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*session.SessionState, error) {
	if sessionID == "" {
		return nil, session.ErrEmptySessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return st.Clone(), nil
}

// Update applies fn to a copy of the session and stores it if fn succeeds
func (s *SessionStore) Update(
	ctx context.Context,
	sessionID string,
	fn func(*session.SessionState) error,
) (*session.SessionState, error) {
	if sessionID == "" {
		return nil, session.ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, sessionID)
	}

	updated := st.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.sessions[sessionID] = updated
	return updated.Clone(), nil
}

// Delete removes a session (idempotent)
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return session.ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// List retrieves all live sessions
func (s *SessionStore) List(ctx context.Context) ([]*session.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*session.SessionState, 0, len(s.sessions))
	for _, st := range s.sessions {
		result = append(result, st.Clone())
	}
	return result, nil
}
