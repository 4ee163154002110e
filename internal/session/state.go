// Package session tracks the intent handshake of each agent session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is the handshake state of a session
type State string

const (
	// StateAwaitingIntent is the initial state; no mutation is permitted
	StateAwaitingIntent State = "AWAITING_INTENT"
	// StateContextLoaded means an intent has been selected
	StateContextLoaded State = "CONTEXT_LOADED"
	// StateActionAllowed is used by multi-step validation flows
	StateActionAllowed State = "ACTION_ALLOWED"
	// StateBlocked is terminal until the session is reset
	StateBlocked State = "BLOCKED"
)

// CanMutate reports whether mutating actions are permitted in this state
func (s State) CanMutate() bool {
	return s == StateContextLoaded || s == StateActionAllowed
}

var (
	// ErrSessionNotFound is returned when a session id is unknown
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when creating a session twice
	ErrSessionExists = errors.New("session already exists")
	// ErrInvalidTransition is returned for transitions the current state does not permit
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrEmptySessionID is returned for blank session ids
	ErrEmptySessionID = errors.New("session ID cannot be empty")
)

// SessionState is the per-session handshake record
type SessionState struct {
	ID             string    `json:"session_id"`
	State          State     `json:"current_state"`
	ActiveIntentID string    `json:"active_intent_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
}

// Clone returns a copy safe to hand across goroutines
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Store persists session state keyed strictly by session id.
// Implementations must return copies so callers never share state.
type Store interface {
	// Create stores a new session; ErrSessionExists if the id is taken
	Create(ctx context.Context, s *SessionState) error
	// Get returns the session or nil, nil when absent
	Get(ctx context.Context, sessionID string) (*SessionState, error)
	// Update applies fn atomically to the stored session and returns the result.
	// Absent sessions yield ErrSessionNotFound.
	// If fn returns an error the stored session is left unchanged.
	Update(ctx context.Context, sessionID string, fn func(*SessionState) error) (*SessionState, error)
	// Delete removes the session; deleting an absent id is not an error
	Delete(ctx context.Context, sessionID string) error
	// List returns every live session
	List(ctx context.Context) ([]*SessionState, error)
}

// UnknownIntentError is returned when an intent id is absent from the catalog
type UnknownIntentError struct {
	IntentID string
	Valid    []string
}

func (e *UnknownIntentError) Error() string {
	return fmt.Sprintf("unknown intent %q (valid: %s)", e.IntentID, strings.Join(e.Valid, ", "))
}

// TransitionError describes a rejected transition
type TransitionError struct {
	SessionID string
	From      State
	Event     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("session %s: cannot %s from %s", e.SessionID, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
