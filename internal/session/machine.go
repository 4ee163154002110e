package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// IntentLookup is the slice of the intent catalog the machine needs
type IntentLookup interface {
	Has(id string) bool
	IDs() []string
}

// Machine drives session state transitions over an injected Store
type Machine struct {
	store   Store
	intents IntentLookup
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Machine
type Option func(*Machine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine creates a state machine backed by store and validated against intents
func NewMachine(store Store, intents IntentLookup, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		intents: intents,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates a session in AWAITING_INTENT
func (m *Machine) Start(ctx context.Context, sessionID string) (*SessionState, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	now := m.now()
	s := &SessionState{
		ID:         sessionID,
		State:      StateAwaitingIntent,
		CreatedAt:  now,
		LastActive: now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to start session %s: %w", sessionID, err)
	}
	m.logger.Debug("session started", "session_id", sessionID)
	return s.Clone(), nil
}

// Ensure returns the session, starting it when absent
func (m *Machine) Ensure(ctx context.Context, sessionID string) (*SessionState, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if s != nil {
		return s, nil
	}
	s, err = m.Start(ctx, sessionID)
	if errors.Is(err, ErrSessionExists) {
		// lost a race with a concurrent Start
		return m.Get(ctx, sessionID)
	}
	return s, err
}

// Get returns the session or ErrSessionNotFound
func (m *Machine) Get(ctx context.Context, sessionID string) (*SessionState, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// SelectIntent binds intentID to the session and moves it to CONTEXT_LOADED.
// An id absent from the catalog returns *UnknownIntentError and leaves the
// session untouched.
func (m *Machine) SelectIntent(ctx context.Context, sessionID, intentID string) (*SessionState, error) {
	if !m.intents.Has(intentID) {
		return nil, &UnknownIntentError{IntentID: intentID, Valid: m.intents.IDs()}
	}
	s, err := m.transition(ctx, sessionID, "select intent", func(s *SessionState) bool {
		return s.State != StateBlocked
	}, func(s *SessionState) {
		s.State = StateContextLoaded
		s.ActiveIntentID = intentID
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("intent selected", "session_id", sessionID, "intent_id", intentID)
	return s, nil
}

// AllowAction moves CONTEXT_LOADED to ACTION_ALLOWED
func (m *Machine) AllowAction(ctx context.Context, sessionID string) (*SessionState, error) {
	return m.transition(ctx, sessionID, "allow action", func(s *SessionState) bool {
		return s.State == StateContextLoaded || s.State == StateActionAllowed
	}, func(s *SessionState) {
		s.State = StateActionAllowed
	})
}

// ResetToContextLoaded moves ACTION_ALLOWED back to CONTEXT_LOADED
func (m *Machine) ResetToContextLoaded(ctx context.Context, sessionID string) (*SessionState, error) {
	return m.transition(ctx, sessionID, "reset to context loaded", func(s *SessionState) bool {
		return s.State == StateActionAllowed || s.State == StateContextLoaded
	}, func(s *SessionState) {
		s.State = StateContextLoaded
	})
}

// Block moves any state to BLOCKED
func (m *Machine) Block(ctx context.Context, sessionID string) (*SessionState, error) {
	s, err := m.transition(ctx, sessionID, "block", nil, func(s *SessionState) {
		s.State = StateBlocked
	})
	if err == nil {
		m.logger.Warn("session blocked", "session_id", sessionID)
	}
	return s, err
}

// Reset returns the session to AWAITING_INTENT and clears the active intent
func (m *Machine) Reset(ctx context.Context, sessionID string) (*SessionState, error) {
	return m.transition(ctx, sessionID, "reset", nil, func(s *SessionState) {
		s.State = StateAwaitingIntent
		s.ActiveIntentID = ""
	})
}

// End destroys the session
func (m *Machine) End(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session %s: %w", sessionID, err)
	}
	m.logger.Debug("session ended", "session_id", sessionID)
	return nil
}

// CanMutate reports whether the session may perform mutating actions.
// Unknown sessions never may.
func (m *Machine) CanMutate(ctx context.Context, sessionID string) (bool, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if s == nil {
		return false, nil
	}
	return s.State.CanMutate(), nil
}

// State returns the current state of the session
func (m *Machine) State(ctx context.Context, sessionID string) (State, error) {
	s, err := m.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.State, nil
}

// ActiveIntent returns the selected intent id, if any
func (m *Machine) ActiveIntent(ctx context.Context, sessionID string) (string, bool, error) {
	s, err := m.Get(ctx, sessionID)
	if err != nil {
		return "", false, err
	}
	return s.ActiveIntentID, s.ActiveIntentID != "", nil
}

// Touch records activity on the session
func (m *Machine) Touch(ctx context.Context, sessionID string) error {
	_, err := m.store.Update(ctx, sessionID, func(s *SessionState) error {
		s.LastActive = m.now()
		return nil
	})
	return err
}

// CleanupStale ends sessions inactive for longer than maxAge and returns
// the ids removed
func (m *Machine) CleanupStale(ctx context.Context, maxAge time.Duration) ([]string, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	cutoff := m.now().Add(-maxAge)
	var removed []string
	for _, s := range sessions {
		if s.LastActive.Before(cutoff) {
			if err := m.store.Delete(ctx, s.ID); err != nil {
				m.logger.Error("failed to remove stale session", "session_id", s.ID, "error", err)
				continue
			}
			removed = append(removed, s.ID)
		}
	}
	if len(removed) > 0 {
		m.logger.Info("cleaned up stale sessions", "count", len(removed))
	}
	return removed, nil
}

func (m *Machine) transition(
	ctx context.Context,
	sessionID, event string,
	allowed func(*SessionState) bool,
	apply func(*SessionState),
) (*SessionState, error) {
	s, err := m.store.Update(ctx, sessionID, func(s *SessionState) error {
		if allowed != nil && !allowed(s) {
			return &TransitionError{SessionID: sessionID, From: s.State, Event: event}
		}
		apply(s)
		s.LastActive = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
