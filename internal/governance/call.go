package governance

import (
	"time"

	"github.com/AltairaLabs/intentgate/internal/action"
	"github.com/AltairaLabs/intentgate/internal/intent"
	"github.com/AltairaLabs/intentgate/internal/session"
)

// Call is one action attempt as seen by gates and recorders
type Call struct {
	SessionID string
	Request   action.Request
	// Target is the workspace-relative path of the request, "" when none
	Target string
	// Session is a snapshot taken before the gates ran
	Session *session.SessionState
	// IntentID is the active intent, "" when none
	IntentID string
	// Intent is the catalog entry for IntentID
	Intent  *intent.Intent
	Started time.Time
}

// ActionName returns the requested action
func (c *Call) ActionName() string { return c.Request.Name }

// Mutates reports whether the call writes its target
func (c *Call) Mutates() bool {
	return c.Request.Effect == action.EffectMutate && c.Target != ""
}

// Observes reports whether the call reads or writes its target
func (c *Call) Observes() bool {
	return c.Request.Effect != action.EffectNone && c.Target != ""
}

// Decision is the result of evaluating a call
type Decision struct {
	Call   *Call
	Denial *Denial
}

// Allowed reports whether every gate passed
func (d Decision) Allowed() bool { return d.Denial == nil }

// Outcome is the result of executing an allowed call
type Outcome struct {
	Result   any
	Err      error
	Duration time.Duration
	// TargetHash is the content hash of the target after execution
	TargetHash   string
	TargetExists bool
}

// Success reports whether the action completed without error
func (o Outcome) Success() bool { return o.Err == nil }
