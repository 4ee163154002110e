package governance

import (
	"encoding/json"
	"fmt"
)

// Code identifies a governance denial
type Code string

const (
	// CodeMissingIntentID means select_active_intent was called without an id
	CodeMissingIntentID Code = "MISSING_INTENT_ID"
	// CodeInvalidIntentID means the id is absent from the catalog
	CodeInvalidIntentID Code = "INVALID_INTENT_ID"
	// CodeNoActiveIntent means a mutating action was attempted before the handshake
	CodeNoActiveIntent Code = "NO_ACTIVE_INTENT"
	// CodeScopeViolation means the target is outside the active intent's scope
	CodeScopeViolation Code = "SCOPE_VIOLATION"
	// CodeStaleFile means the target changed since the session last read it
	CodeStaleFile Code = "STALE_FILE"
	// CodeGateFault means an essential gate failed internally
	CodeGateFault Code = "GATE_FAULT"
	// CodeInvalidRequest means the payload failed boundary normalization
	CodeInvalidRequest Code = "INVALID_REQUEST"
	// CodeSessionBlocked means the session is BLOCKED until reset
	CodeSessionBlocked Code = "SESSION_BLOCKED"
	// CodeProtectedPath means the target holds the gateway's own records
	CodeProtectedPath Code = "PROTECTED_PATH"
)

// Denial is a deliberate, recoverable refusal to run an action. It is meant
// to be read by the calling agent, which should follow the message.
type Denial struct {
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
	ActionName string         `json:"action,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// JSON renders the denial for the agent
func (d *Denial) JSON() string {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf(`{"code":%q,"message":%q}`, d.Code, d.Message)
	}
	return string(data)
}

func newDenial(code Code, actionName, message string, details map[string]any) *Denial {
	return &Denial{Code: code, Message: message, ActionName: actionName, Details: details}
}

// ActionError reports that an allowed action ran and failed. It is distinct
// from a Denial: policy permitted the action, the action itself broke.
type ActionError struct {
	ActionName string
	Err        error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.ActionName, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
