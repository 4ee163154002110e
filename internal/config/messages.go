package config

// Messages returned to the calling agent. Denials are recovery instructions,
// so each one names the corrective action.
const (
	// MsgMissingIntentID is returned when select_active_intent has no intent_id
	MsgMissingIntentID = "Missing required parameter: intent_id. You must provide a valid Intent ID."
	// MsgInvalidIntentID is the format string for an unknown intent id
	MsgInvalidIntentID = "Intent %q not found in %s. Available intents: %s"
	// MsgNoActiveIntent is the format string for mutating before the handshake
	MsgNoActiveIntent = "You must call select_active_intent before using %q. Available intents: %s. Call select_active_intent(intent_id) first."
	// MsgSessionBlocked is the format string for actions in a blocked session
	MsgSessionBlocked = "Session %s is blocked. %q cannot run until the session is reset."
	// MsgScopeViolation is the format string for out-of-scope targets
	MsgScopeViolation = "Scope Violation: Intent %q (%s) is not authorized to edit %q. Allowed scope: %s. Request scope expansion or select a different intent."
	// MsgStaleFile is the format string for optimistic concurrency conflicts
	MsgStaleFile = "Stale File: %q has been modified by another agent or process since you last read it. Re-read the file using read_file before attempting to write."
	// MsgProtectedPath is the format string for mutations of governance records
	MsgProtectedPath = "Protected Path: %q holds governance records and cannot be modified by %q. Choose a target outside %s."
	// MsgGateFault is the format string for a failed essential gate
	MsgGateFault = "Governance check %q failed internally; %q was not executed. Retry the action or report the fault."
	// MsgInvalidRequest is the format string for payloads rejected at the boundary
	MsgInvalidRequest = "Invalid request for %q: %v"
	// ErrSessionError is the format string for session errors
	ErrSessionError = "session error: %v"
	// ErrActionFailed is the format string for governed actions that ran and failed
	ErrActionFailed = "action failed: %v"
)
