package governance

import (
	"context"
	"log/slog"
)

// AuditLogger writes governance decisions to the structured log
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogDecision logs the result of evaluating a call
func (al *AuditLogger) LogDecision(ctx context.Context, call *Call, denial *Denial) {
	if denial == nil {
		al.logger.InfoContext(ctx, "governance_decision",
			"session_id", call.SessionID,
			"action", call.ActionName(),
			"target", call.Target,
			"intent_id", call.IntentID,
			"decision", "allow",
		)
		return
	}
	al.logger.WarnContext(ctx, "governance_decision",
		"session_id", call.SessionID,
		"action", call.ActionName(),
		"target", call.Target,
		"intent_id", call.IntentID,
		"decision", "deny",
		"code", string(denial.Code),
	)
}

// LogOutcome logs the result of executing an allowed call
func (al *AuditLogger) LogOutcome(ctx context.Context, call *Call, outcome Outcome) {
	if outcome.Err != nil {
		al.logger.ErrorContext(ctx, "governance_outcome",
			"session_id", call.SessionID,
			"action", call.ActionName(),
			"success", false,
			"duration_ms", outcome.Duration.Milliseconds(),
			"error", outcome.Err.Error(),
		)
		return
	}
	al.logger.InfoContext(ctx, "governance_outcome",
		"session_id", call.SessionID,
		"action", call.ActionName(),
		"success", true,
		"duration_ms", outcome.Duration.Milliseconds(),
		"content_hash", outcome.TargetHash,
	)
}

// LogGateFault logs a gate that failed to decide
func (al *AuditLogger) LogGateFault(ctx context.Context, call *Call, gate Gate, err any) {
	al.logger.ErrorContext(ctx, "gate_fault",
		"session_id", call.SessionID,
		"action", call.ActionName(),
		"gate", gate.Name(),
		"essential", gate.Essential(),
		"error", err,
	)
}

// LogRecorderFault logs a recorder that failed
func (al *AuditLogger) LogRecorderFault(ctx context.Context, call *Call, recorder string, err any) {
	al.logger.ErrorContext(ctx, "recorder_fault",
		"session_id", call.SessionID,
		"action", call.ActionName(),
		"recorder", recorder,
		"error", err,
	)
}
