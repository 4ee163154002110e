package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// DefaultSessionID is used when the transport carries no session
const DefaultSessionID = "default-session"

type contextKey string

const sessionIDKey contextKey = "session_id"

// WithSessionID attaches a session id to ctx for transports without client sessions
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID extracts the governing session id from ctx
func SessionID(ctx context.Context) string {
	// The SSE/HTTP transport injects the client session
	if cs := server.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		return cs.SessionID()
	}
	// Fallback for stdio transport or testing
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		return sessionID
	}
	return DefaultSessionID
}
