// Package intent provides the intent handshake tool handler
package intent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	intentpkg "github.com/AltairaLabs/intentgate/internal/intent"
	"github.com/AltairaLabs/intentgate/internal/tools"
)

// Selector performs the handshake through the governance engine
type Selector interface {
	tools.Governor
	SelectIntent(ctx context.Context, sessionID, intentID string) (intentpkg.Intent, error)
}

// SelectHandler handles select_active_intent
type SelectHandler struct {
	engine Selector
	logger *slog.Logger
}

// NewSelectHandler creates a new select_active_intent handler
func NewSelectHandler(engine Selector, logger *slog.Logger) *SelectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectHandler{engine: engine, logger: logger}
}

// Handle implements the select_active_intent tool. On success the agent
// receives the intent's context block.
func (h *SelectHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := tools.SessionID(ctx)

	out, err := h.engine.Run(ctx, sessionID, config.ToolSelectIntent, request.GetArguments(),
		func(ctx context.Context, call *governance.Call) (any, error) {
			return h.engine.SelectIntent(ctx, sessionID, call.Request.IntentID)
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}

	selected, ok := out.(intentpkg.Intent)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, "unexpected handshake result")), nil
	}
	block, err := intentpkg.RenderContext(selected)
	if err != nil {
		h.logger.Error("failed to render intent context", "intent_id", selected.ID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err)), nil
	}
	return mcp.NewToolResultText(block), nil
}
