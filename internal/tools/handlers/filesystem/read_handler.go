// Package filesystem provides the governed file tool handlers
package filesystem

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// ReadHandler handles read_file. A successful read records the file's
// fingerprint for the session.
type ReadHandler struct {
	engine tools.Governor
	ws     *workspace.Workspace
}

// NewReadHandler creates a new read_file handler
func NewReadHandler(engine tools.Governor, ws *workspace.Workspace) *ReadHandler {
	return &ReadHandler{engine: engine, ws: ws}
}

// Handle implements the read_file tool
func (h *ReadHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.engine.Run(ctx, tools.SessionID(ctx), config.ToolReadFile, request.GetArguments(),
		func(_ context.Context, call *governance.Call) (any, error) {
			data, err := h.ws.ReadFile(call.Target)
			if err != nil {
				return nil, err
			}
			return governance.Content{Result: string(data), Data: data}, nil
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(out.(string)), nil
}
