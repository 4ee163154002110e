package filesystem

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// WriteHandler handles write_to_file
type WriteHandler struct {
	engine tools.Governor
	ws     *workspace.Workspace
}

// NewWriteHandler creates a new write_to_file handler
func NewWriteHandler(engine tools.Governor, ws *workspace.Workspace) *WriteHandler {
	return &WriteHandler{engine: engine, ws: ws}
}

// Handle implements the write_to_file tool
func (h *WriteHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := h.engine.Run(ctx, tools.SessionID(ctx), config.ToolWriteFile, request.GetArguments(),
		func(_ context.Context, call *governance.Call) (any, error) {
			data := []byte(content)
			if err := h.ws.WriteFile(call.Target, data); err != nil {
				return nil, err
			}
			return governance.Content{
				Result: fmt.Sprintf("Wrote %d bytes to %s", len(content), call.Target),
				Data:   data,
			}, nil
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(out.(string)), nil
}
