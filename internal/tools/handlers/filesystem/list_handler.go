package filesystem

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// ListHandler handles list_files
type ListHandler struct {
	engine tools.Governor
	ws     *workspace.Workspace
}

// NewListHandler creates a new list_files handler
func NewListHandler(engine tools.Governor, ws *workspace.Workspace) *ListHandler {
	return &ListHandler{engine: engine, ws: ws}
}

// Handle implements the list_files tool
func (h *ListHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.engine.Run(ctx, tools.SessionID(ctx), config.ToolListFiles, request.GetArguments(),
		func(_ context.Context, call *governance.Call) (any, error) {
			entries, err := h.ws.List(call.Target)
			if err != nil {
				return nil, err
			}
			return tools.FormatListing(entries), nil
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(out.(string)), nil
}
