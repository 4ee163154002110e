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

// EditHandler handles edit_file: a search and replace on an existing file
type EditHandler struct {
	engine tools.Governor
	ws     *workspace.Workspace
}

// NewEditHandler creates a new edit_file handler
func NewEditHandler(engine tools.Governor, ws *workspace.Workspace) *EditHandler {
	return &EditHandler{engine: engine, ws: ws}
}

// Handle implements the edit_file tool
func (h *EditHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldString, err := request.RequireString("old_string")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newString, err := request.RequireString("new_string")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replaceAll := request.GetBool("replace_all", false)

	out, err := h.engine.Run(ctx, tools.SessionID(ctx), config.ToolEditFile, request.GetArguments(),
		func(_ context.Context, call *governance.Call) (any, error) {
			n, data, err := h.ws.ReplaceInFile(call.Target, oldString, newString, replaceAll)
			if err != nil {
				return nil, err
			}
			return governance.Content{
				Result: fmt.Sprintf("Replaced %d occurrence(s) in %s", n, call.Target),
				Data:   data,
			}, nil
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(out.(string)), nil
}
