package gateway

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
)

// registerTools registers all MCP tools with handlers via the tool registry
func (ms *MCPServer) registerTools() {
	add := func(tool mcp.Tool) {
		h, err := ms.toolRegistry.GetHandler(tool.Name)
		if err != nil {
			// every declared tool must have a handler
			panic(fmt.Sprintf("Tool %s not found in registry", tool.Name))
		}
		ms.server.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, req)
		})
	}

	add(mcp.NewTool(config.ToolSelectIntent,
		mcp.WithDescription("Select the intent this session works under. Must be called before any file change or command."),
		mcp.WithString("intent_id",
			mcp.Required(),
			mcp.Description("Id of a declared intent, e.g. INT-001"),
		),
	))

	add(mcp.NewTool(config.ToolReadFile,
		mcp.WithDescription("Read a file from the workspace"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to workspace root"),
		),
	))

	add(mcp.NewTool(config.ToolListFiles,
		mcp.WithDescription("List files and directories in the workspace"),
		mcp.WithString("path",
			mcp.Description("Path to list (defaults to workspace root)"),
		),
	))

	add(mcp.NewTool(config.ToolWriteFile,
		mcp.WithDescription("Write a file inside the active intent's scope"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to workspace root"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full file content"),
		),
	))

	add(mcp.NewTool(config.ToolEditFile,
		mcp.WithDescription("Replace text in a file inside the active intent's scope"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File path relative to workspace root"),
		),
		mcp.WithString("old_string",
			mcp.Required(),
			mcp.Description("Exact text to replace"),
		),
		mcp.WithString("new_string",
			mcp.Required(),
			mcp.Description("Replacement text"),
		),
		mcp.WithBoolean("replace_all",
			mcp.Description("Replace every occurrence instead of the first"),
		),
	))

	add(mcp.NewTool(config.ToolExecuteCommand,
		mcp.WithDescription("Run a shell command in the workspace root"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Command line passed to sh -c"),
		),
	))
}
