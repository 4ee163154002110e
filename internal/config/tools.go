package config

// Tool defines the governed tools exposed by the gateway
const (
	// ToolSelectIntent is the intent handshake tool name
	ToolSelectIntent = "select_active_intent"
	// ToolReadFile is the file read tool name
	ToolReadFile = "read_file"
	// ToolListFiles is the directory listing tool name
	ToolListFiles = "list_files"
	// ToolWriteFile is the whole-file write tool name
	ToolWriteFile = "write_to_file"
	// ToolEditFile is the search/replace edit tool name
	ToolEditFile = "edit_file"
	// ToolExecuteCommand is the shell command tool name
	ToolExecuteCommand = "execute_command"
)

// AllTools returns a slice of all tools registered with the MCP server
func AllTools() []string {
	return []string{
		ToolSelectIntent,
		ToolReadFile,
		ToolListFiles,
		ToolWriteFile,
		ToolEditFile,
		ToolExecuteCommand,
	}
}
