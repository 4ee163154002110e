// Package gateway exposes the governed tools over MCP and a read-only HTTP
// API for inspecting sessions, intents and the ledger.
package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
	"github.com/AltairaLabs/intentgate/internal/tools/handlers/command"
	"github.com/AltairaLabs/intentgate/internal/tools/handlers/filesystem"
	"github.com/AltairaLabs/intentgate/internal/tools/handlers/intent"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// Config holds configuration for the MCP server
type Config struct {
	Name           string
	Version        string
	CommandTimeout time.Duration
}

// MCPServer wraps the mcp-go server with the governed tool set
type MCPServer struct {
	server       *server.MCPServer
	engine       *governance.Engine
	toolRegistry *tools.ToolHandlerRegistry
	logger       *slog.Logger

	mu  sync.Mutex
	sse *server.SSEServer
}

// NewMCPServer creates the MCP server and registers every governed tool
func NewMCPServer(cfg Config, engine *governance.Engine, ws *workspace.Workspace, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	ms := &MCPServer{engine: engine, logger: logger}

	hooks := &server.Hooks{}
	hooks.AddOnUnregisterSession(ms.onSessionClosed)

	ms.server = server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)

	selectHandler := intent.NewSelectHandler(engine, logger)
	readHandler := filesystem.NewReadHandler(engine, ws)
	listHandler := filesystem.NewListHandler(engine, ws)
	writeHandler := filesystem.NewWriteHandler(engine, ws)
	editHandler := filesystem.NewEditHandler(engine, ws)
	executeHandler := command.NewExecuteHandler(engine, ws.Root(), cfg.CommandTimeout)

	ms.toolRegistry = tools.NewToolHandlerRegistry(map[string]tools.ToolHandlerFunc{
		config.ToolSelectIntent:   selectHandler.Handle,
		config.ToolReadFile:       readHandler.Handle,
		config.ToolListFiles:      listHandler.Handle,
		config.ToolWriteFile:      writeHandler.Handle,
		config.ToolEditFile:       editHandler.Handle,
		config.ToolExecuteCommand: executeHandler.Handle,
	})

	ms.registerTools()
	return ms
}

// Tools returns the registered tool names in sorted order
func (ms *MCPServer) Tools() []string {
	return ms.toolRegistry.Names()
}

// onSessionClosed ends the governed session when an MCP client disconnects
func (ms *MCPServer) onSessionClosed(ctx context.Context, cs server.ClientSession) {
	sessionID := cs.SessionID()
	if sessionID == "" {
		return
	}
	if err := ms.engine.EndSession(ctx, sessionID); err != nil {
		ms.logger.Debug("no governed session to end", "session_id", sessionID, "error", err)
		return
	}
	ms.logger.Info("Ended governed session", "session_id", sessionID)
}
