package gateway

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// This file contains server startup methods that start blocking servers.
// They are exercised by the process entry point rather than unit tests.

// Serve starts the MCP server with stdio transport
func (ms *MCPServer) Serve() error {
	return server.ServeStdio(ms.server)
}

// ServeHTTP starts the MCP server with HTTP/SSE transport on the specified address
func (ms *MCPServer) ServeHTTP(addr string) error {
	sseServer := server.NewSSEServer(ms.server,
		server.WithBaseURL("http://"+addr),
		server.WithStaticBasePath("/mcp"),
	)
	ms.mu.Lock()
	ms.sse = sseServer
	ms.mu.Unlock()
	return sseServer.Start(addr)
}

// ServeHTTPWithLogger starts the MCP server with HTTP/SSE transport and custom logger
func (ms *MCPServer) ServeHTTPWithLogger(addr string, logger *slog.Logger) error {
	logger.Info("Starting MCP server with HTTP/SSE transport", "address", addr, "base_path", "/mcp")
	return ms.ServeHTTP(addr)
}

// Shutdown stops the HTTP/SSE transport if it was started
func (ms *MCPServer) Shutdown(ctx context.Context) error {
	ms.mu.Lock()
	sseServer := ms.sse
	ms.mu.Unlock()
	if sseServer == nil {
		return nil
	}
	return sseServer.Shutdown(ctx)
}
