// Package command provides the governed shell command tool handler
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
)

const waitDelay = time.Second

// ExecuteHandler handles execute_command. Commands run through sh in the
// workspace root and require an active intent.
type ExecuteHandler struct {
	engine  tools.Governor
	dir     string
	timeout time.Duration
}

// NewExecuteHandler creates a new execute_command handler
func NewExecuteHandler(engine tools.Governor, dir string, timeout time.Duration) *ExecuteHandler {
	if timeout <= 0 {
		timeout = config.DefaultCommandTimeout
	}
	return &ExecuteHandler{engine: engine, dir: dir, timeout: timeout}
}

// Handle implements the execute_command tool
func (h *ExecuteHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.engine.Run(ctx, tools.SessionID(ctx), config.ToolExecuteCommand, request.GetArguments(),
		func(ctx context.Context, call *governance.Call) (any, error) {
			return h.run(ctx, call.Request.Command)
		})
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	return mcp.NewToolResultText(out.(string)), nil
}

func (h *ExecuteHandler) run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	// #nosec G204 - the command is the governed action itself
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = h.dir
	// children holding the pipes open must not outlive the timeout
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return tools.FormatCommandOutput(0, stdout.String(), stderr.String()), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", errors.New(tools.FormatCommandOutput(exitErr.ExitCode(), stdout.String(), stderr.String()))
	}
	return "", fmt.Errorf("failed to run command: %w", err)
}
