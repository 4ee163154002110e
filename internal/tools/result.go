package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// Governor runs an action through the governance engine
type Governor interface {
	Run(ctx context.Context, sessionID, actionName string, args map[string]any, exec governance.Executor) (any, error)
}

// ErrorResult converts a governed-call error into a tool error. Denials
// carry their JSON form so the agent can recover; action failures are
// prefixed so they cannot be mistaken for a policy decision.
func ErrorResult(err error) *mcp.CallToolResult {
	var denial *governance.Denial
	if errors.As(err, &denial) {
		return mcp.NewToolResultError(denial.JSON())
	}
	var actionErr *governance.ActionError
	if errors.As(err, &actionErr) {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrActionFailed, actionErr.Err))
	}
	return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err))
}

// FormatListing renders a directory listing, one entry per line
func FormatListing(entries []workspace.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		kind := "file"
		if e.IsDir {
			kind = "dir"
		}
		fmt.Fprintf(&b, "%s (%s, %d bytes)\n", e.Name, kind, e.Size)
	}
	return b.String()
}

// FormatCommandOutput renders the result of a shell command
func FormatCommandOutput(exitCode int, stdout, stderr string) string {
	output := fmt.Sprintf("Exit Code: %d\n", exitCode)
	if stdout != "" {
		output += fmt.Sprintf("Stdout:\n%s\n", stdout)
	}
	if stderr != "" {
		output += fmt.Sprintf("Stderr:\n%s\n", stderr)
	}
	return output
}
