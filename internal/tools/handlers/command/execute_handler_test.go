package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/action"
	"github.com/AltairaLabs/intentgate/internal/governance"
)

type mockGovernor struct {
	deny *governance.Denial
}

func (m *mockGovernor) Run(
	ctx context.Context,
	sessionID, actionName string,
	args map[string]any,
	exec governance.Executor,
) (any, error) {
	if m.deny != nil {
		return nil, m.deny
	}
	req, err := action.Normalize(actionName, args)
	if err != nil {
		return nil, &governance.Denial{Code: governance.CodeInvalidRequest, Message: err.Error()}
	}
	out, err := exec(ctx, &governance.Call{SessionID: sessionID, Request: req})
	if err != nil {
		return nil, &governance.ActionError{ActionName: actionName, Err: err}
	}
	return out, nil
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "execute_command"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	return text.Text
}

func TestExecuteHandler(t *testing.T) {
	h := NewExecuteHandler(&mockGovernor{}, t.TempDir(), 5*time.Second)

	tests := []struct {
		name      string
		command   string
		wantError bool
		contains  []string
	}{
		{name: "success", command: "echo hello", contains: []string{"Exit Code: 0", "Stdout:\nhello"}},
		{name: "stderr", command: "echo oops 1>&2", contains: []string{"Stderr:\noops"}},
		{name: "non-zero exit", command: "exit 3", wantError: true, contains: []string{"action failed:", "Exit Code: 3"}},
		{name: "missing command", command: "", wantError: true, contains: []string{"INVALID_REQUEST"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Handle(context.Background(), newRequest(map[string]any{"command": tt.command}))
			if err != nil {
				t.Fatal(err)
			}
			if res.IsError != tt.wantError {
				t.Fatalf("IsError = %v, text = %s", res.IsError, resultText(t, res))
			}
			text := resultText(t, res)
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("result %q does not contain %q", text, want)
				}
			}
		})
	}
}

func TestExecuteHandlerRunsInDir(t *testing.T) {
	dir := t.TempDir()
	h := NewExecuteHandler(&mockGovernor{}, dir, 0)
	if h.timeout <= 0 {
		t.Fatal("expected default timeout")
	}

	res, _ := h.Handle(context.Background(), newRequest(map[string]any{"command": "touch made.txt && ls"}))
	if res.IsError || !strings.Contains(resultText(t, res), "made.txt") {
		t.Errorf("result = %s", resultText(t, res))
	}
}

func TestExecuteHandlerTimeout(t *testing.T) {
	h := NewExecuteHandler(&mockGovernor{}, t.TempDir(), 50*time.Millisecond)

	res, _ := h.Handle(context.Background(), newRequest(map[string]any{"command": "sleep 5"}))
	if !res.IsError {
		t.Error("expected timed out command to fail")
	}
}

func TestExecuteHandlerDenied(t *testing.T) {
	dir := t.TempDir()
	h := NewExecuteHandler(&mockGovernor{deny: &governance.Denial{
		Code:    governance.CodeNoActiveIntent,
		Message: "select an intent",
	}}, dir, time.Second)

	res, _ := h.Handle(context.Background(), newRequest(map[string]any{"command": "touch nope"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "NO_ACTIVE_INTENT") {
		t.Errorf("result = %s", resultText(t, res))
	}
}
