package filesystem

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/intentgate/internal/action"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/tools"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// mockGovernor allows every call unless deny is set
type mockGovernor struct {
	deny     *governance.Denial
	sessions []string
	actions  []string
	// contents holds the data executors reported handling
	contents []string
}

func (m *mockGovernor) Run(
	ctx context.Context,
	sessionID, actionName string,
	args map[string]any,
	exec governance.Executor,
) (any, error) {
	m.sessions = append(m.sessions, sessionID)
	m.actions = append(m.actions, actionName)
	if m.deny != nil {
		return nil, m.deny
	}
	req, err := action.Normalize(actionName, args)
	if err != nil {
		return nil, &governance.Denial{Code: governance.CodeInvalidRequest, Message: err.Error()}
	}
	out, err := exec(ctx, &governance.Call{SessionID: sessionID, Request: req, Target: req.Path})
	if err != nil {
		return nil, &governance.ActionError{ActionName: actionName, Err: err}
	}
	if c, ok := out.(governance.Content); ok {
		m.contents = append(m.contents, string(c.Data))
		out = c.Result
	}
	return out, nil
}

func newRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
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

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestReadHandler(t *testing.T) {
	ws := newWorkspace(t)
	_ = ws.WriteFile("src/a.go", []byte("package a"))
	gov := &mockGovernor{}
	h := NewReadHandler(gov, ws)

	ctx := tools.WithSessionID(context.Background(), "sess-1")
	res, err := h.Handle(ctx, newRequest("read_file", map[string]any{"path": "src/a.go"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || resultText(t, res) != "package a" {
		t.Errorf("result = %+v", res)
	}
	if gov.sessions[0] != "sess-1" || gov.actions[0] != "read_file" {
		t.Errorf("governor saw %v %v", gov.sessions, gov.actions)
	}
	if len(gov.contents) != 1 || gov.contents[0] != "package a" {
		t.Errorf("reported contents = %q", gov.contents)
	}

	res, _ = h.Handle(ctx, newRequest("read_file", map[string]any{"path": "missing.go"}))
	if !res.IsError || !strings.HasPrefix(resultText(t, res), "action failed:") {
		t.Errorf("missing file result = %s", resultText(t, res))
	}
}

func TestWriteHandler(t *testing.T) {
	ws := newWorkspace(t)
	gov := &mockGovernor{}
	h := NewWriteHandler(gov, ws)

	res, err := h.Handle(context.Background(), newRequest("write_to_file", map[string]any{
		"path":    "src/api/x.ts",
		"content": "export {}",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("write failed: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Wrote 9 bytes to src/api/x.ts" {
		t.Errorf("result = %q", got)
	}
	data, _ := ws.ReadFile("src/api/x.ts")
	if string(data) != "export {}" {
		t.Errorf("file content = %q", data)
	}
	if len(gov.contents) != 1 || gov.contents[0] != "export {}" {
		t.Errorf("reported contents = %q", gov.contents)
	}

	res, _ = h.Handle(context.Background(), newRequest("write_to_file", map[string]any{"path": "x"}))
	if !res.IsError {
		t.Error("missing content should be rejected")
	}
}

func TestWriteHandlerDenied(t *testing.T) {
	ws := newWorkspace(t)
	gov := &mockGovernor{deny: &governance.Denial{
		Code:    governance.CodeNoActiveIntent,
		Message: "You must call select_active_intent first",
	}}
	h := NewWriteHandler(gov, ws)

	res, _ := h.Handle(context.Background(), newRequest("write_to_file", map[string]any{
		"path":    "src/api/x.ts",
		"content": "x",
	}))
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if text := resultText(t, res); !strings.Contains(text, `"code":"NO_ACTIVE_INTENT"`) {
		t.Errorf("denial text = %s", text)
	}
	if _, exists, _ := ws.Hash("src/api/x.ts"); exists {
		t.Error("denied write reached disk")
	}
}

func TestEditHandler(t *testing.T) {
	ws := newWorkspace(t)
	_ = ws.WriteFile("a.txt", []byte("one two one"))
	gov := &mockGovernor{}
	h := NewEditHandler(gov, ws)

	res, _ := h.Handle(context.Background(), newRequest("edit_file", map[string]any{
		"file_path":   "a.txt",
		"old_string":  "one",
		"new_string":  "1",
		"replace_all": true,
	}))
	if res.IsError {
		t.Fatalf("edit failed: %s", resultText(t, res))
	}
	data, _ := ws.ReadFile("a.txt")
	if string(data) != "1 two 1" {
		t.Errorf("content = %q", data)
	}
	if len(gov.contents) != 1 || gov.contents[0] != "1 two 1" {
		t.Errorf("reported contents = %q", gov.contents)
	}

	res, _ = h.Handle(context.Background(), newRequest("edit_file", map[string]any{
		"file_path":  "a.txt",
		"old_string": "absent",
		"new_string": "x",
	}))
	if !res.IsError {
		t.Error("edit with no match should fail")
	}
}

func TestListHandler(t *testing.T) {
	ws := newWorkspace(t)
	_ = ws.WriteFile("b.txt", []byte("hi"))
	h := NewListHandler(&mockGovernor{}, ws)

	res, _ := h.Handle(context.Background(), newRequest("list_files", map[string]any{}))
	if res.IsError {
		t.Fatalf("list failed: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "b.txt (file, 2 bytes)\n" {
		t.Errorf("listing = %q", got)
	}
}
