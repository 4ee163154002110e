package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/AltairaLabs/intentgate/internal/config"
)

func TestVersionFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	defer flag.CommandLine.Init("test", flag.ContinueOnError)

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	os.Args = []string{"cmd", "-version", "-workspace", "/tmp/ws"}

	testVersion := flag.Bool("version", false, "Print version and exit")
	_ = flag.Bool("debug", false, "Enable debug logging")
	testWorkspace := flag.String("workspace", "", "Workspace root")
	flag.Parse()

	if !*testVersion {
		t.Error("Expected version flag to be true")
	}
	if *testWorkspace != "/tmp/ws" {
		t.Errorf("workspace = %q", *testWorkspace)
	}
}

func writeOrchestration(t *testing.T, root, intents string) {
	t.Helper()
	dir := filepath.Join(root, config.DefaultOrchestrationDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.IntentsFileName), []byte(intents), 0o600); err != nil {
		t.Fatal(err)
	}
}

func testConfig(root string) config.Config {
	cfg := config.Default()
	cfg.WorkspaceRoot = root
	cfg.RevisionTimeout = time.Second
	return cfg
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	writeOrchestration(t, root, `active_intents:
  - id: INT-001
    name: Weather API
    status: IN_PROGRESS
    owned_scope: ["src/api/**"]
`)

	a, err := build(testConfig(root), nil)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.catalog.Len() != 1 {
		t.Errorf("intents = %d", a.catalog.Len())
	}
	if got, want := a.engine.Gates(), []string{"state", "protected", "concurrency", "scope"}; !reflect.DeepEqual(got, want) {
		t.Errorf("gates = %v, want %v", got, want)
	}
	if got, want := a.engine.Recorders(), []string{"fingerprint", "ledger", "intent-map"}; !reflect.DeepEqual(got, want) {
		t.Errorf("recorders = %v, want %v", got, want)
	}
	if len(a.mcp.Tools()) != 6 {
		t.Errorf("tools = %v", a.mcp.Tools())
	}
	for _, p := range []string{a.cfg.LedgerPath(), a.cfg.DenialLedgerPath()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("ledger %s not created: %v", p, err)
		}
	}
}

func TestBuildRejectsInvalidCatalog(t *testing.T) {
	tests := []struct {
		name    string
		intents string
		want    string
	}{
		{name: "missing scope", intents: "active_intents:\n  - id: INT-001\n    name: x\n", want: "owned_scope"},
		{name: "no root list", intents: "intents: []\n", want: "active_intents"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeOrchestration(t, root, tt.intents)
			_, err := build(testConfig(root), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("build() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := build(testConfig(t.TempDir()), nil); err == nil {
		t.Error("missing intents file should fail")
	}
}

func TestCleanupLoopStops(t *testing.T) {
	root := t.TempDir()
	writeOrchestration(t, root, "active_intents: []\n")
	a, err := build(testConfig(root), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	if _, err := a.engine.StartSession(context.Background(), "idle"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupLoop(ctx, a.engine, 5*time.Millisecond, -time.Minute, slog.Default())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, _ := a.engine.Session(context.Background(), "idle")
		if st == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if st, _ := a.engine.Session(context.Background(), "idle"); st != nil {
		t.Error("idle session survived cleanup")
	}
}
