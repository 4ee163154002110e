package config

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.OrchestrationDir != DefaultOrchestrationDir {
		t.Errorf("OrchestrationDir = %q, want %q", cfg.OrchestrationDir, DefaultOrchestrationDir)
	}
	if cfg.GRPCPort != DefaultGRPCPort {
		t.Errorf("GRPCPort = %q, want %q", cfg.GRPCPort, DefaultGRPCPort)
	}
	if cfg.SessionMaxAge != DefaultSessionMaxAge {
		t.Errorf("SessionMaxAge = %v, want %v", cfg.SessionMaxAge, DefaultSessionMaxAge)
	}
	if cfg.RevisionTimeout != DefaultRevisionTimeout {
		t.Errorf("RevisionTimeout = %v, want %v", cfg.RevisionTimeout, DefaultRevisionTimeout)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "empty environment keeps defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg Config) {
				if cfg.HTTPPort != DefaultHTTPPort {
					t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, DefaultHTTPPort)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"INTENTGATE_WORKSPACE":       "/srv/repo",
				"INTENTGATE_MODEL":           "model-x",
				"GRPC_PORT":                  "6000",
				"API_PORT":                   " 7000 ",
				"INTENTGATE_SESSION_MAX_AGE": "90s",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.WorkspaceRoot != "/srv/repo" {
					t.Errorf("WorkspaceRoot = %q", cfg.WorkspaceRoot)
				}
				if cfg.ModelIdentifier != "model-x" {
					t.Errorf("ModelIdentifier = %q", cfg.ModelIdentifier)
				}
				if cfg.GRPCPort != "6000" || cfg.APIPort != "7000" {
					t.Errorf("ports = %q/%q", cfg.GRPCPort, cfg.APIPort)
				}
				if cfg.SessionMaxAge != 90*time.Second {
					t.Errorf("SessionMaxAge = %v", cfg.SessionMaxAge)
				}
			},
		},
		{
			name:    "bad duration",
			env:     map[string]string{"INTENTGATE_SESSION_MAX_AGE": "soon"},
			wantErr: true,
		},
		{
			name:    "negative duration",
			env:     map[string]string{"INTENTGATE_SESSION_MAX_AGE": "-1m"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestOrchestrationPaths(t *testing.T) {
	cfg := Default()
	cfg.WorkspaceRoot = "/work"

	if got, want := cfg.IntentsPath(), filepath.Join("/work", ".orchestration", "active_intents.yaml"); got != want {
		t.Errorf("IntentsPath() = %q, want %q", got, want)
	}
	if got, want := cfg.DenialLedgerPath(), filepath.Join("/work", ".orchestration", "agent_denials.jsonl"); got != want {
		t.Errorf("DenialLedgerPath() = %q, want %q", got, want)
	}

	cfg.OrchestrationDir = "/etc/gate"
	if got, want := cfg.LedgerPath(), filepath.Join("/etc/gate", "agent_trace.jsonl"); got != want {
		t.Errorf("LedgerPath() = %q, want %q", got, want)
	}
}

func TestProtectedPatterns(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want []string
	}{
		{name: "default", dir: DefaultOrchestrationDir, want: []string{".orchestration/**"}},
		{name: "nested", dir: "ops/gate", want: []string{"ops/gate/**"}},
		{name: "absolute inside", dir: "/work/.records", want: []string{".records/**"}},
		{name: "outside workspace", dir: "/etc/gate", want: nil},
		{name: "relative escape", dir: "../gate", want: nil},
		{name: "workspace root", dir: ".", want: []string{LedgerFileName, DenialLedgerFileName, IntentsFileName, IgnoreFileName, IntentMapFileName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.WorkspaceRoot = "/work"
			cfg.OrchestrationDir = tt.dir
			if got := cfg.ProtectedPatterns(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProtectedPatterns() = %v, want %v", got, tt.want)
			}
		})
	}
}
