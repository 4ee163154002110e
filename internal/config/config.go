package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Orchestration file names, relative to the orchestration directory
const (
	DefaultOrchestrationDir = ".orchestration"
	IntentsFileName         = "active_intents.yaml"
	IgnoreFileName          = ".intentignore"
	LedgerFileName          = "agent_trace.jsonl"
	DenialLedgerFileName    = "agent_denials.jsonl"
	IntentMapFileName       = "intent_map.md"
	LessonsFileName         = "CLAUDE.md"
)

// Default network and identity settings
const (
	DefaultGRPCPort        = "50050"
	DefaultHTTPPort        = "8080"
	DefaultAPIPort         = "8081"
	DefaultModelIdentifier = "unknown"
	DefaultServerName      = "intentgate"
	DefaultVersion         = "0.1.0"
)

// Config holds the gateway process configuration
type Config struct {
	// Name and Version identify the MCP server
	Name    string
	Version string

	// WorkspaceRoot is the directory governed actions operate on
	WorkspaceRoot string
	// OrchestrationDir holds intents, ignore list and ledgers; relative paths
	// resolve against WorkspaceRoot
	OrchestrationDir string
	// ModelIdentifier is recorded as the contributor on ledger file entries
	ModelIdentifier string

	GRPCPort string
	HTTPPort string
	APIPort  string

	SessionMaxAge   time.Duration
	CleanupInterval time.Duration
	RevisionTimeout time.Duration
	CommandTimeout  time.Duration
}

// Default returns the default configuration rooted at the current directory
func Default() Config {
	return Config{
		Name:             DefaultServerName,
		Version:          DefaultVersion,
		WorkspaceRoot:    ".",
		OrchestrationDir: DefaultOrchestrationDir,
		ModelIdentifier:  DefaultModelIdentifier,
		GRPCPort:         DefaultGRPCPort,
		HTTPPort:         DefaultHTTPPort,
		APIPort:          DefaultAPIPort,
		SessionMaxAge:    DefaultSessionMaxAge,
		CleanupInterval:  DefaultCleanupInterval,
		RevisionTimeout:  DefaultRevisionTimeout,
		CommandTimeout:   DefaultCommandTimeout,
	}
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// FromEnv overlays environment variables on the default configuration
func FromEnv(lookup LookupFunc) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("INTENTGATE_WORKSPACE", &cfg.WorkspaceRoot)
	str("INTENTGATE_ORCHESTRATION_DIR", &cfg.OrchestrationDir)
	str("INTENTGATE_MODEL", &cfg.ModelIdentifier)
	str("GRPC_PORT", &cfg.GRPCPort)
	str("HTTP_PORT", &cfg.HTTPPort)
	str("API_PORT", &cfg.APIPort)

	if v, ok := lookup("INTENTGATE_SESSION_MAX_AGE"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("invalid INTENTGATE_SESSION_MAX_AGE: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid INTENTGATE_SESSION_MAX_AGE: must be positive, got %s", d)
		}
		cfg.SessionMaxAge = d
	}

	return cfg, nil
}

// OrchestrationPath returns the absolute-or-workspace-relative path of an
// orchestration file
func (c Config) OrchestrationPath(name string) string {
	dir := c.OrchestrationDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.WorkspaceRoot, dir)
	}
	return filepath.Join(dir, name)
}

// ProtectedPatterns returns the workspace-relative glob covering the
// orchestration directory, or nil when that directory lies outside the
// workspace and so cannot be a governed target
func (c Config) ProtectedPatterns() []string {
	root, err := filepath.Abs(c.WorkspaceRoot)
	if err != nil {
		return nil
	}
	dir := c.OrchestrationDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	if rel == "." {
		// records live at the root; protect the files themselves
		return []string{LedgerFileName, DenialLedgerFileName, IntentsFileName, IgnoreFileName, IntentMapFileName}
	}
	return []string{filepath.ToSlash(rel) + "/**"}
}

// IntentsPath returns the path of the intent declaration file
func (c Config) IntentsPath() string { return c.OrchestrationPath(IntentsFileName) }

// IgnorePath returns the path of the ignore list
func (c Config) IgnorePath() string { return c.OrchestrationPath(IgnoreFileName) }

// LedgerPath returns the path of the executed-action ledger
func (c Config) LedgerPath() string { return c.OrchestrationPath(LedgerFileName) }

// DenialLedgerPath returns the path of the denied-attempt ledger
func (c Config) DenialLedgerPath() string { return c.OrchestrationPath(DenialLedgerFileName) }

// IntentMapPath returns the path of the intent map document
func (c Config) IntentMapPath() string { return c.OrchestrationPath(IntentMapFileName) }

// LessonsPath returns the path of the lessons file
func (c Config) LessonsPath() string { return c.OrchestrationPath(LessonsFileName) }
