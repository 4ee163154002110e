// Package concurrency detects conflicting modification of workspace files
// with per-session content fingerprints. Nothing is ever locked: a conflict
// is reported to the caller, who must re-read the file and retry.
package concurrency

import (
	"context"
	"fmt"
	"log/slog"
)

// FingerprintStore holds the last observed content hash of each path,
// keyed by (session, workspace-relative path)
type FingerprintStore interface {
	Get(ctx context.Context, sessionID, path string) (string, bool, error)
	Set(ctx context.Context, sessionID, path, hash string) error
	Delete(ctx context.Context, sessionID, path string) error
	// Clear drops every fingerprint of a session
	Clear(ctx context.Context, sessionID string) error
	// Snapshot returns a copy of a session's fingerprints
	Snapshot(ctx context.Context, sessionID string) (map[string]string, error)
}

// Hasher fingerprints workspace files. exists is false when the file is absent.
type Hasher interface {
	Hash(rel string) (hash string, exists bool, err error)
}

// Conflict reports that a file changed since the session last observed it
type Conflict struct {
	Path         string `json:"path"`
	ExpectedHash string `json:"expectedHash"`
	ActualHash   string `json:"actualHash"`
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("stale file %s: expected %s, found %s", c.Path, c.ExpectedHash, c.ActualHash)
}

// Guard implements optimistic concurrency control over a FingerprintStore
type Guard struct {
	store  FingerprintStore
	hasher Hasher
	logger *slog.Logger
}

// NewGuard creates a guard
func NewGuard(store FingerprintStore, hasher Hasher, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, hasher: hasher, logger: logger}
}

// Observe records the current hash of path for the session. Observing a
// missing file drops any stale fingerprint.
func (g *Guard) Observe(ctx context.Context, sessionID, path string) (string, error) {
	hash, exists, err := g.hasher.Hash(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", g.store.Delete(ctx, sessionID, path)
	}
	if err := g.store.Set(ctx, sessionID, path, hash); err != nil {
		return "", fmt.Errorf("failed to store fingerprint: %w", err)
	}
	g.logger.Debug("fingerprint observed", "session_id", sessionID, "path", path, "hash", hash)
	return hash, nil
}

// Check compares the session's fingerprint of path with the file's current
// hash. It returns nil when no fingerprint is held, when the file does not
// exist yet, or when the hashes agree.
func (g *Guard) Check(ctx context.Context, sessionID, path string) (*Conflict, error) {
	expected, ok, err := g.store.Get(ctx, sessionID, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load fingerprint: %w", err)
	}
	if !ok {
		return nil, nil
	}
	actual, exists, err := g.hasher.Hash(path)
	if err != nil {
		return nil, err
	}
	if !exists || actual == expected {
		return nil, nil
	}
	return &Conflict{Path: path, ExpectedHash: expected, ActualHash: actual}, nil
}

// Refresh records hash, the fingerprint of the content the session itself
// just handled, so the session does not conflict with its own write. An
// empty hash drops the fingerprint.
func (g *Guard) Refresh(ctx context.Context, sessionID, path, hash string) error {
	if hash == "" {
		return g.store.Delete(ctx, sessionID, path)
	}
	if err := g.store.Set(ctx, sessionID, path, hash); err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}
	g.logger.Debug("fingerprint refreshed", "session_id", sessionID, "path", path, "hash", hash)
	return nil
}

// Forget drops all fingerprints of a session
func (g *Guard) Forget(ctx context.Context, sessionID string) error {
	return g.store.Clear(ctx, sessionID)
}

// Snapshot returns the session's fingerprints
func (g *Guard) Snapshot(ctx context.Context, sessionID string) (map[string]string, error) {
	return g.store.Snapshot(ctx, sessionID)
}
