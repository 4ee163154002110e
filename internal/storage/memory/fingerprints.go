package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/AltairaLabs/intentgate/internal/concurrency"
)

var _ concurrency.FingerprintStore = (*FingerprintStore)(nil)

var errPathEmpty = errors.New("path cannot be empty")

// FingerprintStore implements concurrency.FingerprintStore with one map per session
type FingerprintStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string // sessionID -> path -> hash
}

// NewFingerprintStore creates a new in-memory fingerprint store
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{
		sessions: make(map[string]map[string]string),
	}
}

// Get returns the recorded hash of path for the session
func (f *FingerprintStore) Get(ctx context.Context, sessionID, path string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	hash, ok := f.sessions[sessionID][path]
	return hash, ok, nil
}

// Set records the hash of path for the session
func (f *FingerprintStore) Set(ctx context.Context, sessionID, path, hash string) error {
	if sessionID == "" {
		return errSessionIDEmpty
	}
	if path == "" {
		return errPathEmpty
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	table, ok := f.sessions[sessionID]
	if !ok {
		table = make(map[string]string)
		f.sessions[sessionID] = table
	}
	table[path] = hash
	return nil
}

// Delete removes the fingerprint of path (idempotent)
func (f *FingerprintStore) Delete(ctx context.Context, sessionID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if table, ok := f.sessions[sessionID]; ok {
		delete(table, path)
		if len(table) == 0 {
			delete(f.sessions, sessionID)
		}
	}
	return nil
}

// Clear drops every fingerprint of the session
func (f *FingerprintStore) Clear(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

// Snapshot returns a copy of the session's fingerprints
func (f *FingerprintStore) Snapshot(ctx context.Context, sessionID string) (map[string]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	table := f.sessions[sessionID]
	result := make(map[string]string, len(table))
	for k, v := range table {
		result[k] = v
	}
	return result, nil
}
