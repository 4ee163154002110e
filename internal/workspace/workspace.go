// Package workspace resolves agent-supplied paths against the governed
// workspace root and fingerprints their content.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	// HashPrefix tags content hashes with their algorithm
	HashPrefix = "sha256:"
)

var (
	// ErrPathOutsideWorkspace is returned for paths that resolve outside the root
	ErrPathOutsideWorkspace = errors.New("path resolves outside workspace")
	// ErrEmptyPath is returned for blank paths
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrNoMatch is returned when a search string is absent from a file
	ErrNoMatch = errors.New("search text not found")
)

// Workspace is a directory tree that governed actions operate on
type Workspace struct {
	root string
}

// New creates a workspace rooted at root
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root
func (w *Workspace) Root() string { return w.root }

// Relative converts an absolute or relative target into a cleaned,
// slash-separated path relative to the root
func (w *Workspace) Relative(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrEmptyPath
	}

	var rel string
	if filepath.IsAbs(target) {
		r, err := filepath.Rel(w.root, filepath.Clean(target))
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrPathOutsideWorkspace, target)
		}
		rel = r
	} else {
		rel = filepath.Clean(target)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideWorkspace, target)
	}
	return filepath.ToSlash(rel), nil
}

// Abs returns the absolute path of a workspace-relative path
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// HashBytes returns the content fingerprint of data
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return HashPrefix + hex.EncodeToString(sum[:])
}

// Hash fingerprints the file at rel. A missing file (or a directory) reports
// exists=false with no error.
func (w *Workspace) Hash(rel string) (string, bool, error) {
	// #nosec G304 - rel has been resolved against the workspace root
	data, err := os.ReadFile(w.Abs(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isDirErr(w.Abs(rel)) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to hash %s: %w", rel, err)
	}
	return HashBytes(data), true, nil
}

func isDirErr(abs string) bool {
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

// ReadFile returns the content of rel
func (w *Workspace) ReadFile(rel string) ([]byte, error) {
	// #nosec G304 - rel has been resolved against the workspace root
	data, err := os.ReadFile(w.Abs(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteFile replaces the content of rel, creating parent directories
func (w *Workspace) WriteFile(rel string, data []byte) error {
	full := w.Abs(rel)
	// #nosec G301 - workspace directories need to be accessible by user and group
	if err := os.MkdirAll(filepath.Dir(full), defaultDirPerm); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	// #nosec G306 - workspace files use 0644 like the tools that normally edit them
	if err := os.WriteFile(full, data, defaultFilePerm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReplaceInFile replaces the first occurrence of search with replacement, or
// every occurrence when all is set. It returns the number of replacements
// and the content written.
func (w *Workspace) ReplaceInFile(rel, search, replacement string, all bool) (int, []byte, error) {
	if search == "" {
		return 0, nil, fmt.Errorf("%w: empty search text", ErrNoMatch)
	}
	data, err := w.ReadFile(rel)
	if err != nil {
		return 0, nil, err
	}
	content := string(data)
	count := strings.Count(content, search)
	if count == 0 {
		return 0, nil, fmt.Errorf("%w in %s", ErrNoMatch, rel)
	}
	n := 1
	if all {
		n = -1
	} else {
		count = 1
	}
	updated := []byte(strings.Replace(content, search, replacement, n))
	if err := w.WriteFile(rel, updated); err != nil {
		return 0, nil, err
	}
	return count, updated, nil
}

// Entry is one item of a directory listing
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// List returns the entries of the directory rel, sorted by name
func (w *Workspace) List(rel string) ([]Entry, error) {
	entries, err := os.ReadDir(w.Abs(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		item := Entry{Name: e.Name(), IsDir: e.IsDir()}
		if info, err := e.Info(); err == nil && !e.IsDir() {
			item.Size = info.Size()
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
