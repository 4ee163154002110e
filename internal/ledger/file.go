package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	ledgerDirPerm  = 0o750
	ledgerFilePerm = 0o600
)

// ErrClosed is returned when appending to a closed ledger
var ErrClosed = errors.New("ledger is closed")

// Appender accepts trace records
type Appender interface {
	Append(ctx context.Context, rec TraceRecord) error
}

// FileLedger appends records to a JSONL file. Each record is written with a
// single Write call so concurrent appends never interleave.
type FileLedger struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open opens (creating if needed) the ledger at path. A legacy placeholder
// file holding only "[]" or whitespace is truncated once so that the file
// is valid JSONL. A trailing partial line left by a crash is terminated so
// the next record starts on its own line.
func Open(path string) (*FileLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), ledgerDirPerm); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	partial, err := migrateLegacy(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- ledger path comes from configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, ledgerFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if partial {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("terminate partial ledger line: %w", err)
		}
	}
	return &FileLedger{path: path, file: f}, nil
}

// migrateLegacy truncates a placeholder ledger and reports whether the
// remaining content ends without a newline
func migrateLegacy(path string) (bool, error) {
	// #nosec G304 -- ledger path comes from configuration
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read ledger: %w", err)
	}
	if len(content) == 0 {
		return false, nil
	}
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("[]")) {
		return content[len(content)-1] != '\n', nil
	}
	if err := os.Truncate(path, 0); err != nil {
		return false, fmt.Errorf("migrate legacy ledger: %w", err)
	}
	return false, nil
}

// Path returns the ledger file path
func (l *FileLedger) Path() string { return l.path }

// Append writes rec as one line
func (l *FileLedger) Append(_ context.Context, rec TraceRecord) error {
	if !rec.valid() {
		return fmt.Errorf("invalid trace record: id, action_name and timestamp are required")
	}
	if rec.Files == nil {
		rec.Files = []FileEntry{}
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal trace record: %w", err)
	}
	encoded = append(encoded, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if _, err := l.file.Write(encoded); err != nil {
		return fmt.Errorf("append trace record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (l *FileLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}
