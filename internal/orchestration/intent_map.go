// Package orchestration maintains the human-readable artifacts kept next
// to the ledger: the intent map and the lessons file.
package orchestration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tableHeader    = "| File | Last Action | Last Modified | Content Hash |"
	tableSeparator = "|------|-------------|---------------|--------------|"
	sectionPrefix  = "## "
	mapTitle       = "# Intent Map"
)

// MapEntry is one row of an intent's file table
type MapEntry struct {
	Path     string
	Action   string
	Modified string
	Hash     string
}

func (e MapEntry) row() string {
	return fmt.Sprintf("| %s | %s | %s | %s |", e.Path, e.Action, e.Modified, e.Hash)
}

// IntentMap maintains intent_map.md: one section per intent listing the
// files it has modified
type IntentMap struct {
	mu   sync.Mutex
	path string
}

// NewIntentMap creates an intent map backed by path
func NewIntentMap(path string) *IntentMap {
	return &IntentMap{path: path}
}

// Path returns the backing file
func (m *IntentMap) Path() string { return m.path }

// Upsert records entry under the intent's section, replacing any existing
// row for the same path
func (m *IntentMap) Upsert(intentID, intentName, status string, entry MapEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// #nosec G304 -- intent map path comes from configuration
	content, err := os.ReadFile(m.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read intent map: %w", err)
	}

	lines := splitLines(string(content))
	if len(lines) == 0 {
		lines = []string{mapTitle, ""}
	}

	start, end := findSection(lines, intentID)
	if start < 0 {
		if last := len(lines) - 1; last >= 0 && lines[last] != "" {
			lines = append(lines, "")
		}
		lines = append(lines,
			fmt.Sprintf("%s%s: %s", sectionPrefix, intentID, intentName),
			"",
			fmt.Sprintf("**Status:** %s", status),
			"",
			tableHeader,
			tableSeparator,
			entry.row(),
		)
		return m.write(lines)
	}

	lastRow := -1
	for i := start + 1; i < end; i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "|") {
			continue
		}
		lastRow = i
		if line == tableHeader || strings.HasPrefix(line, "|--") {
			continue
		}
		if rowPath(line) == entry.Path {
			lines[i] = entry.row()
			return m.write(lines)
		}
	}

	if lastRow < 0 {
		insert := []string{tableHeader, tableSeparator, entry.row()}
		lines = insertAt(lines, end, insert...)
	} else {
		lines = insertAt(lines, lastRow+1, entry.row())
	}
	return m.write(lines)
}

// Entries returns the rows recorded for an intent
func (m *IntentMap) Entries(intentID string) ([]MapEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// #nosec G304 -- intent map path comes from configuration
	content, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read intent map: %w", err)
	}

	lines := splitLines(string(content))
	start, end := findSection(lines, intentID)
	if start < 0 {
		return nil, nil
	}
	var entries []MapEntry
	for _, line := range lines[start+1 : end] {
		if !strings.HasPrefix(line, "|") || line == tableHeader || strings.HasPrefix(line, "|--") {
			continue
		}
		cells := rowCells(line)
		if len(cells) != 4 {
			continue
		}
		entries = append(entries, MapEntry{Path: cells[0], Action: cells[1], Modified: cells[2], Hash: cells[3]})
	}
	return entries, nil
}

func (m *IntentMap) write(lines []string) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create orchestration directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".intent_map-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp intent map: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write intent map: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close intent map: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace intent map: %w", err)
	}
	return nil
}

func splitLines(content string) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// findSection returns the header index of the intent's section and the
// index one past its last line, or -1 when absent
func findSection(lines []string, intentID string) (int, int) {
	start := -1
	for i, line := range lines {
		if !strings.HasPrefix(line, sectionPrefix) {
			continue
		}
		if start >= 0 {
			return start, i
		}
		heading := strings.TrimPrefix(line, sectionPrefix)
		if heading == intentID || strings.HasPrefix(heading, intentID+":") {
			start = i
		}
	}
	if start < 0 {
		return -1, -1
	}
	return start, len(lines)
}

func rowCells(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func rowPath(line string) string {
	cells := rowCells(line)
	if len(cells) == 0 {
		return ""
	}
	return cells[0]
}

func insertAt(lines []string, idx int, items ...string) []string {
	out := make([]string, 0, len(lines)+len(items))
	out = append(out, lines[:idx]...)
	out = append(out, items...)
	return append(out, lines[idx:]...)
}
