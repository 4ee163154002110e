package intent

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ParseIgnoreList reads newline-delimited glob patterns. Blank lines and
// lines starting with # are skipped.
func ParseIgnoreList(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore list: %w", err)
	}
	return patterns, nil
}

// LoadIgnoreList reads the ignore list at path. A missing file yields an
// empty list.
func LoadIgnoreList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 - path comes from process configuration
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseIgnoreList(f)
}
