package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const (
	maxRecordSize  = 8 * 1024 * 1024
	readBufferSize = 64 * 1024
)

// ReadResult holds the records parsed from a ledger
type ReadResult struct {
	Records []TraceRecord `json:"records"`
	// Skipped counts malformed or truncated lines
	Skipped int `json:"skipped"`
}

// Read parses every line of r independently. Lines that are not well-formed
// records, including lines longer than maxRecordSize, are counted and
// skipped.
func Read(r io.Reader) (ReadResult, error) {
	result := ReadResult{Records: []TraceRecord{}}

	reader := bufio.NewReaderSize(r, readBufferSize)
	var line []byte
	oversized := false
	for {
		frag, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read ledger: %w", err)
		}
		if !oversized {
			if len(line)+len(frag) > maxRecordSize {
				oversized, line = true, line[:0]
			} else {
				line = append(line, frag...)
			}
		}
		if isPrefix {
			continue
		}
		if oversized {
			result.Skipped++
		} else {
			result.add(line)
		}
		line, oversized = line[:0], false
	}
	return result, nil
}

func (r *ReadResult) add(raw []byte) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 || bytes.Equal(line, []byte("[]")) {
		return
	}
	var rec TraceRecord
	if err := json.Unmarshal(line, &rec); err != nil || !rec.valid() {
		r.Skipped++
		return
	}
	r.Records = append(r.Records, rec)
}

// ReadFile reads the ledger at path. A missing file is an empty ledger.
func ReadFile(path string) (ReadResult, error) {
	// #nosec G304 -- ledger path comes from configuration
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ReadResult{Records: []TraceRecord{}}, nil
	}
	if err != nil {
		return ReadResult{}, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Filter returns the records of one session
func Filter(records []TraceRecord, sessionID string) []TraceRecord {
	out := make([]TraceRecord, 0, len(records))
	for _, r := range records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}
