package orchestration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// LessonBook appends lessons learned to a shared notes file. The file is
// opt-in: if it does not exist nothing is written.
type LessonBook struct {
	mu   sync.Mutex
	path string
}

// NewLessonBook creates a lesson book backed by path
func NewLessonBook(path string) *LessonBook {
	return &LessonBook{path: path}
}

// Append adds a dated lesson about file. It reports whether the lesson was written.
func (b *LessonBook) Append(file, lesson string, at time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// #nosec G304 -- lessons path comes from configuration
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open lessons file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entry := fmt.Sprintf("\n### Lesson (%s)\n- **File**: %s\n- **Lesson**: %s\n",
		at.UTC().Format(time.RFC3339), file, lesson)
	if _, err := f.WriteString(entry); err != nil {
		return false, fmt.Errorf("append lesson: %w", err)
	}
	return true, nil
}
