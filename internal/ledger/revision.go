package ledger

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// UnknownRevision is reported when the VCS state cannot be determined
const UnknownRevision = "unknown"

// RevisionProvider reports the current VCS revision of the workspace
type RevisionProvider interface {
	Revision(ctx context.Context) string
}

// StaticRevision always reports the same revision
type StaticRevision string

// Revision implements RevisionProvider
func (s StaticRevision) Revision(context.Context) string { return string(s) }

// GitRevision runs `git rev-parse --short HEAD` in Dir
type GitRevision struct {
	Dir     string
	Timeout time.Duration
}

// Revision implements RevisionProvider
func (g GitRevision) Revision(ctx context.Context) string {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		return UnknownRevision
	}
	rev := strings.TrimSpace(string(out))
	if rev == "" {
		return UnknownRevision
	}
	return rev
}
