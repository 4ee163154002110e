package scope

import (
	"github.com/AltairaLabs/intentgate/internal/intent"
)

// Violation describes a target outside the active intent's scope
type Violation struct {
	IntentID     string   `json:"intentId"`
	IntentName   string   `json:"intentName"`
	Path         string   `json:"targetFile"`
	AllowedScope []string `json:"allowedScope"`
}

// Matcher authorizes paths against intents. Ignore-list entries bypass
// scope checking entirely.
type Matcher struct {
	ignore []string
}

// NewMatcher creates a matcher with the given ignore-list patterns
func NewMatcher(ignore []string) *Matcher {
	return &Matcher{ignore: append([]string(nil), ignore...)}
}

// IsIgnored reports whether rel is covered by the ignore list
func (m *Matcher) IsIgnored(rel string) bool {
	return MatchAny(m.ignore, rel)
}

// IsAuthorized reports whether the intent may act on rel. An intent with an
// empty owned scope is unscoped.
func (m *Matcher) IsAuthorized(in intent.Intent, rel string) bool {
	return m.Check(in, rel) == nil
}

// Check returns nil when rel is authorized, otherwise the violation
func (m *Matcher) Check(in intent.Intent, rel string) *Violation {
	if m.IsIgnored(rel) {
		return nil
	}
	if len(in.OwnedScope) == 0 {
		return nil
	}
	if MatchAny(in.OwnedScope, rel) {
		return nil
	}
	return &Violation{
		IntentID:     in.ID,
		IntentName:   in.Name,
		Path:         normalizeTarget(rel),
		AllowedScope: append([]string(nil), in.OwnedScope...),
	}
}
