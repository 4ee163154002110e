package governance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AltairaLabs/intentgate/internal/concurrency"
	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/scope"
	"github.com/AltairaLabs/intentgate/internal/session"
)

var errNoIntentLoaded = errors.New("mutating call reached scope check without an active intent")

// StateGate denies intent-requiring actions until the session has completed
// the intent handshake
type StateGate struct {
	intents IntentSource
}

// NewStateGate creates the handshake gate
func NewStateGate(intents IntentSource) *StateGate {
	return &StateGate{intents: intents}
}

func (g *StateGate) Name() string    { return "state" }
func (g *StateGate) Priority() int   { return PriorityStateGate }
func (g *StateGate) Essential() bool { return true }

// Check implements Gate
func (g *StateGate) Check(_ context.Context, call *Call) (*Denial, error) {
	if !call.Request.RequiresIntent {
		return nil, nil
	}
	if call.Session == nil {
		return nil, fmt.Errorf("no session loaded for %s", call.SessionID)
	}

	name := call.ActionName()
	switch {
	case call.Session.State == session.StateBlocked:
		return newDenial(CodeSessionBlocked, name,
			fmt.Sprintf(config.MsgSessionBlocked, call.SessionID, name),
			map[string]any{"state": string(call.Session.State)}), nil
	case !call.Session.State.CanMutate():
		ids := g.intents.IDs()
		return newDenial(CodeNoActiveIntent, name,
			fmt.Sprintf(config.MsgNoActiveIntent, name, strings.Join(ids, ", ")),
			map[string]any{"state": string(call.Session.State), "validIds": ids}), nil
	}
	return nil, nil
}

// ProtectedGate denies mutations of the orchestration records. It runs
// ahead of the scope gate, so neither an empty scope nor the ignore list
// can open these paths.
type ProtectedGate struct {
	patterns []string
}

// NewProtectedGate creates a gate over workspace-relative glob patterns
func NewProtectedGate(patterns []string) *ProtectedGate {
	return &ProtectedGate{patterns: append([]string(nil), patterns...)}
}

func (g *ProtectedGate) Name() string    { return "protected" }
func (g *ProtectedGate) Priority() int   { return PriorityProtectedGate }
func (g *ProtectedGate) Essential() bool { return true }

// Check implements Gate
func (g *ProtectedGate) Check(_ context.Context, call *Call) (*Denial, error) {
	if !call.Mutates() || !scope.MatchAny(g.patterns, call.Target) {
		return nil, nil
	}
	return newDenial(CodeProtectedPath, call.ActionName(),
		fmt.Sprintf(config.MsgProtectedPath, call.Target, call.ActionName(), strings.Join(g.patterns, ", ")),
		map[string]any{
			"targetFile":     call.Target,
			"protectedPaths": g.patterns,
		}), nil
}

// ConcurrencyGate denies writes to files that changed since the session
// last observed them. It is observational: a fault lets the call through.
type ConcurrencyGate struct {
	guard *concurrency.Guard
}

// NewConcurrencyGate creates the optimistic concurrency gate
func NewConcurrencyGate(guard *concurrency.Guard) *ConcurrencyGate {
	return &ConcurrencyGate{guard: guard}
}

func (g *ConcurrencyGate) Name() string    { return "concurrency" }
func (g *ConcurrencyGate) Priority() int   { return PriorityConcurrencyGate }
func (g *ConcurrencyGate) Essential() bool { return false }

// Check implements Gate
func (g *ConcurrencyGate) Check(ctx context.Context, call *Call) (*Denial, error) {
	if !call.Mutates() {
		return nil, nil
	}
	conflict, err := g.guard.Check(ctx, call.SessionID, call.Target)
	if err != nil || conflict == nil {
		return nil, err
	}
	return newDenial(CodeStaleFile, call.ActionName(),
		fmt.Sprintf(config.MsgStaleFile, conflict.Path),
		map[string]any{
			"path":         conflict.Path,
			"expectedHash": conflict.ExpectedHash,
			"actualHash":   conflict.ActualHash,
		}), nil
}

// ScopeGate denies writes outside the active intent's owned scope
type ScopeGate struct {
	matcher *scope.Matcher
}

// NewScopeGate creates the scope gate
func NewScopeGate(matcher *scope.Matcher) *ScopeGate {
	return &ScopeGate{matcher: matcher}
}

func (g *ScopeGate) Name() string    { return "scope" }
func (g *ScopeGate) Priority() int   { return PriorityScopeGate }
func (g *ScopeGate) Essential() bool { return true }

// Check implements Gate
func (g *ScopeGate) Check(_ context.Context, call *Call) (*Denial, error) {
	if !call.Mutates() {
		return nil, nil
	}
	if call.Intent == nil {
		return nil, errNoIntentLoaded
	}
	v := g.matcher.Check(*call.Intent, call.Target)
	if v == nil {
		return nil, nil
	}
	return newDenial(CodeScopeViolation, call.ActionName(),
		fmt.Sprintf(config.MsgScopeViolation, v.IntentID, v.IntentName, v.Path, strings.Join(v.AllowedScope, ", ")),
		map[string]any{
			"intentId":     v.IntentID,
			"targetFile":   v.Path,
			"allowedScope": v.AllowedScope,
		}), nil
}
