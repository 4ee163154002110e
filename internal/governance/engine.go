// Package governance mediates agent actions. Every action is evaluated by
// an ordered chain of gates before it runs and handed to an ordered chain of
// recorders after it runs.
package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AltairaLabs/intentgate/internal/action"
	"github.com/AltairaLabs/intentgate/internal/concurrency"
	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/intent"
	"github.com/AltairaLabs/intentgate/internal/scope"
	"github.com/AltairaLabs/intentgate/internal/session"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

// IntentSource is the read-only intent catalog
type IntentSource interface {
	Get(id string) (intent.Intent, bool)
	IDs() []string
	Source() string
}

// Workspace resolves and fingerprints targets
type Workspace interface {
	Relative(target string) (string, error)
	Hash(rel string) (string, bool, error)
}

// Executor performs an allowed call
type Executor func(ctx context.Context, call *Call) (any, error)

// Content is returned by executors that read or write a target's full
// content. Run hands Result to the caller and fingerprints Data, so the
// session's fingerprint is the content it actually handled.
type Content struct {
	Result any
	Data   []byte
}

// Deps are the collaborators every engine needs
type Deps struct {
	Machine   *session.Machine
	Intents   IntentSource
	Workspace Workspace
	Matcher   *scope.Matcher
	// Guard enables the concurrency gate and fingerprint recorder when set
	Guard *concurrency.Guard
	// Protected are glob patterns no governed action may mutate
	Protected []string
	Logger    *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithGate adds a gate to the pre-execution chain
func WithGate(g Gate) Option {
	return func(e *Engine) { e.gates = append(e.gates, g) }
}

// WithRecorder adds a recorder to the post-execution chain
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorders = append(e.recorders, r) }
}

// WithDenialRecorder adds a recorder for denied calls
func WithDenialRecorder(r DenialRecorder) Option {
	return func(e *Engine) { e.denialRecorders = append(e.denialRecorders, r) }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the governance orchestrator
type Engine struct {
	machine         *session.Machine
	intents         IntentSource
	workspace       Workspace
	guard           *concurrency.Guard
	gates           []Gate
	recorders       []Recorder
	denialRecorders []DenialRecorder
	audit           *AuditLogger
	logger          *slog.Logger
	now             func() time.Time
}

// New creates an engine with the built-in state, protected, concurrency and scope gates
// and the fingerprint recorder, plus whatever opts add
func New(deps Deps, opts ...Option) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	matcher := deps.Matcher
	if matcher == nil {
		matcher = scope.NewMatcher(nil)
	}

	e := &Engine{
		machine:   deps.Machine,
		intents:   deps.Intents,
		workspace: deps.Workspace,
		guard:     deps.Guard,
		audit:     NewAuditLogger(logger),
		logger:    logger,
		now:       time.Now,
	}
	e.gates = append(e.gates, NewStateGate(deps.Intents), NewScopeGate(matcher))
	if len(deps.Protected) > 0 {
		e.gates = append(e.gates, NewProtectedGate(deps.Protected))
	}
	if deps.Guard != nil {
		e.gates = append(e.gates, NewConcurrencyGate(deps.Guard))
		e.recorders = append(e.recorders, NewFingerprintRecorder(deps.Guard))
	}
	for _, opt := range opts {
		opt(e)
	}
	sortByPriority(e.gates)
	sortByPriority(e.recorders)
	return e
}

// Gates returns the gate names in evaluation order
func (e *Engine) Gates() []string {
	names := make([]string, len(e.gates))
	for i, g := range e.gates {
		names[i] = g.Name()
	}
	return names
}

// Recorders returns the recorder names in execution order
func (e *Engine) Recorders() []string {
	names := make([]string, len(e.recorders))
	for i, r := range e.recorders {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs the gate chain for an action. The first denial wins and no
// further gates run. Denials are handed to the denial recorders.
func (e *Engine) Evaluate(ctx context.Context, sessionID, actionName string, args map[string]any) Decision {
	call, denial := e.prepare(ctx, sessionID, actionName, args)
	if denial == nil {
		denial = e.runGates(ctx, call)
	}
	e.audit.LogDecision(ctx, call, denial)
	if denial != nil {
		e.recordDenial(ctx, call, denial)
	}
	return Decision{Call: call, Denial: denial}
}

// Record runs every recorder for an executed call. Recorder faults are
// logged and never returned.
func (e *Engine) Record(ctx context.Context, call *Call, outcome Outcome) {
	if outcome.Duration == 0 && !call.Started.IsZero() {
		outcome.Duration = e.now().Sub(call.Started)
	}
	if call.Observes() && outcome.TargetHash == "" {
		hash, exists, err := e.workspace.Hash(call.Target)
		if err != nil {
			e.audit.LogRecorderFault(ctx, call, "target-hash", err)
		}
		outcome.TargetHash, outcome.TargetExists = hash, exists
	}
	e.audit.LogOutcome(ctx, call, outcome)

	for _, r := range e.recorders {
		e.runRecorder(ctx, call, r, outcome)
	}
}

// Run evaluates the action, executes it when allowed and records the
// outcome. It returns *Denial when governance refused the action and
// *ActionError when the action ran and failed.
func (e *Engine) Run(ctx context.Context, sessionID, actionName string, args map[string]any, exec Executor) (any, error) {
	decision := e.Evaluate(ctx, sessionID, actionName, args)
	if !decision.Allowed() {
		return nil, decision.Denial
	}
	call := decision.Call

	start := e.now()
	result, err := exec(ctx, call)
	duration := e.now().Sub(start)

	outcome := Outcome{Err: err, Duration: duration}
	if c, ok := result.(Content); ok {
		result = c.Result
		if err == nil {
			outcome.TargetHash, outcome.TargetExists = workspace.HashBytes(c.Data), true
		}
	}
	outcome.Result = result

	// executors may refuse on policy grounds too (intent selection)
	var denial *Denial
	if errors.As(err, &denial) {
		if denial.ActionName == "" {
			denial.ActionName = actionName
		}
		e.audit.LogDecision(ctx, call, denial)
		e.recordDenial(ctx, call, denial)
		return nil, denial
	}

	if err == nil && call.Request.Family == action.FamilyIntent {
		call.IntentID = call.Request.IntentID
		if in, ok := e.intents.Get(call.IntentID); ok {
			call.Intent = &in
		}
	}

	e.Record(ctx, call, outcome)
	if err != nil {
		return nil, &ActionError{ActionName: actionName, Err: err}
	}
	return result, nil
}

// SelectIntent performs the intent handshake for a session
func (e *Engine) SelectIntent(ctx context.Context, sessionID, intentID string) (intent.Intent, error) {
	name := config.ToolSelectIntent
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return intent.Intent{}, newDenial(CodeMissingIntentID, name, config.MsgMissingIntentID, nil)
	}
	if _, err := e.machine.Ensure(ctx, sessionID); err != nil {
		return intent.Intent{}, err
	}

	_, err := e.machine.SelectIntent(ctx, sessionID, intentID)
	var unknown *session.UnknownIntentError
	switch {
	case errors.As(err, &unknown):
		return intent.Intent{}, newDenial(CodeInvalidIntentID, name,
			fmt.Sprintf(config.MsgInvalidIntentID, intentID, e.intents.Source(), strings.Join(unknown.Valid, ", ")),
			map[string]any{"intentId": intentID, "validIds": unknown.Valid})
	case errors.Is(err, session.ErrInvalidTransition):
		return intent.Intent{}, newDenial(CodeSessionBlocked, name,
			fmt.Sprintf(config.MsgSessionBlocked, sessionID, name),
			map[string]any{"state": string(session.StateBlocked)})
	case err != nil:
		return intent.Intent{}, err
	}

	in, _ := e.intents.Get(intentID)
	return in, nil
}

// StartSession begins a session in AWAITING_INTENT
func (e *Engine) StartSession(ctx context.Context, sessionID string) (*session.SessionState, error) {
	return e.machine.Start(ctx, sessionID)
}

// EndSession destroys a session and its fingerprints
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	if err := e.machine.End(ctx, sessionID); err != nil {
		return err
	}
	if e.guard != nil {
		return e.guard.Forget(ctx, sessionID)
	}
	return nil
}

// Session returns the state of a session
func (e *Engine) Session(ctx context.Context, sessionID string) (*session.SessionState, error) {
	return e.machine.Get(ctx, sessionID)
}

// CleanupStale ends sessions idle for longer than maxAge
func (e *Engine) CleanupStale(ctx context.Context, maxAge time.Duration) int {
	removed, err := e.machine.CleanupStale(ctx, maxAge)
	if err != nil {
		e.logger.Error("stale session cleanup failed", "error", err)
	}
	if e.guard != nil {
		for _, id := range removed {
			if err := e.guard.Forget(ctx, id); err != nil {
				e.logger.Error("failed to drop fingerprints", "session_id", id, "error", err)
			}
		}
	}
	return len(removed)
}

// prepare normalizes the request and loads the session snapshot. Failures
// here deny the call before any gate runs.
func (e *Engine) prepare(ctx context.Context, sessionID, actionName string, args map[string]any) (*Call, *Denial) {
	call := &Call{SessionID: sessionID, Started: e.now()}
	call.Request.Spec, _ = action.Lookup(actionName)

	req, err := action.Normalize(actionName, args)
	if err != nil {
		return call, newDenial(CodeInvalidRequest, actionName,
			fmt.Sprintf(config.MsgInvalidRequest, actionName, err), map[string]any{"error": err.Error()})
	}
	call.Request = req

	if req.HasTarget() {
		rel, err := e.workspace.Relative(req.Path)
		if err != nil {
			return call, newDenial(CodeInvalidRequest, actionName,
				fmt.Sprintf(config.MsgInvalidRequest, actionName, err),
				map[string]any{"path": req.Path, "error": err.Error()})
		}
		call.Target = rel
	}

	s, err := e.machine.Ensure(ctx, sessionID)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to load session", "session_id", sessionID, "error", err)
		return call, newDenial(CodeGateFault, actionName,
			fmt.Sprintf(config.MsgGateFault, "session", actionName), map[string]any{"gate": "session"})
	}
	if err := e.machine.Touch(ctx, sessionID); err != nil {
		e.logger.WarnContext(ctx, "failed to record session activity", "session_id", sessionID, "error", err)
	}
	call.Session = s
	call.IntentID = s.ActiveIntentID
	if s.ActiveIntentID != "" {
		if in, ok := e.intents.Get(s.ActiveIntentID); ok {
			call.Intent = &in
		}
	}
	return call, nil
}

func (e *Engine) runGates(ctx context.Context, call *Call) *Denial {
	for _, g := range e.gates {
		denial, fault := e.checkGate(ctx, call, g)
		if fault != nil {
			e.audit.LogGateFault(ctx, call, g, fault)
			if g.Essential() {
				return newDenial(CodeGateFault, call.ActionName(),
					fmt.Sprintf(config.MsgGateFault, g.Name(), call.ActionName()),
					map[string]any{"gate": g.Name(), "error": fmt.Sprint(fault)})
			}
			continue
		}
		if denial != nil {
			if denial.ActionName == "" {
				denial.ActionName = call.ActionName()
			}
			return denial
		}
	}
	return nil
}

// checkGate runs one gate, converting a panic into a fault
func (e *Engine) checkGate(ctx context.Context, call *Call, g Gate) (denial *Denial, fault any) {
	defer func() {
		if r := recover(); r != nil {
			denial, fault = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	denial, err := g.Check(ctx, call)
	if err != nil {
		return nil, err
	}
	return denial, nil
}

func (e *Engine) runRecorder(ctx context.Context, call *Call, r Recorder, outcome Outcome) {
	defer func() {
		if p := recover(); p != nil {
			e.audit.LogRecorderFault(ctx, call, r.Name(), fmt.Errorf("panic: %v", p))
		}
	}()
	if err := r.Record(ctx, call, outcome); err != nil {
		e.audit.LogRecorderFault(ctx, call, r.Name(), err)
	}
}

func (e *Engine) recordDenial(ctx context.Context, call *Call, denial *Denial) {
	for _, r := range e.denialRecorders {
		func() {
			defer func() {
				if p := recover(); p != nil {
					e.audit.LogRecorderFault(ctx, call, r.Name(), fmt.Errorf("panic: %v", p))
				}
			}()
			if err := r.RecordDenial(ctx, call, denial); err != nil {
				e.audit.LogRecorderFault(ctx, call, r.Name(), err)
			}
		}()
	}
}
