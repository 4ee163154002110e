package governance

import (
	"context"
	"sort"
)

// Gate is a pre-execution check. Check returns a denial to refuse the call,
// or an error when the gate itself could not decide. Essential gates that
// error or panic deny the call with GATE_FAULT; other gates fail open.
type Gate interface {
	Name() string
	Priority() int
	Essential() bool
	Check(ctx context.Context, call *Call) (*Denial, error)
}

// Recorder runs after an allowed call executes. Errors are logged and never
// propagated.
type Recorder interface {
	Name() string
	Priority() int
	Record(ctx context.Context, call *Call, outcome Outcome) error
}

// DenialRecorder runs after a call is denied
type DenialRecorder interface {
	Name() string
	RecordDenial(ctx context.Context, call *Call, denial *Denial) error
}

// Built-in priorities. Lower runs first.
const (
	PriorityStateGate       = 100
	PriorityProtectedGate   = 150
	PriorityConcurrencyGate = 200
	PriorityScopeGate       = 300

	PriorityFingerprintRecorder = 100
	PriorityLedgerRecorder      = 200
	PriorityIntentMapRecorder   = 300
)

type prioritized interface {
	Name() string
	Priority() int
}

// sortByPriority orders a chain by priority, then name, so registration
// order never affects evaluation
func sortByPriority[T prioritized](chain []T) {
	sort.SliceStable(chain, func(i, j int) bool {
		if chain[i].Priority() != chain[j].Priority() {
			return chain[i].Priority() < chain[j].Priority()
		}
		return chain[i].Name() < chain[j].Name()
	})
}
