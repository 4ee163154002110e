// Package ledger is the append-only audit trail of governed actions.
// Records are stored one JSON document per line.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/AltairaLabs/intentgate/internal/action"
)

// Decision is the governance outcome carried by a record
type Decision string

const (
	// DecisionAllowed marks an action that passed every gate and was executed
	DecisionAllowed Decision = "ALLOWED"
	// DecisionDenied marks an attempt rejected by a gate
	DecisionDenied Decision = "DENIED"
)

const (
	// EntityAI attributes content to the agent
	EntityAI = "AI"
	// EntityHuman attributes content to a person
	EntityHuman = "HUMAN"
)

// VCS is the version control state at the time of the record
type VCS struct {
	RevisionID string `json:"revision_id"`
}

// Contributor attributes file content
type Contributor struct {
	EntityType      string `json:"entity_type"`
	ModelIdentifier string `json:"model_identifier,omitempty"`
}

// FileEntry is one target touched by a governed action
type FileEntry struct {
	RelativePath  string      `json:"relative_path"`
	ContentHash   string      `json:"content_hash,omitempty"`
	Contributor   Contributor `json:"contributor"`
	RelatedIntent string      `json:"related_intent,omitempty"`
}

// TraceRecord is one immutable ledger line
type TraceRecord struct {
	ID            string               `json:"id"`
	Timestamp     time.Time            `json:"timestamp"`
	VCS           VCS                  `json:"vcs"`
	SessionID     string               `json:"session_id"`
	IntentID      *string              `json:"intent_id"`
	ActionName    string               `json:"action_name"`
	MutationClass action.MutationClass `json:"mutation_class"`
	DurationMS    int64                `json:"duration_ms"`
	Decision      Decision             `json:"decision"`
	DenialCode    string               `json:"denial_code,omitempty"`
	Success       bool                 `json:"success"`
	Error         string               `json:"error,omitempty"`
	Files         []FileEntry          `json:"files"`
}

// NewRecord returns a record with a fresh id, a UTC timestamp and the
// mutation class of actionName filled in
func NewRecord(sessionID, actionName string, now time.Time) TraceRecord {
	return TraceRecord{
		ID:            uuid.NewString(),
		Timestamp:     now.UTC(),
		SessionID:     sessionID,
		ActionName:    actionName,
		MutationClass: action.Classify(actionName),
		Decision:      DecisionAllowed,
		Files:         []FileEntry{},
	}
}

// WithIntent sets the intent id; an empty id is stored as null
func (r TraceRecord) WithIntent(intentID string) TraceRecord {
	if intentID == "" {
		r.IntentID = nil
		return r
	}
	id := intentID
	r.IntentID = &id
	return r
}

// Intent returns the intent id or ""
func (r TraceRecord) Intent() string {
	if r.IntentID == nil {
		return ""
	}
	return *r.IntentID
}

func (r TraceRecord) valid() bool {
	return r.ID != "" && r.ActionName != "" && !r.Timestamp.IsZero()
}
