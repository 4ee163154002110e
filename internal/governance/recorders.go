package governance

import (
	"context"
	"time"

	"github.com/AltairaLabs/intentgate/internal/concurrency"
	"github.com/AltairaLabs/intentgate/internal/ledger"
	"github.com/AltairaLabs/intentgate/internal/orchestration"
)

// FingerprintRecorder stores the content hash of every target a session
// successfully reads or writes
type FingerprintRecorder struct {
	guard *concurrency.Guard
}

// NewFingerprintRecorder creates the fingerprint refresh recorder
func NewFingerprintRecorder(guard *concurrency.Guard) *FingerprintRecorder {
	return &FingerprintRecorder{guard: guard}
}

func (r *FingerprintRecorder) Name() string  { return "fingerprint" }
func (r *FingerprintRecorder) Priority() int { return PriorityFingerprintRecorder }

// Record implements Recorder
func (r *FingerprintRecorder) Record(ctx context.Context, call *Call, outcome Outcome) error {
	if !outcome.Success() || !call.Observes() {
		return nil
	}
	hash := outcome.TargetHash
	if !outcome.TargetExists {
		hash = ""
	}
	return r.guard.Refresh(ctx, call.SessionID, call.Target, hash)
}

// Attribution identifies who produced written content
type Attribution struct {
	EntityType      string
	ModelIdentifier string
}

// LedgerRecorder appends one trace record per executed action
type LedgerRecorder struct {
	ledger      ledger.Appender
	revisions   ledger.RevisionProvider
	attribution Attribution
	now         func() time.Time
}

// NewLedgerRecorder creates the audit ledger recorder
func NewLedgerRecorder(l ledger.Appender, revisions ledger.RevisionProvider, attribution Attribution) *LedgerRecorder {
	if revisions == nil {
		revisions = ledger.StaticRevision(ledger.UnknownRevision)
	}
	if attribution.EntityType == "" {
		attribution.EntityType = ledger.EntityAI
	}
	return &LedgerRecorder{ledger: l, revisions: revisions, attribution: attribution, now: time.Now}
}

func (r *LedgerRecorder) Name() string  { return "ledger" }
func (r *LedgerRecorder) Priority() int { return PriorityLedgerRecorder }

// Record implements Recorder
func (r *LedgerRecorder) Record(ctx context.Context, call *Call, outcome Outcome) error {
	rec := ledger.NewRecord(call.SessionID, call.ActionName(), r.now()).WithIntent(call.IntentID)
	rec.VCS.RevisionID = r.revisions.Revision(ctx)
	rec.DurationMS = outcome.Duration.Milliseconds()
	rec.Success = outcome.Success()
	if outcome.Err != nil {
		rec.Error = outcome.Err.Error()
	}
	if call.Mutates() {
		rec.Files = append(rec.Files, ledger.FileEntry{
			RelativePath: call.Target,
			ContentHash:  outcome.TargetHash,
			Contributor: ledger.Contributor{
				EntityType:      r.attribution.EntityType,
				ModelIdentifier: r.attribution.ModelIdentifier,
			},
			RelatedIntent: call.IntentID,
		})
	}
	return r.ledger.Append(ctx, rec)
}

// DenialLedgerRecorder appends a DENIED record for every refused attempt
type DenialLedgerRecorder struct {
	ledger    ledger.Appender
	revisions ledger.RevisionProvider
	now       func() time.Time
}

// NewDenialLedgerRecorder creates the denied-attempt recorder
func NewDenialLedgerRecorder(l ledger.Appender, revisions ledger.RevisionProvider) *DenialLedgerRecorder {
	if revisions == nil {
		revisions = ledger.StaticRevision(ledger.UnknownRevision)
	}
	return &DenialLedgerRecorder{ledger: l, revisions: revisions, now: time.Now}
}

func (r *DenialLedgerRecorder) Name() string { return "denial-ledger" }

// RecordDenial implements DenialRecorder
func (r *DenialLedgerRecorder) RecordDenial(ctx context.Context, call *Call, denial *Denial) error {
	rec := ledger.NewRecord(call.SessionID, call.ActionName(), r.now()).WithIntent(call.IntentID)
	rec.VCS.RevisionID = r.revisions.Revision(ctx)
	rec.Decision = ledger.DecisionDenied
	rec.DenialCode = string(denial.Code)
	rec.Error = denial.Message
	if !call.Started.IsZero() {
		rec.DurationMS = r.now().Sub(call.Started).Milliseconds()
	}
	if call.Target != "" {
		rec.Files = append(rec.Files, ledger.FileEntry{
			RelativePath:  call.Target,
			RelatedIntent: call.IntentID,
			Contributor:   ledger.Contributor{EntityType: ledger.EntityAI},
		})
	}
	return r.ledger.Append(ctx, rec)
}

// IntentMapRecorder keeps intent_map.md current with every successful write
type IntentMapRecorder struct {
	m   *orchestration.IntentMap
	now func() time.Time
}

// NewIntentMapRecorder creates the intent map recorder
func NewIntentMapRecorder(m *orchestration.IntentMap) *IntentMapRecorder {
	return &IntentMapRecorder{m: m, now: time.Now}
}

func (r *IntentMapRecorder) Name() string  { return "intent-map" }
func (r *IntentMapRecorder) Priority() int { return PriorityIntentMapRecorder }

// Record implements Recorder
func (r *IntentMapRecorder) Record(_ context.Context, call *Call, outcome Outcome) error {
	if !outcome.Success() || !call.Mutates() || call.Intent == nil {
		return nil
	}
	return r.m.Upsert(call.Intent.ID, call.Intent.Name, string(call.Intent.Status), orchestration.MapEntry{
		Path:     call.Target,
		Action:   call.ActionName(),
		Modified: r.now().UTC().Format(time.DateOnly),
		Hash:     outcome.TargetHash,
	})
}

// LessonRecorder notes stale-file recoveries in the shared lessons file
type LessonRecorder struct {
	book *orchestration.LessonBook
	now  func() time.Time
}

const staleFileLesson = "File was stale on write attempt. Re-read required."

// NewLessonRecorder creates the lessons recorder
func NewLessonRecorder(book *orchestration.LessonBook) *LessonRecorder {
	return &LessonRecorder{book: book, now: time.Now}
}

func (r *LessonRecorder) Name() string { return "lessons" }

// RecordDenial implements DenialRecorder
func (r *LessonRecorder) RecordDenial(_ context.Context, call *Call, denial *Denial) error {
	if denial.Code != CodeStaleFile {
		return nil
	}
	_, err := r.book.Append(call.Target, staleFileLesson, r.now())
	return err
}
