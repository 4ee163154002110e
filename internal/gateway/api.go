package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AltairaLabs/intentgate/internal/intent"
	"github.com/AltairaLabs/intentgate/internal/ledger"
	"github.com/AltairaLabs/intentgate/internal/session"
)

// SessionReader looks up governed sessions
type SessionReader interface {
	Session(ctx context.Context, sessionID string) (*session.SessionState, error)
}

// IntentLister lists the declared intents
type IntentLister interface {
	All() []intent.Intent
	Source() string
}

// API is the read-only inspection API
type API struct {
	sessions   SessionReader
	intents    IntentLister
	ledgerPath string
	denialPath string
	logger     *slog.Logger
}

// NewAPI creates the inspection API. denialPath may be empty when denied
// attempts are not ledgered.
func NewAPI(sessions SessionReader, intents IntentLister, ledgerPath, denialPath string, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		sessions:   sessions,
		intents:    intents,
		ledgerPath: ledgerPath,
		denialPath: denialPath,
		logger:     logger,
	}
}

// Routes returns the router serving the API
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/v1", func(api chi.Router) {
		api.Get("/intents", a.listIntents)
		api.Get("/sessions/{session_id}", a.getSession)
		api.Get("/ledger", a.readLedger)
	})
	return r
}

func (a *API) listIntents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"source":  a.intents.Source(),
		"intents": a.intents.All(),
	})
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	st, err := a.sessions.Session(r.Context(), id)
	if err != nil {
		a.logger.Error("failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "SESSION_ERROR", err.Error())
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": st})
}

// readLedger returns the parsed ledger. ?session= filters by session and
// ?kind=denials selects the denied-attempt ledger.
func (a *API) readLedger(w http.ResponseWriter, r *http.Request) {
	path := a.ledgerPath
	if r.URL.Query().Get("kind") == "denials" {
		if a.denialPath == "" {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "denied attempts are not ledgered")
			return
		}
		path = a.denialPath
	}

	result, err := ledger.ReadFile(path)
	if err != nil {
		a.logger.Error("failed to read ledger", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "LEDGER_ERROR", err.Error())
		return
	}
	records := result.Records
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		records = ledger.Filter(records, sessionID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"skipped": result.Skipped,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"request_id": "req_" + uuid.NewString(),
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
