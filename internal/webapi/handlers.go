package webapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/lead"
	"github.com/leadmesh/leadgen/internal/sse"
)

// Version is set at build time or defaults to dev.
var Version = "0.2.0"

// maxSubmitBody bounds the intake request body.
const maxSubmitBody = 1 << 20

// heartbeatInterval keeps idle stream connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store  LeadStore
	logger *slog.Logger
}

// NewHandlers creates a new Handlers with the given store.
func NewHandlers(store LeadStore, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, logger: logger}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleSubmit validates an intake request, submits it to the gateway, and
// returns the task handle. Validation failures come back as 400 with one
// message per violation; gateway failures as 502 with the gateway's status
// text.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmitBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	if errs := lead.ValidateBytes(body); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid lead request",
			Code:    http.StatusBadRequest,
			Details: errs,
		})
		return
	}

	var req lead.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "parsing request body")
		return
	}

	taskID, err := h.store.Submit(r.Context(), req)
	if err != nil {
		h.logger.Error("lead submission failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitResponse{TaskID: taskID})
}

// HandleTask returns the full snapshot of one task's progress.
func (h *Handlers) HandleTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp := TaskResponse{
		TaskID:   task.TaskID(),
		State:    task.State().String(),
		Complete: task.Complete(),
		Error:    task.ErrorMessage(),
		Entries:  entryResponses(task.Snapshot()),
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleEvents re-streams a task's transcript to the browser over SSE. It
// first replays everything received so far, then forwards new entries and
// state changes as they arrive, until the task's stream shuts down or the
// browser disconnects.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sw, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Register the watcher before the replay so an entry arriving between
	// the two cannot be missed.
	updates := task.Updates()

	sent := 0
	push := func() error {
		entries := task.Snapshot()
		for ; sent < len(entries); sent++ {
			data, err := json.Marshal(entryResponse(entries[sent]))
			if err != nil {
				return err
			}
			if err := sw.Send("entry", data); err != nil {
				return err
			}
		}

		state, err := json.Marshal(StateResponse{
			State:    task.State().String(),
			Complete: task.Complete(),
			Error:    task.ErrorMessage(),
		})
		if err != nil {
			return err
		}
		return sw.Send("task_state", state)
	}

	if err := push(); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-updates:
			if err := push(); err != nil {
				return
			}
		case <-task.Done():
			push() //nolint:errcheck
			return
		case <-ticker.C:
			if err := sw.Heartbeat(); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// lookup resolves the {id} path value to a tracked task, writing a 404
// when it is unknown.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (Task, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "task id is required")
		return nil, false
	}
	task, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return task, true
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store LeadStore, logger *slog.Logger) {
	h := NewHandlers(store, logger)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/leads", h.HandleSubmit)
	mux.HandleFunc("GET /api/tasks/{id}", h.HandleTask)
	mux.HandleFunc("GET /api/tasks/{id}/events", h.HandleEvents)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func entryResponses(entries []gateway.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	return out
}

func entryResponse(e gateway.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Content:   e.Content,
		HTML:      renderMarkdown(e.Content),
		Timestamp: e.Timestamp,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
