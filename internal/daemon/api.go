// Package daemon implements the beacon daemon: it owns the application
// catalog, the usage store, and the query engine, and serves them to
// launcher frontends over the IPC transport.
package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/runger/beacon/internal/result"
)

// SearchRequest is the request for the /search endpoint.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchResponse is the response for the /search endpoint.
type SearchResponse struct {
	Results []result.Result `json:"results"`
	Total   int             `json:"total"`
}

// ActivateRequest is the request for the /activate endpoint.
type ActivateRequest struct {
	Result result.Result `json:"result"`
}

// ActivateResponse is the response for the /activate endpoint.
type ActivateResponse struct {
	Recorded bool `json:"recorded"`
}

// RefreshResponse is the response for the /refresh endpoint.
type RefreshResponse struct {
	Entries    int   `json:"entries"`
	DurationMs int64 `json:"duration_ms"`
}

// StatusResponse is the response for the /status endpoint.
type StatusResponse struct {
	Version       string `json:"version"`
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CatalogSize   int    `json:"catalog_size"`
	SocketPath    string `json:"socket_path"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Searcher answers queries with a ranked result list.
type Searcher interface {
	Search(query string) []result.Result
}

// Recorder persists an activation for usage ranking.
type Recorder interface {
	Record(ctx context.Context, name string) error
}

// Activator performs the side effect for an activated result.
type Activator interface {
	Activate(ctx context.Context, res result.Result) error
}

// Handler provides HTTP handlers for the daemon API.
type Handler struct {
	searcher   Searcher
	recorder   Recorder
	activator  Activator
	refreshFn  func(ctx context.Context) (int, error)
	status     func() StatusResponse
	logger     *slog.Logger
	onActivity func()
}

// HandlerDependencies contains the handler's collaborators.
type HandlerDependencies struct {
	Searcher  Searcher
	Recorder  Recorder
	Activator Activator

	// RefreshFn rescans the catalog and returns the new entry count.
	RefreshFn func(ctx context.Context) (int, error)

	// Status reports daemon state for the /status endpoint.
	Status func() StatusResponse

	Logger *slog.Logger

	// OnActivity is invoked on every request, for idle tracking.
	OnActivity func()
}

// NewHandler creates a new API handler.
func NewHandler(deps HandlerDependencies) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.OnActivity == nil {
		deps.OnActivity = func() {}
	}
	if deps.Status == nil {
		deps.Status = func() StatusResponse {
			return StatusResponse{PID: os.Getpid()}
		}
	}
	return &Handler{
		searcher:   deps.Searcher,
		recorder:   deps.Recorder,
		activator:  deps.Activator,
		refreshFn:  deps.RefreshFn,
		status:     deps.Status,
		logger:     deps.Logger,
		onActivity: deps.OnActivity,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /search", h.HandleSearch)
	mux.HandleFunc("POST /activate", h.HandleActivate)
	mux.HandleFunc("POST /refresh", h.HandleRefresh)
	mux.HandleFunc("GET /status", h.HandleStatus)
}

// HandleSearch handles the /search endpoint.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	h.onActivity()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON request body")
		return
	}

	if h.searcher == nil {
		h.writeError(w, http.StatusServiceUnavailable, "engine_unavailable", "Search engine is not initialized")
		return
	}

	results := h.searcher.Search(req.Query)
	if req.Limit > 0 && req.Limit < len(results) {
		results = results[:req.Limit]
	}
	if results == nil {
		results = []result.Result{}
	}

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Results: results,
		Total:   len(results),
	})
}

// HandleActivate handles the /activate endpoint. Catalog results (apps
// and files) are recorded in the usage store after a successful launch so
// repeated picks rank higher next time; a failed launch leaves the count
// untouched.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.onActivity()

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON request body")
		return
	}

	if req.Result.Name == "" && req.Result.Target == "" {
		h.writeError(w, http.StatusBadRequest, "missing_result", "result is required")
		return
	}

	ctx := r.Context()

	if h.activator != nil {
		if err := h.activator.Activate(ctx, req.Result); err != nil {
			h.logger.Error("activation failed", "name", req.Result.Name, "error", err)
			h.writeError(w, http.StatusInternalServerError, "activate_failed", err.Error())
			return
		}
	}

	recorded := false
	if h.recorder != nil && (req.Result.Kind == result.KindApp || req.Result.Kind == result.KindFile) {
		if err := h.recorder.Record(ctx, req.Result.Name); err != nil {
			// Usage tracking failure does not fail an already-done launch.
			h.logger.Warn("failed to record activation", "name", req.Result.Name, "error", err)
		} else {
			recorded = true
		}
	}

	h.writeJSON(w, http.StatusOK, ActivateResponse{Recorded: recorded})
}

// HandleRefresh handles the /refresh endpoint.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.onActivity()

	if h.refreshFn == nil {
		h.writeError(w, http.StatusServiceUnavailable, "refresh_unavailable", "Catalog refresh is not available")
		return
	}

	start := time.Now()
	entries, err := h.refreshFn(r.Context())
	if err != nil {
		h.logger.Error("catalog refresh failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "refresh_failed", "Failed to rescan catalog")
		return
	}

	h.writeJSON(w, http.StatusOK, RefreshResponse{
		Entries:    entries,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

// HandleStatus handles the /status endpoint.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.onActivity()
	h.writeJSON(w, http.StatusOK, h.status())
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, errorCode, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
