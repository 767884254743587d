// Package api exposes the detection engine over HTTP using go-chi.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyward/deconflict/internal/cache"
	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/internal/detector"
	"github.com/skyward/deconflict/internal/storage"
	"github.com/skyward/deconflict/pkg/core"
)

// Run statuses reported by the detect endpoint.
const (
	StatusClear    = "clear"
	StatusConflict = "conflict detected"
)

// Handler exposes detection HTTP endpoints.
type Handler struct {
	det      *detector.Detector
	backend  storage.Backend
	log      *slog.Logger
	metrics  *Metrics
	runs     *cache.RunCache
	defaults config.DetectionConfig
}

// NewHandler returns a Handler using the given detector, storage backend,
// logger, and metrics. Backend and metrics may be nil to disable
// persistence and metric recording (e.g. in tests).
func NewHandler(det *detector.Detector, backend storage.Backend, log *slog.Logger, m *Metrics, defaults config.DetectionConfig) *Handler {
	return &Handler{
		det:      det,
		backend:  backend,
		log:      log,
		metrics:  m,
		runs:     cache.NewRunCache(cache.DefaultCapacity),
		defaults: defaults,
	}
}

// Router builds the chi router for the API.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	if h.metrics != nil {
		r.Use(RequestMiddleware(h.metrics))
		r.Get("/metrics", h.metrics.Handler().ServeHTTP)
	}
	r.Get("/healthz", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", h.Detect)
		r.Get("/runs", h.Runs)
		r.Get("/runs/{id}", h.RunByID)
	})
	return r
}

// DetectRequest is the body of POST /api/v1/detect. SafetyDistance falls
// back to the configured default when omitted.
type DetectRequest struct {
	SafetyDistance *float64       `json:"safetyDistance,omitempty"`
	Missions       []core.Mission `json:"missions"`
}

// DetectResponse reports the outcome of one detection run. RunID can be
// used to fetch the run again from GET /api/v1/runs/{id}.
type DetectResponse struct {
	RunID     uint64          `json:"runId"`
	Status    string          `json:"status"`
	Conflicts []core.Conflict `json:"conflicts"`
	Summary   core.RunSummary `json:"summary"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Detect handles POST /api/v1/detect: runs conflict detection over the
// submitted missions and returns the conflicts found.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid detect body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if len(req.Missions) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	safetyDistance := h.defaults.SafetyDistance
	if req.SafetyDistance != nil {
		if *req.SafetyDistance <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		safetyDistance = *req.SafetyDistance
	}

	if h.metrics != nil {
		h.metrics.RunStarted()
		defer h.metrics.RunFinished()
	}

	start := time.Now()
	summary := core.RunSummary{
		StartedAt:      start,
		SafetyDistance: safetyDistance,
		SampleSteps:    h.defaults.SampleSteps,
		MissionCount:   len(req.Missions),
		PairCount:      len(req.Missions) * (len(req.Missions) - 1) / 2,
	}

	if h.backend != nil {
		if err := h.backend.BeginRun(summary); err != nil {
			h.log.Error("begin run failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		for i := range req.Missions {
			if err := h.backend.AddMission(&req.Missions[i]); err != nil {
				h.log.Error("record mission failed", slog.String("error", err.Error()))
			}
		}
	}

	conflicts := h.det.Detect(req.Missions, safetyDistance)

	summary.Duration = time.Since(start)
	summary.ConflictCount = len(conflicts)

	if h.backend != nil {
		for _, c := range conflicts {
			if err := h.backend.RecordConflict(c); err != nil {
				h.log.Error("record conflict failed", slog.String("error", err.Error()))
			}
		}
		if err := h.backend.EndRun(summary); err != nil {
			h.log.Error("end run failed", slog.String("error", err.Error()))
		}
	}

	if h.metrics != nil {
		h.metrics.IncRuns()
		h.metrics.AddConflictsDetected(len(conflicts))
	}

	runID := h.runs.Add(summary, conflicts)

	status := StatusClear
	if len(conflicts) > 0 {
		status = StatusConflict
	}

	h.log.Info("detection run complete",
		slog.Uint64("runId", runID),
		slog.Int("missions", len(req.Missions)),
		slog.Int("conflicts", len(conflicts)),
		slog.Duration("duration", summary.Duration))

	resp := DetectResponse{
		RunID:     runID,
		Status:    status,
		Conflicts: conflicts,
		Summary:   summary,
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []core.Conflict{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
	}
}

// Runs handles GET /api/v1/runs: lists recent detection runs, newest
// first. The limit query parameter caps the result.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := h.runs.Recent(limit)
	if entries == nil {
		entries = []cache.RunEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.log.Error("encode runs failed", slog.String("error", err.Error()))
	}
}

// RunByID handles GET /api/v1/runs/{id}.
func (h *Handler) RunByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entry, ok := h.runs.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		h.log.Error("encode run failed", slog.String("error", err.Error()))
	}
}
