// Package api provides the loomsched HTTP API: read access to persisted
// run results, an endpoint that runs the engine on a posted order batch
// and persists the result, and a Prometheus metrics endpoint.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/pipeline"
)

// createRunRequest is the POST /api/runs body: a batch of raw orders plus
// an optional config override applied on top of domain.DefaultRunConfig().
type createRunRequest struct {
	Orders []domain.RawOrder `json:"orders"`
	Config *domain.RunConfig `json:"config,omitempty"`
}

// Server is the loomsched HTTP API server.
type Server struct {
	store          domain.RunStore
	metricsEnabled bool
}

// NewServer creates an API server backed by store.
func NewServer(store domain.RunStore) *Server {
	return &Server{store: store}
}

// EnableMetrics turns on the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/latest", s.handleLatestRun)
		r.Get("/{runID}", s.handleGetRun)
		r.Post("/", s.handleCreateRun)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LatestRun()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, domain.ErrUnknownRun)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, err := s.store.GetRun(runID)
	if errors.Is(err, domain.ErrUnknownRun) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleCreateRun runs the engine synchronously against a posted order
// batch, persists the result, and returns it. Intended for small ad-hoc
// batches; the CLI's `run` command is the path for bulk file ingest.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	// Decoding into a defaults-filled config leaves fields absent from the
	// posted override at their default values.
	defaults := domain.DefaultRunConfig()
	req := createRunRequest{Config: &defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg := domain.DefaultRunConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	result, err := pipeline.RunFromOrders(req.Orders, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SaveRun(result); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// corsMiddleware adds permissive CORS headers for local tooling.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
