package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Rajchodisetti/paper-trader/internal/engine"
)

// SnapshotProvider is the read-only boundary to the engine.
type SnapshotProvider interface {
	Snapshot() engine.Snapshot
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StaleAfter   time.Duration // age beyond which the view is flagged stale
}

// Server exposes the engine state over HTTP. It never mutates trading
// state; every response is rendered from a published snapshot.
type Server struct {
	cfg      Config
	provider SnapshotProvider
	httpSrv  *http.Server
}

func New(cfg Config, provider SnapshotProvider) *Server {
	s := &Server{cfg: cfg, provider: provider}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("reporting server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// view wraps a snapshot with reporting-only derived fields.
type view struct {
	engine.Snapshot
	AgeSeconds float64 `json:"age_seconds"`
	// ViewStale also accounts for the snapshot simply being old, on top of
	// the engine running on cached feed data.
	ViewStale bool `json:"view_stale"`
}

func (s *Server) currentView() view {
	snap := s.provider.Snapshot()
	age := time.Since(snap.UpdatedAt)
	return view{
		Snapshot:   snap,
		AgeSeconds: age.Seconds(),
		ViewStale:  snap.Stale || snap.UpdatedAt.IsZero() || age > s.cfg.StaleAfter,
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.currentView()); err != nil {
		log.Error().Err(err).Msg("encode snapshot")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	v := s.currentView()
	status := http.StatusOK
	if v.ViewStale {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"stale":       v.ViewStale,
		"age_seconds": v.AgeSeconds,
		"cycle":       v.Cycle,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, s.currentView()); err != nil {
		log.Error().Err(err).Msg("render dashboard")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
