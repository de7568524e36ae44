// Package diagnostics serves a read-only HTTP view of a running inference
// engine.
package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/lox/hiddenrank/internal/inference"
	"github.com/lox/hiddenrank/poker"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Engine is the part of the inference engine the server reads.
type Engine interface {
	Report() inference.Report
	Snapshot() []string
	CurrentOrdering() poker.Ordering
	Uncertainty() uint64
	Probability(a, b poker.Rank) float64
}

// Server exposes an Engine over HTTP.
type Server struct {
	engine Engine
	logger *log.Logger
	router chi.Router
}

// NewServer builds the routes for engine.
func NewServer(engine Engine, logger *log.Logger) *Server {
	s := &Server{
		engine: engine,
		logger: logger.WithPrefix("diagnostics"),
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/diagnostics", s.handleDiagnostics)
	r.Get("/relations", s.handleRelations)
	r.Get("/ordering", s.handleOrdering)
	r.Get("/uncertainty", s.handleUncertainty)
	r.Get("/probability/{a}/{b}", s.handleProbability)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Diagnostics listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Debug("Diagnostics stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Report())
}

func (s *Server) handleRelations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, strings.Join(s.engine.Snapshot(), "\n"))
}

func (s *Server) handleOrdering(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, s.engine.CurrentOrdering().String())
}

func (s *Server) handleUncertainty(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]uint64{"possibilities": s.engine.Uncertainty()})
}

func (s *Server) handleProbability(w http.ResponseWriter, r *http.Request) {
	a, errA := parseRankParam(chi.URLParam(r, "a"))
	b, errB := parseRankParam(chi.URLParam(r, "b"))
	if err := errors.Join(errA, errB); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]any{
		"weaker":      a.String(),
		"stronger":    b.String(),
		"probability": s.engine.Probability(a, b),
	})
}

func parseRankParam(s string) (poker.Rank, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid rank %q", s)
	}
	return poker.ParseRank(s[0])
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
