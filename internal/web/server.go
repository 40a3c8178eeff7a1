// Package web serves the generated site in serve mode and exposes a small
// API for health checks and manual rebuilds.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	appLog "dyncal/internal/log"
	"dyncal/internal/model"
)

// RebuildFunc runs one full pipeline pass and returns its result.
type RebuildFunc func(ctx context.Context) (*model.BuildResult, error)

// Server serves the output directory plus /health and POST /api/rebuild.
type Server struct {
	outDir  string
	rebuild RebuildFunc
	limiter *rate.Limiter
	mux     *http.ServeMux
}

// NewServer constructs a Server rooted at outDir. Manual rebuild requests
// are limited to one per 10 seconds; the token bucket starts full so the
// first trigger always passes.
func NewServer(outDir string, rebuild RebuildFunc) *Server {
	s := &Server{
		outDir:  outDir,
		rebuild: rebuild,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/rebuild", s.handleRebuild)
	s.mux.Handle("/", http.FileServer(http.Dir(s.outDir)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "rebuild already triggered recently",
		})
		return
	}

	res, err := s.rebuild(r.Context())
	if err != nil {
		appLog.Error("rebuild via API failed", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "rebuilt",
		"feeds":        len(res.Feeds),
		"events":       res.Stats.Events,
		"rows_total":   res.Stats.RowsTotal,
		"rows_skipped": res.Stats.RowsSkipped,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		appLog.Error("write JSON response failed", err)
	}
}

// Serve runs an HTTP server on listen until ctx is canceled, then shuts it
// down gracefully.
func Serve(ctx context.Context, listen string, s *Server) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
