package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/pingwatch/internal/httpapi/middleware"
	"github.com/hamed0406/pingwatch/internal/repo"
	"github.com/hamed0406/pingwatch/internal/report"
)

// Server exposes the latest completed cycle read-only.
type Server struct {
	Logger *zap.Logger
	Store  repo.SnapshotStore
}

func NewServer(l *zap.Logger, store repo.SnapshotStore) *Server {
	return &Server{Logger: l, Store: store}
}

// Router mounts the API. apiKey empty disables auth; reqPerMin <= 0 disables
// rate limiting.
func (s *Server) Router(apiKey string, reqPerMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(reqPerMin, burst))
		r.Use(apimw.RequireKey(apiKey))
		r.Get("/status", s.handleStatus)
		r.Get("/status/{description}", s.handleTarget)
		r.Get("/report", s.handleReport)
	})

	return r
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("api_listen", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) (repo.Snapshot, bool) {
	snap, ok, err := s.Store.Latest(r.Context())
	if err != nil {
		s.Logger.Warn("snapshot_load_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "snapshot unavailable")
		return repo.Snapshot{}, false
	}
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return repo.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "description")
	for _, t := range snap.Targets {
		if t.Description == name {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown target")
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.Generate(snap.Targets)))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
