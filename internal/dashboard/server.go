// Package dashboard serves a read-only JSON view of progression state, plus
// reaction posting and Prometheus metrics.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"vaultfire/internal/engine"
	"vaultfire/internal/logging"
	"vaultfire/internal/metrics"
)

type Config struct {
	Addr  string
	RPS   float64
	Burst int
}

type Server struct {
	cfg     Config
	svc     *engine.Service
	metrics *metrics.Recorder
	log     *slog.Logger
	router  *chi.Mux
	limiter *limiterPool
}

func New(cfg Config, svc *engine.Service, rec *metrics.Recorder, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		metrics: rec,
		log:     log,
		router:  chi.NewRouter(),
		limiter: newLimiterPool(cfg.RPS, cfg.Burst),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(requestLogger(s.log))

	s.router.Get("/data", s.handleData)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/users/{id}", s.handleUser)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/rituals", s.handleRituals)
		r.With(s.limiter.middleware).Post("/reactions", s.handleReaction)
	})
	s.router.Handle("/metrics", s.metrics.Handler())
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("dashboard_starting", "addr", s.cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dashboard shutdown: %w", err)
		}
		s.log.Info("dashboard_stopped")
	}
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Debug("request_completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
