// Package api exposes the assessment engine over HTTP for the
// surrounding platform: readability analysis, session scoring, difficulty
// stepping, live engagement sessions and text complexity adaptation.
// Sessions live in memory only; the engine is not a system of record.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/verblevel/verblevel/internal/adapt"
	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/config"
	"github.com/verblevel/verblevel/internal/store"
)

// Server wires the engine components behind the HTTP surface.
type Server struct {
	scorer   *assessment.Scorer
	adapter  *adapt.Orchestrator
	sessions *sessionRegistry
	cfg      config.Config
	stats    store.StatsRepo
	scores   store.EventRepo
	log      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEventStore records completed session scores and exposes aggregate
// stats endpoints backed by the event log.
func WithEventStore(events store.EventRepo, stats store.StatsRepo) Option {
	return func(s *Server) {
		s.scores = events
		s.stats = stats
	}
}

// NewServer creates the HTTP server around the given engine components.
// A nil logger falls back to slog.Default.
func NewServer(scorer *assessment.Scorer, adapter *adapt.Orchestrator, cfg config.Config, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		scorer:   scorer,
		adapter:  adapter,
		sessions: newSessionRegistry(),
		cfg:      cfg,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/score", s.handleScore)
		r.Post("/difficulty/next", s.handleDifficultyNext)
		r.Post("/adapt", s.handleAdapt)

		r.Route("/engagement", func(r chi.Router) {
			r.Post("/", s.handleEngagementStart)
			r.Post("/{sessionID}/turn", s.handleEngagementTurn)
			r.Get("/{sessionID}", s.handleEngagementStatus)
			r.Delete("/{sessionID}", s.handleEngagementEnd)
		})

		if s.stats != nil {
			r.Get("/stats", s.handleStats)
		}
	})

	return r
}

// requestLogger logs one line per request through the configured slog
// logger, in place of chi's stdlib-flavored middleware.Logger.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
