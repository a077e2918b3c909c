package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
)

// SearchUseCase answers search queries
type SearchUseCase interface {
	Search(ctx context.Context, query string) ([]*model.Insight, error)
}

// IngestUseCase runs one ingestion cycle
type IngestUseCase interface {
	Run(ctx context.Context) (*model.IngestionResult, error)
}

type Server struct {
	router         *chi.Mux
	search         SearchUseCase
	ingest         IngestUseCase
	metricsHandler http.Handler
	ingestTimeout  time.Duration
}

type Options func(*Server)

// WithIngest exposes POST /api/ingest
func WithIngest(uc IngestUseCase) Options {
	return func(s *Server) {
		s.ingest = uc
	}
}

// WithMetricsHandler exposes GET /metrics
func WithMetricsHandler(h http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithIngestTimeout bounds an ingestion triggered over HTTP
func WithIngestTimeout(d time.Duration) Options {
	return func(s *Server) {
		s.ingestTimeout = d
	}
}

func New(search SearchUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		search:        search,
		ingestTimeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler(s.search))
		if s.ingest != nil {
			r.Post("/ingest", ingestHandler(s.ingest, s.ingestTimeout))
		}
	})

	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request ID to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
