package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/coding-tracker/internal/config"
	"github.com/terra-clan/coding-tracker/internal/health"
	"github.com/terra-clan/coding-tracker/internal/tracker"
	"github.com/terra-clan/coding-tracker/internal/view"
)

// Server represents the HTTP server for the API and the view pages
type Server struct {
	config  config.ServerConfig
	router  *chi.Mux
	service tracker.Service
	health  *health.Registry
	view    *view.Handler
}

// NewServer creates a new server. viewHandler may be nil to serve the API only.
func NewServer(
	cfg config.ServerConfig,
	service tracker.Service,
	registry *health.Registry,
	viewHandler *view.Handler,
) *Server {
	s := &Server{
		config:  cfg,
		service: service,
		health:  registry,
		view:    viewHandler,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))

		r.Route("/problems", func(r chi.Router) {
			r.Get("/", s.handleListProblems)
			r.Get("/{id}", s.handleGetProblem)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", s.handleListSubmissions)
			r.Get("/{id}", s.handleGetSubmission)
		})

		r.With(requireJSON, limitBody(maxRequestBytes)).Post("/submit", s.handleSubmit)
		r.With(requireJSON, limitBody(maxRequestBytes)).Post("/feedback", s.handleFeedback)
		r.Get("/feedback/{submissionID}", s.handleGetFeedback)
	})

	if s.view != nil {
		s.view.Mount(r)
	}

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
