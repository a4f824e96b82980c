package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/everai-labs/simulation-engine/internal/audit"
	"github.com/everai-labs/simulation-engine/internal/config"
	"github.com/everai-labs/simulation-engine/internal/simulation"
	"github.com/everai-labs/simulation-engine/internal/voices"
)

// PreviewLog exposes the recorded preview trail of a simulation
type PreviewLog interface {
	Recent(ctx context.Context, simulationID string, limit int64) ([]audit.PreviewEntry, error)
}

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	service  simulation.Service
	catalog  *voices.Catalog
	previews PreviewLog
}

// NewServer creates a new API server. previews may be nil when no audit
// trail is configured.
func NewServer(
	cfg config.ServerConfig,
	service simulation.Service,
	catalog *voices.Catalog,
	previews PreviewLog,
) *Server {
	s := &Server{
		config:   cfg,
		service:  service,
		catalog:  catalog,
		previews: previews,
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

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", s.handleListSimulations)
			r.Post("/", s.handleCreateSimulation)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSimulation)
				r.Put("/", s.handleUpdateSimulation)
				r.Post("/preview", s.handlePreviewSimulation)
				r.Get("/previews", s.handleListPreviews)
			})
		})

		r.Route("/voices", func(r chi.Router) {
			r.Get("/", s.handleListVoices)
			r.Get("/{id}", s.handleGetVoice)
		})
	})

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
