// Package server provides HTTP server management and lifecycle handling for the interactions API.
// It wires the chi router, the middleware chain and the routes onto an HTTPHandler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const profilingAddr = "localhost:6060"

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	config  *config.Config
	limiter *RateLimiter
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           cfg.Address + ":" + cfg.Port,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:  router,
		handler: handler,
		config:  cfg,
		limiter: NewRateLimiter(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Handler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	s.router.Route("/drugs", func(r chi.Router) {
		r.Get("/", h.FindDrugs)
		r.Get("/categories", h.ListCategories)
	})

	s.router.Route("/interactions", func(r chi.Router) {
		r.Get("/", h.ListInteractions)
		r.Get("/pair", h.FindInteraction)
		r.Post("/check", h.CheckPrescription)
	})

	s.router.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/drugs", h.AddDrug)
			r.Delete("/drugs", h.ClearPrescription)
			r.Delete("/drugs/{name}", h.RemoveDrug)
			r.Put("/patient", h.SetSessionPatient)
			r.Post("/notes", h.AddNote)
			r.Get("/history", h.SessionHistory)
		})
	})

	s.router.Get("/patients", h.ListPatients)
	s.router.Get("/patients/{id}", h.GetPatient)
	s.router.Get("/patients/{id}/consultations", h.PatientConsultations)
	s.router.Get("/consultations", h.ListConsultations)
	s.router.Get("/stats", h.DashboardStats)
	s.router.Post("/diagnostics", h.SuggestDiagnostics)
	s.router.Get("/roles/{role}/views", h.RoleViews)

	s.router.Get("/health", h.HealthCheck)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	defer s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer serves pprof on localhost in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started", "url", "http://"+profilingAddr+"/debug/pprof/")
		mux := chi.NewRouter()
		mux.Mount("/debug", middleware.Profiler())
		err := http.ListenAndServe(profilingAddr, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
