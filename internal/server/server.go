// Package server provides the HTTP server and routing for bandarscope.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/config"
	screenerhandlers "github.com/nugraha/bandarscope/internal/modules/screener/handlers"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	Screener *screenerhandlers.Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config
}

// New creates the server and mounts all routes.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Config,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	system := NewSystemHandlers(s.log)
	s.router.Route("/api", func(r chi.Router) {
		cfg.Screener.RegisterRoutes(r)
		r.Get("/health", system.HandleHealth)
		r.Get("/system/stats", system.HandleStats)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
