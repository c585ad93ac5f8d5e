// Package web serves the face index over HTTP: per-file indices, on-demand
// indexing of uploaded images, similar-face search and stats.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/web/handlers"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, store handlers.FaceStore, pipeline handlers.Pipeline, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config: cfg,
		router: r,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))

	s.setupRoutes(store, pipeline)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Long timeout for image uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(store handlers.FaceStore, pipeline handlers.Pipeline) {
	facesHandler := handlers.NewFacesHandler(s.config, store, pipeline)
	statsHandler := handlers.NewStatsHandler(store)

	// Health check (no dependencies required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/files/{fileID}/faces", facesHandler.Get)
		r.Post("/files/{fileID}/faces", facesHandler.Index)
		r.Get("/files/{fileID}/faces/remote", facesHandler.Remote)
		r.Get("/faces/{faceID}/similar", facesHandler.Similar)
		r.Get("/stats", statsHandler.Get)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	return s.httpServer.Shutdown(ctx)
}
