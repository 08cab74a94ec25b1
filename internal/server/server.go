// Package server exposes the frontend-facing HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ragstack/go-ragproxy/internal/config"
	"github.com/ragstack/go-ragproxy/internal/upstream"
)

// maxBodyBytes limits the size of incoming request bodies.
const maxBodyBytes = 1 * 1024 * 1024 // 1 MB

// Server is the main HTTP server.
type Server struct {
	Config     *config.ServerConfig
	Upstream   *upstream.Client
	httpServer *http.Server
}

// New creates a new server with all routes registered.
func New(cfg *config.ServerConfig) *Server {
	s := &Server{
		Config:   cfg,
		Upstream: upstream.NewClient(cfg.APIKey, cfg.Verbose),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/models", s.handleModels)

	// OPTIONS for CORS preflight
	mux.HandleFunc("OPTIONS /", s.handleOptions)

	handler := corsMiddleware(cfg.AllowedOrigins,
		requestIDMiddleware(
			verboseMiddleware(cfg,
				debugMiddleware(cfg, mux))))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
