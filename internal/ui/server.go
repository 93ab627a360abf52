package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/git2neo/api"
	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/log"
)

// Server represents the UI web server
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	Store   store.Store
	Crawler *api.CrawlerAPI
	server  *http.Server
	port    int
}

// NewServer creates a new UI server. crawlerAPI may be nil for a read-only UI.
func NewServer(logger log.Logger, config *cfg.Config, st store.Store, crawlerAPI *api.CrawlerAPI, port int) (*Server, error) {
	return &Server{
		Logger:  logger,
		Config:  config,
		Store:   st,
		Crawler: crawlerAPI,
		port:    port,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	handler, err := NewHandler(s.Logger, s.Config, s.Store, s.Crawler)
	if err != nil {
		return fmt.Errorf("failed to create UI handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting UI server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down UI server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
