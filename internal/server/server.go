// Package server provides the HTTP API for joshu.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/answer"
	"github.com/hyperjump/joshu/internal/config"
	"github.com/hyperjump/joshu/internal/store"
)

// Server is the HTTP server for the joshu API.
type Server struct {
	engine  *answer.Engine
	store   *store.Store
	config  *config.Config
	logger  *zap.Logger
	version string
	server  *http.Server
	started time.Time
}

// NewServer wires the answer engine and store behind the HTTP API.
func NewServer(
	engine *answer.Engine,
	st *store.Store,
	cfg *config.Config,
	logger *zap.Logger,
	version string,
) *Server {
	return &Server{
		engine:  engine,
		store:   st,
		config:  cfg,
		logger:  logger,
		version: version,
	}
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// The API is consumed from course pages and grading scripts on other
	// origins, so CORS stays wide open.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.Timeout(time.Duration(s.config.Server.RequestTimeoutSecs) * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/ask", s.handleAsk) // legacy path of the first deployment
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.started = time.Now()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
