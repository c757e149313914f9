// Package server exposes the verification pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/pipeline"
	"github.com/ppiankov/trustie/internal/rankings"
)

// shutdownGrace bounds how long in-flight requests may run after shutdown begins
const shutdownGrace = 15 * time.Second

// Server routes API requests to the pipeline and the rankings service
type Server struct {
	pipeline *pipeline.Pipeline // nil answers every pipeline route with a configuration error
	rankings *rankings.Service
	validate *validator.Validate
	config   model.ServerConfig
	logger   *slog.Logger
	router   chi.Router
}

// New creates a server. A nil ranks uses the pipeline's rankings service.
func New(p *pipeline.Pipeline, ranks *rankings.Service, config model.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if ranks == nil {
		if p != nil {
			ranks = p.Rankings()
		} else {
			ranks = rankings.NewService(rankings.NewMemoryStore(), model.DefaultConfig().Rankings)
		}
	}

	s := &Server{
		pipeline: p,
		rankings: ranks,
		validate: validator.New(),
		config:   config,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(requestDeadline(s.config.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/ask", s.handleAsk)
		r.Post("/search", s.handleSearch)
		r.Post("/rephrase", s.handleRephrase)
		r.Get("/rankings", s.handleListRankings)
		r.Post("/rankings", s.handleRecordRanking)
		r.Get("/health", s.handleHealth)
	})

	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then drains in-flight requests
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)

	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
