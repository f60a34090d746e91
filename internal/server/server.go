// Package server serves the periodic table, the nuclide chart and their JSON
// and GraphQL APIs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/service"
)

// Options wires a Server. Only Tables is required.
type Options struct {
	Tables      *service.TableService
	Jobs        *service.JobManager // enables /refresh and /jobs
	Languages   LanguageLister
	DefaultLang string
	Metrics     *metrics.Collector
	Registry    *metrics.Registry
	Logger      *slog.Logger
}

// Server is the HTTP front end of the table service.
type Server struct {
	tables    *service.TableService
	jobs      *service.JobManager
	languages *Negotiator
	metrics   *metrics.Collector
	registry  *metrics.Registry
	logger    *slog.Logger
	templates map[string]*template.Template
	graphql   *GraphQLHandler
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Tables == nil {
		return nil, errors.New("server: no table service")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	schema, err := NewSchema(opts.Tables)
	if err != nil {
		return nil, err
	}

	languages := NewNegotiator(opts.Languages, opts.DefaultLang)
	return &Server{
		tables:    opts.Tables,
		jobs:      opts.Jobs,
		languages: languages,
		metrics:   opts.Metrics,
		registry:  opts.Registry,
		logger:    logger,
		templates: templates,
		graphql:   NewGraphQLHandler(schema, languages),
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /nuclides", s.handleNuclides)
	mux.HandleFunc("GET /license", s.handleLicense)

	// APIs
	mux.HandleFunc("GET /api", s.handleAPI)
	mux.HandleFunc("GET /api/nuclides", s.handleAPINuclides)
	mux.Handle("/query", s.graphql)

	// Refresh jobs, only when a sink is configured
	if s.jobs != nil {
		mux.HandleFunc("POST /refresh", s.handleRefresh)
		mux.HandleFunc("GET /jobs", s.handleJobs)
		mux.HandleFunc("GET /jobs/{id}", s.handleJob)
		mux.HandleFunc("GET /jobs/{id}/watch", s.handleWatchJob)
	}

	// Operations
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if s.registry != nil {
		mux.Handle("GET /metrics", s.registry.Handler())
	}

	return RequestIDMiddleware(LoggingMiddleware(s.logger, s.registry)(mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute, // Uncached nuclide charts are slow
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
