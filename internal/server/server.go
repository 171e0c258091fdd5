// Package server exposes the rendering pipeline over HTTP.
//
// The server accepts workbook uploads, renders genealogy artifacts through
// the shared pipeline runner, and keeps a history of completed runs. It is
// the multi-user counterpart to the CLI: same pipeline, same cache keys.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/takumik/keizu/internal/config"
	"github.com/takumik/keizu/pkg/history"
	"github.com/takumik/keizu/pkg/pipeline"
)

// Server wires the pipeline runner and history store behind a chi router.
type Server struct {
	cfg     config.Config
	runner  *pipeline.Runner
	history history.Store
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. A nil history store falls back to the in-memory
// store; a nil logger falls back to the default.
func New(cfg config.Config, runner *pipeline.Runner, store history.Store, logger *log.Logger) *Server {
	if store == nil {
		store = history.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		history: store,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/render", s.handleRender)
		r.Post("/graph", s.handleGraph)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.history.Close(shutdownCtx)
}
