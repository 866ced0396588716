// Package server exposes sizing, network builds, rendering and the drawing
// library over HTTP.
//
// All routes live under /v1 except the health and version probes:
//
//	POST   /v1/size                   size one duct
//	POST   /v1/supply                 room supply airflow schedule
//	POST   /v1/build                  build and render a terminal set
//	POST   /v1/render?format=svg      render a given network
//	GET    /v1/drawings               list stored drawings
//	GET    /v1/drawings/{id}          fetch a drawing
//	PUT    /v1/drawings/{id}          store a drawing
//	DELETE /v1/drawings/{id}          delete a drawing
//	POST   /v1/drawings/{id}/build    rebuild a stored drawing
//	POST   /v1/drawings/{id}/move     drag one run of a stored drawing
//	GET    /v1/drawings/{id}/render   render a stored drawing
//	GET    /healthz, /version
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/pipeline"
	"github.com/matzehuels/ductwork/pkg/store"
)

// Timeouts of the HTTP server.
const (
	ReadTimeout     = 30 * time.Second
	WriteTimeout    = 60 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 15 * time.Second

	// maxBodyBytes caps request bodies.
	maxBodyBytes = 4 << 20
)

// KeyPrefix scopes the server's cache keys apart from CLI entries on a
// shared backend.
const KeyPrefix = "api:"

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	defaults pipeline.Options
	logger   *log.Logger
}

// Config holds the dependencies of a [Server].
type Config struct {
	Cache  cache.Cache
	Store  store.Store
	Logger *log.Logger

	// Defaults are applied to build requests that leave a field unset.
	Defaults pipeline.Options
}

// New creates a server. A nil cache disables caching; a nil store answers
// drawing routes with 501.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), KeyPrefix)
	return &Server{
		runner:   pipeline.NewRunner(cfg.Cache, keyer, logger),
		store:    cfg.Store,
		defaults: cfg.Defaults,
		logger:   logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/size", s.handleSize)
		r.Post("/supply", s.handleSupply)
		r.Post("/build", s.handleBuild)
		r.Post("/render", s.handleRender)

		r.Route("/drawings", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListDrawings)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDrawing)
				r.Put("/", s.handlePutDrawing)
				r.Delete("/", s.handleDeleteDrawing)
				r.Post("/build", s.handleBuildDrawing)
				r.Post("/move", s.handleMoveDrawing)
				r.Get("/render", s.handleRenderDrawing)
			})
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    ReadTimeout,
		WriteTimeout:   WriteTimeout,
		IdleTimeout:    IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		BaseContext:    func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close()
}

// Close releases the cache and store.
func (s *Server) Close() error {
	err := s.runner.Close()
	if s.store != nil {
		if serr := s.store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// observe reports every request to the server hooks, keyed by route
// pattern rather than the raw path.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeError(w, errNoStore)
			return
		}
		next.ServeHTTP(w, r)
	})
}
