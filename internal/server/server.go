// Package server implements the shadergraph HTTP service.
//
// The service exposes the node type registry, builds shaders from graphs
// posted as JSON records and keeps named graphs in a [store.Store]:
//
//	GET    /healthz
//	GET    /v1/types
//	GET    /v1/types/{name}
//	POST   /v1/build
//	GET    /v1/graphs
//	PUT    /v1/graphs/{id}
//	GET    /v1/graphs/{id}
//	DELETE /v1/graphs/{id}
//	POST   /v1/graphs/{id}/build
//	GET    /v1/graphs/{id}/render?format=svg&detailed=true
//	POST   /v1/graphs/{id}/nodes
//	DELETE /v1/graphs/{id}/nodes/{node}
//	POST   /v1/graphs/{id}/connections
//	DELETE /v1/graphs/{id}/connections
//
// Errors are JSON bodies produced by httputil.WriteError.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/observability"
	"github.com/matzehuels/shadergraph/pkg/pipeline"
	"github.com/matzehuels/shadergraph/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies when Config.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Config configures a [Server].
type Config struct {
	Registry     nodetype.Registry
	Runner       *pipeline.Runner
	Store        store.Store
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server serves the HTTP API.
type Server struct {
	registry nodetype.Registry
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	maxBody  int64
	router   chi.Router
	locks    graphLocks
}

// New creates a server. Registry, Runner and Store are required.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil || cfg.Runner == nil || cfg.Store == nil {
		return nil, stderrors.New("server: registry, runner and store are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		registry: cfg.Registry,
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/types", s.handleListTypes)
		r.Get("/types/{name}", s.handleGetType)
		r.Post("/build", s.handleBuild)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.handleListGraphs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGraph)
				r.Put("/", s.handlePutGraph)
				r.Delete("/", s.handleDeleteGraph)
				r.Post("/build", s.handleBuildGraph)
				r.Get("/render", s.handleRenderGraph)
				r.Post("/nodes", s.handleAddNode)
				r.Delete("/nodes/{node}", s.handleRemoveNode)
				r.Post("/connections", s.handleAddConnection)
				r.Delete("/connections", s.handleRemoveConnection)
			})
		})
	})
	return r
}

// logRequests logs every request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
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
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
