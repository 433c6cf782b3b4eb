// Package server provides the local HTTP browser over the component library.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/preview"
)

// DefaultAddr is used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:4780"

// maxImportSize caps POST /api/import bodies.
const maxImportSize = 32 << 20

// Server serves the library API, previews and metrics.
type Server struct {
	addr     string
	lib      *library.Library
	renderer *preview.Renderer
	metrics  *Metrics
	logger   *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Addr     string
	Library  *library.Library
	Renderer *preview.Renderer
	Logger   *slog.Logger
	// Metrics may be nil; a fresh registry is created.
	Metrics *Metrics
}

// New creates a Server.
func New(cfg Config) *Server {
	s := &Server{
		addr:     cfg.Addr,
		lib:      cfg.Library,
		renderer: cfg.Renderer,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.instrument,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/components", s.listComponents)
		r.Route("/components/{id}", func(r chi.Router) {
			r.Get("/", s.getComponent)
			r.Delete("/", s.deleteComponent)
			r.Get("/preview", s.previewComponent)
			r.Get("/code", s.componentCode)
			r.Get("/download", s.downloadComponent)
		})
		r.Get("/history", s.history)
		r.Get("/export", s.export)
		r.Post("/import", s.importLibrary)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting library server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down library server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// instrument records request counts and durations by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errNotFound = errors.New("component not found")

// component loads the {id} component, writing a 404 or 500 when it can't.
func (s *Server) component(w http.ResponseWriter, r *http.Request) (*model.GeneratedComponent, bool) {
	c, err := s.lib.GetComponent(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if c == nil {
		s.writeError(w, http.StatusNotFound, errNotFound)
		return nil, false
	}
	return c, true
}
