// Package server hosts the interactive viewer: an HTTP server that parses
// a speck source tree on demand, renders it server-side, and serves a
// small client page with pan, zoom, and click-to-expand.
//
// Endpoints:
//
//	GET /                 viewer page
//	GET /graph            document JSON for an expansion state
//	GET /graph/version    current source version token
//	GET /render           standalone SVG for an expansion state
//	GET /export/dot       module dependencies as Graphviz DOT or SVG
//
// Expansion state lives in the client; every request carries it in the
// expanded query parameter, so the server stays stateless and cacheable.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/speckview/pkg/errors"
	"github.com/matzehuels/speckview/pkg/pipeline"
	"github.com/matzehuels/speckview/pkg/render"
	"github.com/matzehuels/speckview/pkg/speck"
)

// Options configures the viewer server.
type Options struct {
	// Addr is the listen address, for example "127.0.0.1:8420".
	Addr string

	// Pipeline is the base pipeline configuration. Root file and layout
	// config come from here; expansion state comes from each request.
	Pipeline pipeline.Options

	// Watch enables the filesystem watcher that flushes caches when the
	// source tree changes.
	Watch bool

	// Flusher, when set, is flushed on source changes. Typically the
	// memory cache backing the runner.
	Flusher Flusher

	Logger *log.Logger
}

// Flusher is the subset of a cache the watcher needs.
type Flusher interface {
	Flush()
}

// Server is the viewer HTTP server.
type Server struct {
	opts   Options
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a viewer server around an existing pipeline runner.
func New(runner *pipeline.Runner, opts Options) (*Server, error) {
	if err := opts.Pipeline.ValidateForParse(); err != nil {
		return nil, err
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8420"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		opts:   opts,
		runner: runner,
		logger: logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the server and, when watching is enabled, the source
// watcher, until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("viewer listening", "addr", s.opts.Addr, "root", s.opts.Pipeline.RootFile)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if s.opts.Watch {
		watcher, err := NewWatcher(WatcherOptions{
			RootFile: s.opts.Pipeline.RootFile,
			Flusher:  s.opts.Flusher,
			Logger:   s.logger,
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	return g.Wait()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(recoverer(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph/version", s.handleVersion)
	r.Get("/render", s.handleRender)
	r.Get("/export/dot", s.handleExportDOT)

	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(viewerHTML)
}

// handleGraph returns the full document: snapshot, geometry, and the
// arrows for the requested expansion state.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, _, err := s.runner.ParseWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	geo, _, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	version, err := speck.Version(opts.RootFile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := render.BuildDocument(snap, geo, opts.ExpandedSet(snap), opts.Config, speck.VersionToken(version))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Error("encode document", "err", err)
	}
}

// handleVersion returns the current source version token. The client
// polls this to detect edits.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	version, err := speck.Version(s.opts.Pipeline.RootFile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"version":%d}`+"\n", speck.VersionToken(version))
}

// handleRender returns a standalone SVG artifact for the requested
// expansion state.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r, pipeline.FormatSVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.Artifacts[pipeline.FormatSVG])
}

// handleExportDOT returns the module dependencies in DOT, or as a
// Graphviz-rendered SVG when render=svg is passed.
func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r, pipeline.FormatDOT)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, _, err := s.runner.ParseWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dot := render.ToDOT(snap)
	if r.URL.Query().Get("render") == "svg" {
		svg, err := render.RenderDOTSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// =============================================================================
// Request Parsing
// =============================================================================

// requestOptions copies the base pipeline options and applies the
// request's expansion parameters.
func (s *Server) requestOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.opts.Pipeline
	opts.Formats = []string{format}
	opts.Logger = s.logger

	q := r.URL.Query()
	opts.All = q.Get("all") == "1" || q.Get("all") == "true"
	opts.Expanded = nil
	if raw := q.Get("expanded"); raw != "" {
		for _, path := range strings.Split(raw, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			if err := errors.ValidateModulePath(path); err != nil {
				return pipeline.Options{}, err
			}
			opts.Expanded = append(opts.Expanded, path)
		}
	}
	return opts, nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeModuleNotFound:
		status = http.StatusNotFound
	}

	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}
