// Package server serves the rendered pages, the graph document and the replay stream.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/loader"
)

// ElementsPath is where the graph document is served.
const ElementsPath = loader.DefaultURL

type Config struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Server serves handles that were built once at startup. Nothing it serves changes
// after New returns.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	elements []byte
	pages    map[string]graphs.Handle
	stream   http.Handler
}

// New prepares a server for list. pages maps request paths to visualizations; stream,
// when not nil, is mounted at /ws.
func New(cfg Config, logger *slog.Logger, list elements.List, pages map[string]graphs.Handle, stream http.Handler) (*Server, error) {
	if list == nil {
		list = elements.List{}
	}
	doc, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		elements: doc,
		pages:    pages,
		stream:   stream,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get(ElementsPath, s.serveElements)
	})

	for path, h := range s.pages {
		r.Get(path, s.servePage(h))
	}

	if s.stream != nil {
		r.Handle("/ws", s.stream)
	}

	return r
}

func (s *Server) serveElements(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.elements)
}

// servePage renders into a buffer first so a failed render becomes a 500 rather than
// a truncated page.
func (s *Server) servePage(h graphs.Handle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := h.Render(&buf); err != nil {
			s.logger.Error("Failed to render page", "path", r.URL.Path, "handle", h.ID(), "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", h.ContentType())
		_, _ = buf.WriteTo(w)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("Serving", "address", lis.Addr().String())
		errs <- srv.Serve(lis)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
