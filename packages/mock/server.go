// Package mock serves an in-memory Simple Books API for offline runs and tests.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
)

// Server is an in-memory Simple Books API
type Server struct {
	router *Router
	store  *store
	port   int
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	hits   map[string]int
	faults map[string][]int
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithLogger sets the request logger. Requests are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBooks replaces the default catalogue.
func WithBooks(catalogue []books.Book) Option {
	return func(s *Server) {
		s.store = newStore(catalogue)
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		store:  newStore(DefaultBooks),
		port:   3000,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		hits:   make(map[string]int),
		faults: make(map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Handle(http.MethodGet, "/status", s.handleStatus)
	s.router.Handle(http.MethodGet, "/books", s.handleListBooks)
	s.router.Handle(http.MethodGet, "/books/{{id}}", s.handleGetBook)
	s.router.Handle(http.MethodPost, "/api-clients", s.handleRegister)
	s.router.Handle(http.MethodPost, "/orders", s.authorized(s.handleCreateOrder))
	s.router.Handle(http.MethodGet, "/orders", s.authorized(s.handleListOrders))
	s.router.Handle(http.MethodGet, "/orders/{{id}}", s.authorized(s.handleGetOrder))
	s.router.Handle(http.MethodPatch, "/orders/{{id}}", s.authorized(s.handleUpdateOrder))
	s.router.Handle(http.MethodDelete, "/orders/{{id}}", s.authorized(s.handleDeleteOrder))
}

// Hits returns how many requests reached the route registered as method + pattern.
// Patterns use {{id}} for parameters, e.g. "/orders/{{id}}".
func (s *Server) Hits(method, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[routeKey(method, pattern)]
}

// FailNext makes the next request to method + pattern answer with status
// instead of reaching the handler. Calls queue up.
func (s *Server) FailNext(method, pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, pattern)
	s.faults[key] = append(s.faults[key], status)
}

func routeKey(method, pattern string) string {
	return method + " " + normalizePath(pattern)
}

// record counts the hit and pops a queued fault, if any.
func (s *Server) record(route *Route) (status int, fault bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(route.Method, route.PathPattern)
	s.hits[key]++
	if q := s.faults[key]; len(q) > 0 {
		s.faults[key] = q[1:]
		return q[0], true
	}
	return 0, false
}

// Routes lists the served routes
func (s *Server) Routes() []*Route {
	return s.router.Routes()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		s.logger.Debug("mock request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	}()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	route, params, pathKnown := s.router.Match(r.Method, r.URL.Path)
	if route == nil {
		if pathKnown {
			writeError(rec, http.StatusMethodNotAllowed, "Method not allowed.")
			return
		}
		writeError(rec, http.StatusNotFound, "Not found.")
		return
	}

	if status, fault := s.record(route); fault {
		writeError(rec, status, http.StatusText(status))
		return
	}

	route.Handler(rec, r, params)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mock server listening", "addr", srv.Addr, "routes", len(s.router.Routes()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("mock server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, books.ErrorResponse{Error: msg})
}
