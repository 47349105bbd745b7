package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"task_api/config"
	dberrors "task_api/errors"
	"task_api/metric"
	"task_api/store"
	"task_api/tasks"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// guidPattern only admits canonical 8-4-4-4-12 ids, so malformed ids are
// answered with 404 by the router and never reach a handler.
const guidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var errUnauthorized = errors.New("missing or invalid access key")

// Server represents the HTTP server that exposes the task API
type Server struct {
	Config  config.Config
	server  *http.Server
	handler http.Handler
}

// New creates a new server instance backed by the configured SQL store
func New(cfg config.Config) *Server {
	return NewWithRepository(cfg, store.NewSQL(cfg))
}

// NewWithRepository creates a server over an arbitrary repository
func NewWithRepository(cfg config.Config, repo store.Repository) *Server {
	s := &Server{Config: cfg}
	s.handler = s.routes(repo)
	return s
}

func (s *Server) routes(repo store.Repository) http.Handler {
	r := mux.NewRouter()

	tasksPath := s.Config.RoutePrefix + "/tasks"
	itemPath := tasksPath + "/{id:" + guidPattern + "}"
	itemLabel := tasksPath + "/{id}"

	r.Handle(tasksPath, s.taskRoute(tasksPath, tasks.NewCreateHandler(repo))).Methods(http.MethodPost)
	r.Handle(tasksPath, s.taskRoute(tasksPath, tasks.NewListHandler(repo))).Methods(http.MethodGet)
	r.Handle(itemPath, s.taskRoute(itemLabel, tasks.NewUpdateHandler(repo))).Methods(http.MethodPut)
	r.Handle(itemPath, s.taskRoute(itemLabel, tasks.NewDeleteHandler(repo))).Methods(http.MethodDelete)

	r.HandleFunc("/metrics", s.handleAppMetrics).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		metric.IncrementRequestCounter("unmatched", req.Method, http.StatusNotFound)
		http.NotFound(w, req)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		metric.IncrementRequestCounter("unmatched", req.Method, http.StatusMethodNotAllowed)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Stop
// and an *errors.ServerError when the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.HTTPAddr, s.Config.HTTPPort)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.Config.HTTPReadTimeout.ToStd(),
		WriteTimeout: s.Config.HTTPWriteTimeout.ToStd(),
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Starting task API", "address", addr, "prefix", s.Config.RoutePrefix, "table", s.Config.TableName)
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return dberrors.NewServerError(fmt.Sprintf("listen on %s: %v", addr, err))
	}
	return err
}

// HandleRequest handles an HTTP request - useful for testing
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// taskRoute wraps a task handler with the access check, logging, metrics and
// response writing.
func (s *Server) taskRoute(label string, h tasks.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.authorize(r); err != nil {
			slog.Warn("Rejected request", "route", label, "method", r.Method, "error", err)
			metric.IncrementRequestCounter(label, r.Method, http.StatusUnauthorized)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		body, status, err := h.Handle(r.Context(), r)
		if err != nil {
			if status >= http.StatusInternalServerError {
				slog.Error("Task request failed", "route", label, "method", r.Method, "status", status, "error", err)
			} else {
				slog.Warn("Task request rejected", "route", label, "method", r.Method, "status", status, "error", err)
			}
		}
		metric.IncrementRequestCounter(label, r.Method, status)

		switch {
		case status == http.StatusNoContent:
			w.WriteHeader(status)
			return
		case err == nil:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		default:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(status)
		if _, werr := w.Write(body); werr != nil {
			slog.Warn("Failed to write response", "route", label, "error", werr)
		}
	}
}

// authorize checks the capability key from the "code" query parameter or
// the x-functions-key header against the configured bcrypt hash. An empty
// hash disables the check.
func (s *Server) authorize(r *http.Request) error {
	if s.Config.AccessKeyHash == "" {
		return nil
	}
	key := r.URL.Query().Get("code")
	if key == "" {
		key = r.Header.Get("x-functions-key")
	}
	if key == "" {
		return errUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Config.AccessKeyHash), []byte(key)); err != nil {
		return errUnauthorized
	}
	return nil
}

// handleAppMetrics serves application-level metrics (request counters, store operations)
func (s *Server) handleAppMetrics(w http.ResponseWriter, r *http.Request) {
	metric.IncrementRequestCounter("/metrics", r.Method, http.StatusOK)
	w.Header().Set("Content-Type", "text/plain")
	metric.WriteMetrics(w, false)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metric.IncrementRequestCounter("/health", r.Method, http.StatusOK)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
