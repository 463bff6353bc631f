package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/mhadri/routeflow/pkg/flow"
	"github.com/mhadri/routeflow/pkg/route"
	"github.com/mhadri/routeflow/pkg/types"
)

const shutdownGrace = 5 * time.Second

// Server exposes loaded routes over HTTP: a request to a route's declared
// method and path triggers a run and answers with the route's response
// template plus run metadata.
type Server struct {
	addr   string
	routes *route.Registry
	runner *flow.Runner
	store  *flow.Store

	requestsPerMinute int
	logger            *slog.Logger
}

func NewServer(addr string, routes *route.Registry, runner *flow.Runner, store *flow.Store) *Server {
	return &Server{addr: addr, routes: routes, runner: runner, store: store}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// SetRequestLimit caps requests per client IP per minute. 0 disables the
// limiter.
func (s *Server) SetRequestLimit(perMinute int) {
	s.requestsPerMinute = perMinute
}

// Handler builds the router. Route dispatch goes through the registry on
// every request, so watcher reloads take effect without re-mounting.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.requestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.requestsPerMinute, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/routes", s.handleRoutes)
	r.Get("/runs/{id}", s.handleRun)
	r.NotFound(s.dispatch)
	r.MethodNotAllowed(s.dispatch)

	return r
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logInfo("gateway_listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Addr() string {
	return s.addr
}

// dispatch resolves the request against the loaded routes and executes the
// matched one.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	rt, ok := s.routes.Match(r.Method, r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route for " + r.Method + " " + r.URL.Path})
		return
	}

	params := make(map[string]string)
	for k := range r.URL.Query() {
		params[k] = r.URL.Query().Get(k)
	}

	run, err := s.runner.Run(r.Context(), rt.Name, params)
	if err != nil {
		s.logError("route_run_failed", "route", rt.Name, "error", err)
		status := http.StatusInternalServerError
		body := map[string]interface{}{"error": err.Error()}
		if run != nil {
			w.Header().Set("X-Run-ID", run.ID)
			body["runId"] = run.ID
		}
		writeJSON(w, status, body)
		return
	}

	w.Header().Set("X-Run-ID", run.ID)
	status := run.Result.StatusCode
	if status < 100 || status > 999 {
		// WriteHeader panics outside this range; a route declaring a bogus
		// code is a definition error, not a client error.
		s.logError("route_bad_status", "route", rt.Name, "statusCode", status)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, routeReply{
		RunResult: run.Result,
		RunID:     run.ID,
	})
}

type routeReply struct {
	types.RunResult
	RunID string `json:"runId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.routes.List())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Load(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
