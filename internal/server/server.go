package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"

	"opswatch/internal/model"
)

// DashboardService is what the API serves. *dashboard.Service satisfies it.
type DashboardService interface {
	Hosts(ctx context.Context) ([]model.HostSummary, error)
	Problems(ctx context.Context) ([]model.Problem, error)
	Dashboard(ctx context.Context) (model.Dashboard, error)
	Logs(ctx context.Context, all bool) ([]model.ClassifiedLog, error)
	LogSummary(ctx context.Context, all bool) (model.LogSummary, error)
	Health(ctx context.Context) model.Health
	Status(ctx context.Context) (model.SelfStatus, error)
}

type Server struct {
	svc          DashboardService
	metrics      http.Handler
	basePath     string
	logger       *slog.Logger
	writeTimeout time.Duration
	srv          *http.Server
}

type Option func(*Server)

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBasePath mounts the API routes under prefix, e.g. "/api". /metrics
// stays at the root.
func WithBasePath(prefix string) Option {
	return func(s *Server) { s.basePath = strings.TrimSuffix(prefix, "/") }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

func New(svc DashboardService, opts ...Option) *Server {
	s := &Server{svc: svc, logger: slog.Default(), writeTimeout: 60 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r
	if s.basePath != "" {
		api = r.PathPrefix(s.basePath).Subrouter()
	}
	api.HandleFunc("/hosts", s.handleHosts).Methods(http.MethodGet)
	api.HandleFunc("/problems", s.handleProblems).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs/summary", s.handleLogSummary).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var h http.Handler = r
	h = gzhttp.GzipHandler(h)
	h = s.logRequests(h)
	h = cors(h)
	h = requestID(h)
	return h
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("api shutting down")
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := s.svc.Hosts(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hosts)
}

func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := s.svc.Problems(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, problems)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Logs(r.Context(), showAll(r))
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleLogSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.LogSummary(r.Context(), showAll(r))
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Health(r.Context()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status(r.Context())
	if err != nil {
		s.logger.Error("status unavailable", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("upstream request failed",
		"path", r.URL.Path,
		"error", err,
		"request_id", RequestIDFrom(r.Context()),
	)
	writeError(w, http.StatusBadGateway, err.Error())
}

// showAll reads the "all" query flag; anything unparsable means false.
func showAll(r *http.Request) bool {
	all, err := strconv.ParseBool(r.URL.Query().Get("all"))
	return err == nil && all
}

// writeJSON encodes v before writing the header, so a value that cannot be
// encoded becomes a 500 rather than a truncated 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
