// Package server exposes a generator.Generator as the mindcanvas HTTP generation
// service.
//
// Routes:
//
//	POST /api/generate   children, detail or summarize, selected by "action"
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/generator/remote"
	"github.com/smallnest/mindcanvas/log"
)

// maxBodyBytes bounds request bodies; summarize requests carry the whole canvas.
const maxBodyBytes = 1 << 20

// Server serves generation requests.
type Server struct {
	gen            generator.Generator
	logger         log.Logger
	metrics        *Metrics
	validate       *validator.Validate
	requestTimeout time.Duration
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRequestTimeout bounds the generation call of each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New creates a Server for gen.
func New(gen generator.Generator, opts ...Option) *Server {
	s := &Server{
		gen:            gen,
		logger:         log.GetDefaultLogger(),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		requestTimeout: 30 * time.Second,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("mindcanvas")
	}
	return s
}

// Metrics returns the metrics collector.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Post(remote.GeneratePath, s.generate)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("generation service listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down generation service")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	var req remote.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Word = strings.TrimSpace(req.Word)
	if err := s.validate.Struct(req); err != nil {
		s.logger.Debug("[%s] rejected request: %v", reqID, err)
		writeError(w, http.StatusBadRequest, validationMessage(req))
		return
	}

	action := req.Action
	if action == "" {
		action = generator.OpChildren
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	start := time.Now()
	status, body, err := s.dispatch(ctx, req)
	s.metrics.GenerationTime.WithLabelValues(action).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if generator.IsParseError(err) {
			outcome = "malformed"
		}
		s.metrics.Generations.WithLabelValues(action, outcome).Inc()
		s.logger.Error("[%s] %s %q failed: %v", reqID, action, req.Word, err)
		writeError(w, status, errorMessage(action, err))
		return
	}

	s.metrics.Generations.WithLabelValues(action, "ok").Inc()
	writeJSON(w, status, body)
}

func (s *Server) dispatch(ctx context.Context, req remote.Request) (int, any, error) {
	switch req.Action {
	case remote.ActionDetail:
		res, err := s.gen.Detail(ctx, req.Word, req.ParentPath)
		if err != nil {
			return failureStatus(err), nil, err
		}
		return http.StatusOK, remote.DetailResponse{HasDetail: res.HasDetail, Detail: res.Detail}, nil

	case remote.ActionSummarize:
		text, err := s.gen.Summarize(ctx, remote.ConceptRefsFromWords(req.AllNodes))
		if err != nil {
			return failureStatus(err), nil, err
		}
		return http.StatusOK, remote.SummaryResponse{Summary: text}, nil

	default:
		cs, err := s.gen.Children(ctx, req.Word, req.ParentPath)
		if err != nil {
			return failureStatus(err), nil, err
		}
		s.metrics.CandidatesServed.Add(float64(len(cs)))
		return http.StatusOK, remote.ChildrenResponse{Words: remote.WordsFromCandidates(cs)}, nil
	}
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case generator.IsCallError(err), generator.IsParseError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validationMessage(req remote.Request) string {
	switch {
	case req.Action == remote.ActionSummarize:
		return "nothing to summarize"
	case req.Word == "":
		return "word is required"
	default:
		return "invalid request"
	}
}

func errorMessage(action string, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return action + " timed out"
	case generator.IsParseError(err):
		return "generation returned a malformed response"
	default:
		return action + " failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, remote.ErrorResponse{Error: msg})
}
