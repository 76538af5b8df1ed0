package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/autoparse"
	"github.com/google/autoparse/pkg/adapters/openapi"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds schema and data uploads.
const maxBodySize = 4 << 20

// Engine is the part of autoparse.Engine the server needs.
type Engine interface {
	Load(ctx context.Context, uri string) (*schema.Descriptor, error)
	Compile(data any, uri string) (*schema.Descriptor, error)
	Validate(ctx context.Context, uri string, data any) error
	Schemas() []*schema.Descriptor
}

var _ Engine = (*autoparse.Engine)(nil)

// Server serves schema compilation and validation over HTTP.
type Server struct {
	Engine   Engine
	Metrics  *Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry registers the server metrics with reg and serves reg on
// /metrics. By default each handler gets a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.Metrics = NewMetrics(reg)
			s.gatherer = reg
		}
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Metrics == nil {
		reg := prometheus.NewRegistry()
		s.Metrics = NewMetrics(reg)
		s.gatherer = reg
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schemas", s.ListSchemas)
	r.Post("/schemas", s.CompileSchema)
	r.Get("/schemas/*", s.GetSchema)
	r.Post("/validate", s.Validate)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidationResult is the body of a /validate response.
type ValidationResult struct {
	Schema string `json:"schema"`
	Valid  bool   `json:"valid"`
	Key    string `json:"key,omitempty"`
	Error  string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnresolvedReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
}

// bodyStatus is 413 for bodies over the size limit and 400 for any other
// read failure.
func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "autoparse-http",
		"version": autoparse.Version,
		"schemas": len(s.Engine.Schemas()),
	})
}

// ListSchemas handles GET /schemas with a summary of every registered schema.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	all := s.Engine.Schemas()
	out := make([]schema.Summary, 0, len(all))
	for _, d := range all {
		out = append(out, schema.Summarize(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSchema handles GET /schemas/{uri} and returns the raw document. The
// URI is path-escaped; schemas not yet registered are loaded.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	uri, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || uri == "" {
		writeError(w, http.StatusBadRequest, "invalid schema uri")
		return
	}

	d, err := s.Engine.Load(r.Context(), uri)
	if err != nil {
		writeError(w, statusOf(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CompileSchema handles POST /schemas?uri=..., compiling the body and
// registering it under uri.
func (s *Server) CompileSchema(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		writeError(w, http.StatusBadRequest, "missing uri parameter")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, bodyStatus(err), "read body: %v", err)
		return
	}

	d, err := s.Engine.Compile(body, uri)
	if err != nil {
		s.logger.Warn("schema compilation rejected", "uri", uri, "error", err)
		writeError(w, statusOf(err), "%v", err)
		return
	}
	s.logger.Info("schema registered", "uri", d.ID())
	writeJSON(w, http.StatusCreated, schema.Summarize(d))
}

// Validate handles POST /validate?schema=... with the data as body. Invalid
// data is a 200 with valid set to false; the status reports only failures to
// run the check.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("schema")
	if uri == "" {
		writeError(w, http.StatusBadRequest, "missing schema parameter")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, bodyStatus(err), "read body: %v", err)
		return
	}
	data, err := value.DecodeJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
		return
	}

	d, err := s.Engine.Load(r.Context(), uri)
	if err != nil {
		s.Metrics.Observe(UnknownSchema, ResultError, 0)
		s.logger.Warn("validation schema unavailable", "schema", uri, "error", err)
		writeError(w, statusOf(err), "%v", err)
		return
	}
	label := d.ID()

	start := time.Now()
	err = s.Engine.Validate(r.Context(), label, data)
	elapsed := time.Since(start)

	res := ValidationResult{Schema: label, Valid: err == nil}
	var verr *domain.ValidationError
	switch {
	case err == nil:
		s.Metrics.Observe(label, ResultValid, elapsed)
	case errors.As(err, &verr):
		res.Key = verr.Key
		res.Error = err.Error()
		s.Metrics.Observe(label, ResultInvalid, elapsed)
	case errors.Is(err, domain.ErrTypeMismatch):
		res.Error = err.Error()
		s.Metrics.Observe(label, ResultInvalid, elapsed)
	default:
		s.Metrics.Observe(label, ResultError, elapsed)
		s.logger.Error("validation failed to run", "schema", label, "error", err)
		writeError(w, statusOf(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetOpenAPI handles GET /openapi.json, exporting every registered schema
// as an OpenAPI component.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := openapi.Document(s.Engine.Schemas(), "autoparse schemas", autoparse.Version)
	writeJSON(w, http.StatusOK, doc)
}
