package autoparse

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/instance"
	"github.com/google/autoparse/pkg/loader"
	"github.com/google/autoparse/pkg/ports"
	"github.com/google/autoparse/pkg/schema"
)

//go:embed VERSION
var version string

// Version is the released version of the module.
var Version = strings.TrimSpace(version)

// Engine is the high-level entry point for the library. It pairs a schema
// registry with an optional source that schemas are loaded from on demand.
type Engine struct {
	registry *schema.Registry
	source   ports.SchemaSource
	loader   *loader.Loader
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(reg *schema.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithSource lets Load fetch schemas that are not registered yet.
func WithSource(src ports.SchemaSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLogger sets the structured logger for the engine and the components
// it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine. Without options it has an empty registry and no
// source, so schemas must be compiled explicitly.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.registry == nil {
		e.registry = schema.NewRegistry(schema.WithLogger(e.logger))
	}
	if e.source != nil {
		e.loader = loader.New(e.registry, e.source, loader.WithLogger(e.logger))
	}
	return e
}

// Registry returns the registry schemas are compiled into.
func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

// Source returns the configured schema source, or nil.
func (e *Engine) Source() ports.SchemaSource {
	return e.source
}

// Compile compiles a schema document and registers it under uri.
func (e *Engine) Compile(data any, uri string) (*schema.Descriptor, error) {
	return e.registry.Compile(data, uri)
}

// Load returns the schema registered under uri. Unknown schemas are fetched
// from the source together with their dependencies; without a source they
// fail with domain.ErrSchemaNotFound.
func (e *Engine) Load(ctx context.Context, uri string) (*schema.Descriptor, error) {
	if d, ok := e.registry.Lookup(uri); ok {
		return d, nil
	}
	if e.loader == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, uri)
	}
	return e.loader.Load(ctx, uri)
}

// Preload loads each uri, or everything the source lists when none is given.
func (e *Engine) Preload(ctx context.Context, uris ...string) error {
	if len(uris) == 0 {
		if e.loader == nil {
			return nil
		}
		_, err := e.loader.LoadAll(ctx)
		return err
	}
	for _, uri := range uris {
		if _, err := e.Load(ctx, uri); err != nil {
			return err
		}
	}
	return nil
}

// Parse binds data to the schema at uri.
func (e *Engine) Parse(ctx context.Context, uri string, data any) (*instance.Instance, error) {
	d, err := e.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	return instance.New(d, data)
}

// Validate checks data against the schema at uri. A nil result means the
// data is valid; a *domain.ValidationError names the first failing key.
func (e *Engine) Validate(ctx context.Context, uri string, data any) error {
	inst, err := e.Parse(ctx, uri, data)
	if err != nil {
		return err
	}
	if err := inst.Validate(); err != nil {
		e.logger.Debug("validation failed", "schema", uri, "error", err)
		return err
	}
	return nil
}

// Schemas returns the registered descriptors ordered by URI.
func (e *Engine) Schemas() []*schema.Descriptor {
	all := e.registry.All()
	out := make([]*schema.Descriptor, 0, len(all))
	for _, d := range all {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
