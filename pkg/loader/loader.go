// Package loader compiles schemas straight from a ports.SchemaSource.
//
// Load fetches a document, loads everything it extends or references first
// and then compiles it, so callers need not know the dependency order.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/google/autoparse/pkg/ports"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
)

// Loader resolves schema URIs through a source and compiles them into a registry.
type Loader struct {
	registry *schema.Registry
	source   ports.SchemaSource
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader that compiles into reg.
func New(reg *schema.Registry, src ports.SchemaSource, opts ...Option) *Loader {
	l := &Loader{
		registry: reg,
		source:   src,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the schema registered under uri, fetching and compiling it
// and its dependencies when needed. Parents and $ref targets compile before
// the schemas that need them; items references are loaded afterwards.
//
// Schemas may refer to themselves. Two schemas that require each other
// through properties or extends cannot be compiled and fail with
// domain.ErrUnresolvedReference.
func (l *Loader) Load(ctx context.Context, uri string) (*schema.Descriptor, error) {
	u, err := schema.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("schema uri cannot be empty")
	}
	return l.load(ctx, u, make(map[string]bool))
}

// LoadAll loads every document the source lists.
func (l *Loader) LoadAll(ctx context.Context) ([]*schema.Descriptor, error) {
	uris, err := l.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	out := make([]*schema.Descriptor, 0, len(uris))
	for _, uri := range uris {
		d, err := l.Load(ctx, uri)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (l *Loader) load(ctx context.Context, u *url.URL, visiting map[string]bool) (*schema.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := *u
	doc.Fragment, doc.RawFragment = "", ""
	key := doc.String()

	if d, ok := l.registry.Lookup(key); ok {
		return d, nil
	}
	if visiting[key] {
		// Already on the stack: the compiler resolves self-references, and
		// the caller reports anything else as unresolved.
		return nil, nil
	}
	visiting[key] = true

	l.logger.Debug("loading schema", "uri", key)
	raw, err := l.source.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	data, err := value.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	required, deferred, err := schema.References(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	for _, dep := range required {
		if _, err := l.load(ctx, dep, visiting); err != nil {
			return nil, err
		}
	}

	d, err := l.registry.CompileURL(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", key, err)
	}

	for _, dep := range deferred {
		if _, err := l.load(ctx, dep, visiting); err != nil {
			return nil, err
		}
	}
	return d, nil
}
