package schema

import (
	"io"
	"log/slog"
	"net/url"
	"sort"
	"sync"

	"github.com/google/autoparse/pkg/domain"
)

// Registry maps canonical schema URIs to compiled descriptors. It is owned
// by the caller; $ref and extends resolve only against schemas compiled in
// the same registry.
//
// Lookups are safe for concurrent use. Compile calls are serialised so the
// check-then-register sequence of one compilation is never interleaved with
// another.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Descriptor

	compileMu sync.Mutex
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		schemas: make(map[string]*Descriptor),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a descriptor under its URI. An existing entry with the same
// URI is overwritten. Anonymous descriptors are ignored.
func (r *Registry) Register(d *Descriptor) {
	if d == nil || d.uri == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[uriKey(d.uri)] = d
}

// Lookup returns the descriptor registered under uri.
func (r *Registry) Lookup(uri string) (*Descriptor, bool) {
	u, err := ParseURI(uri)
	if err != nil || u == nil {
		return nil, false
	}
	return r.lookup(u)
}

func (r *Registry) lookup(u *url.URL) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.schemas[uriKey(u)]
	return d, ok
}

// Resolve resolves ref against base and returns the registered target.
// It fails with a *domain.ReferenceError when nothing is registered there.
func (r *Registry) Resolve(base *url.URL, ref string) (*Descriptor, error) {
	target, err := ResolveURI(base, ref)
	if err != nil {
		return nil, err
	}
	if d, ok := r.lookup(target); ok {
		return d, nil
	}
	return nil, &domain.ReferenceError{Ref: ref, URI: uriKey(target)}
}

// All returns every registered schema keyed by URI.
func (r *Registry) All() map[string]*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Descriptor, len(r.schemas))
	for k, d := range r.schemas {
		out[k] = d
	}
	return out
}

// URIs returns the registered URIs in sorted order.
func (r *Registry) URIs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uris := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		uris = append(uris, k)
	}
	sort.Strings(uris)
	return uris
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Remove drops the schema registered under uri. Descriptors that already
// reference it keep working.
func (r *Registry) Remove(uri string) {
	u, err := ParseURI(uri)
	if err != nil || u == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schemas, uriKey(u))
}

// Reset empties the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = make(map[string]*Descriptor)
}

// swap replaces the entry for key and returns the previous one.
func (r *Registry) swap(key string, d *Descriptor) (*Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.schemas[key]
	if d == nil {
		delete(r.schemas, key)
	} else {
		r.schemas[key] = d
	}
	return prev, ok
}
