package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/autoparse/pkg/domain"
)

// Source implements ports.SchemaStore in memory.
// Safe for concurrent use.
type Source struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewSource creates a source preloaded with raw documents keyed by URI.
func NewSource(docs map[string]string) *Source {
	s := &Source{docs: make(map[string][]byte, len(docs))}
	for uri, doc := range docs {
		s.docs[uri] = []byte(doc)
	}
	return s
}

// Fetch returns a copy of the stored document.
func (s *Source) Fetch(ctx context.Context, uri string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, uri)
	}
	return append([]byte(nil), doc...), nil
}

// List returns all stored URIs.
func (s *Source) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris) // Deterministic order
	return uris, nil
}

// Put stores a copy of doc.
func (s *Source) Put(ctx context.Context, uri string, doc []byte) error {
	if uri == "" {
		return fmt.Errorf("schema uri cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = append([]byte(nil), doc...)
	return nil
}

// Delete removes the document.
func (s *Source) Delete(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
	return nil
}
