package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/ports"
)

// SchemaSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.SchemaSource.
// setupData maps every URI the source is expected to serve to its document.
func SchemaSourceContractTest(t *testing.T, src ports.SchemaSource, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("Fetch_Success", func(t *testing.T) {
		for uri, expected := range setupData {
			content, err := src.Fetch(ctx, uri)
			if err != nil {
				t.Fatalf("unexpected error fetching %s: %v", uri, err)
			}
			if string(content) != string(expected) {
				t.Errorf("content mismatch for %s. got %q, want %q", uri, content, expected)
			}
		}
	})

	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := src.Fetch(ctx, "https://example.invalid/non-existent.json")
		if err == nil {
			t.Fatal("expected error for non-existent schema, got nil")
		}
		if !errors.Is(err, domain.ErrSchemaNotFound) {
			t.Errorf("expected ErrSchemaNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		uris, err := src.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing schemas: %v", err)
		}

		if len(uris) != len(setupData) {
			t.Errorf("expected %d schemas, got %d", len(setupData), len(uris))
		}

		lookup := make(map[string]bool)
		for _, uri := range uris {
			lookup[uri] = true
		}

		for uri := range setupData {
			if !lookup[uri] {
				t.Errorf("schema %s missing from list", uri)
			}
		}
	})
}
