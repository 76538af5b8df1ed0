package ports

import "context"

// SchemaSource retrieves raw schema documents. The loader parses and
// compiles them; sources only move bytes.
type SchemaSource interface {
	// Fetch returns the document stored under uri.
	// Returns domain.ErrSchemaNotFound if there is none.
	Fetch(ctx context.Context, uri string) ([]byte, error)

	// List returns the URIs of every available document in sorted order.
	// This is used for preloading and introspection (e.g. 'autoparse serve').
	List(ctx context.Context) ([]string, error)
}

// SchemaStore is a SchemaSource that accepts new documents.
type SchemaStore interface {
	SchemaSource

	// Put stores doc under uri, replacing any previous document.
	Put(ctx context.Context, uri string, doc []byte) error

	// Delete removes the document stored under uri. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, uri string) error
}
