package ports

import (
	"context"
	"testing"
	"time"

	"github.com/google/autoparse/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSchemaStoreContract runs a suite of tests to verify that a SchemaStore
// implementation adheres to the defined interface contract.
func RunSchemaStoreContract(t *testing.T, store SchemaStore) {
	ctx := context.Background()
	uri := "https://example.com/contract/" + time.Now().Format("20060102150405") + ".json"
	doc := []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`)

	t.Run("Put and Fetch", func(t *testing.T) {
		err := store.Put(ctx, uri, doc)
		require.NoError(t, err, "Put should not return error")

		fetched, err := store.Fetch(ctx, uri)
		require.NoError(t, err, "Fetch should not return error")
		assert.Equal(t, string(doc), string(fetched))
	})

	t.Run("Put Replaces", func(t *testing.T) {
		replacement := []byte(`{"type":"object"}`)
		require.NoError(t, store.Put(ctx, uri, replacement))

		fetched, err := store.Fetch(ctx, uri)
		require.NoError(t, err)
		assert.Equal(t, string(replacement), string(fetched))
	})

	t.Run("Fetch Non-Existent", func(t *testing.T) {
		_, err := store.Fetch(ctx, uri+".missing")
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, uri, doc))

		err := store.Delete(ctx, uri)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Fetch(ctx, uri)
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound, "Fetch after Delete should return ErrSchemaNotFound")

		assert.NoError(t, store.Delete(ctx, uri), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		uri1 := uri + "-1"
		uri2 := uri + "-2"
		_ = store.Put(ctx, uri2, doc)
		_ = store.Put(ctx, uri1, doc)

		defer func() {
			_ = store.Delete(ctx, uri1)
			_ = store.Delete(ctx, uri2)
		}()

		uris, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, uris, uri1)
		assert.Contains(t, uris, uri2)
		assert.IsNonDecreasing(t, uris, "List is sorted")
	})
}
