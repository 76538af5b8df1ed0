package loader_test

import (
	"context"
	"testing"

	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/adapters/memory"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/loader"
	"github.com/google/autoparse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSource(t *testing.T) *memory.Source {
	t.Helper()
	docs := make(map[string]string)
	for name, data := range testutils.Fixtures(t) {
		docs[testutils.FixtureURI(name)] = string(data)
	}
	return memory.NewSource(docs)
}

func TestLoad_CompilesDependenciesFirst(t *testing.T) {
	reg := schema.NewRegistry()
	l := loader.New(reg, fixtureSource(t))

	card, err := l.Load(context.Background(), testutils.FixtureURI("card.json"))
	require.NoError(t, err)
	require.NotNil(t, card)

	assert.ElementsMatch(t, []string{
		testutils.FixtureURI("address.json"),
		testutils.FixtureURI("geo.json"),
		testutils.FixtureURI("card.json"),
	}, reg.URIs())

	adr, ok := card.Property("adr")
	require.True(t, ok)
	address, _ := reg.Lookup(testutils.FixtureURI("address.json"))
	assert.Same(t, address, adr.Schema)
}

func TestLoad_Extends(t *testing.T) {
	reg := schema.NewRegistry()
	adult, err := loader.New(reg, fixtureSource(t)).Load(context.Background(), testutils.FixtureURI("adult.json"))
	require.NoError(t, err)

	person, ok := reg.Lookup(testutils.FixtureURI("person.json"))
	require.True(t, ok)
	assert.Same(t, person, adult.Parent())
	assert.True(t, adult.Validate(map[string]any{"name": "Ada", "age": 36}))
	assert.False(t, adult.Validate(map[string]any{"name": "Ada", "age": 12}))
}

func TestLoad_ItemsReferencesLoadAfterCompile(t *testing.T) {
	reg := schema.NewRegistry()
	list, err := loader.New(reg, fixtureSource(t)).Load(context.Background(), testutils.FixtureURI("file-list.json"))
	require.NoError(t, err)

	items, ok := list.Property("items")
	require.True(t, ok)
	file, err := items.Schema.ResolveItems()
	require.NoError(t, err)
	assert.Equal(t, testutils.FixtureURI("file.json"), file.URI().String())

	_, ok = reg.Lookup(testutils.FixtureURI("parent-reference.json"))
	assert.True(t, ok)
}

func TestLoad_ReturnsRegisteredSchema(t *testing.T) {
	reg := schema.NewRegistry()
	src := memory.NewSource(nil)
	geo, err := reg.Compile(testutils.Fixture(t, "geo.json"), testutils.FixtureURI("geo.json"))
	require.NoError(t, err)

	got, err := loader.New(reg, src).Load(context.Background(), testutils.FixtureURI("geo.json"))
	require.NoError(t, err)
	assert.Same(t, geo, got)
}

func TestLoad_NormalizesURI(t *testing.T) {
	reg := schema.NewRegistry()
	l := loader.New(reg, fixtureSource(t))

	d, err := l.Load(context.Background(), "HTTPS://Example.com:443/schemas/geo.json")
	require.NoError(t, err)
	assert.Equal(t, testutils.FixtureURI("geo.json"), d.URI().String())
}

func TestLoad_SelfReference(t *testing.T) {
	src := memory.NewSource(map[string]string{
		"https://example.com/tree.json": `{
			"type": "object",
			"properties": {
				"value": {"type": "integer"},
				"left": {"$ref": "tree.json"},
				"right": {"$ref": "https://example.com/tree.json"}
			}
		}`,
	})
	reg := schema.NewRegistry()

	tree, err := loader.New(reg, src).Load(context.Background(), "https://example.com/tree.json")
	require.NoError(t, err)
	left, ok := tree.Property("left")
	require.True(t, ok)
	assert.Same(t, tree, left.Schema)
}

func TestLoad_MutualReferenceFails(t *testing.T) {
	src := memory.NewSource(map[string]string{
		"https://example.com/a.json": `{"type": "object", "properties": {"b": {"$ref": "b.json"}}}`,
		"https://example.com/b.json": `{"type": "object", "properties": {"a": {"$ref": "a.json"}}}`,
	})
	reg := schema.NewRegistry()

	_, err := loader.New(reg, src).Load(context.Background(), "https://example.com/a.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference)
	assert.Zero(t, reg.Len())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		_, err := loader.New(schema.NewRegistry(), memory.NewSource(nil)).
			Load(context.Background(), "https://example.com/nope.json")
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})

	t.Run("missing dependency", func(t *testing.T) {
		src := memory.NewSource(map[string]string{
			testutils.FixtureURI("adult.json"): string(testutils.Fixture(t, "adult.json")),
		})
		reg := schema.NewRegistry()
		_, err := loader.New(reg, src).Load(context.Background(), testutils.FixtureURI("adult.json"))
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
		assert.Zero(t, reg.Len())
	})

	t.Run("malformed document", func(t *testing.T) {
		src := memory.NewSource(map[string]string{"https://example.com/bad.json": `{"type": `})
		_, err := loader.New(schema.NewRegistry(), src).Load(context.Background(), "https://example.com/bad.json")
		assert.Error(t, err)
	})

	t.Run("empty uri", func(t *testing.T) {
		_, err := loader.New(schema.NewRegistry(), memory.NewSource(nil)).Load(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loader.New(schema.NewRegistry(), fixtureSource(t)).Load(ctx, testutils.FixtureURI("geo.json"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoadAll(t *testing.T) {
	reg := schema.NewRegistry()
	all, err := loader.New(reg, fixtureSource(t)).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(testutils.DependencyOrder))
	assert.Equal(t, len(testutils.DependencyOrder), reg.Len())
}
