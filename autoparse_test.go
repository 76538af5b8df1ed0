package autoparse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/adapters/memory"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureEngine(t *testing.T) *autoparse.Engine {
	t.Helper()
	docs := make(map[string]string)
	for name, data := range testutils.Fixtures(t) {
		docs[testutils.FixtureURI(name)] = string(data)
	}
	return autoparse.New(autoparse.WithSource(memory.NewSource(docs)))
}

func TestEngine_CompileWithoutSource(t *testing.T) {
	eng := autoparse.New()

	geo, err := eng.Compile(testutils.Fixture(t, "geo.json"), testutils.FixtureURI("geo.json"))
	require.NoError(t, err)

	got, err := eng.Load(context.Background(), testutils.FixtureURI("geo.json"))
	require.NoError(t, err)
	assert.Same(t, geo, got)

	_, err = eng.Load(context.Background(), testutils.FixtureURI("card.json"))
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestEngine_ParseLoadsFromSource(t *testing.T) {
	eng := fixtureEngine(t)
	ctx := context.Background()

	card, err := eng.Parse(ctx, testutils.FixtureURI("card.json"), map[string]any{
		"givenName":  "Robert",
		"familyName": "Smith",
		"adr":        map[string]any{"locality": "Mountain View", "region": "CA", "country-name": "USA"},
	})
	require.NoError(t, err)

	name, err := card.Property("given_name")
	require.NoError(t, err)
	assert.Equal(t, "Robert", name)
	assert.True(t, card.Valid())

	uris := make([]string, 0)
	for _, d := range eng.Schemas() {
		uris = append(uris, d.ID())
	}
	assert.Equal(t, []string{
		testutils.FixtureURI("address.json"),
		testutils.FixtureURI("card.json"),
		testutils.FixtureURI("geo.json"),
	}, uris)
}

func TestEngine_Validate(t *testing.T) {
	eng := fixtureEngine(t)
	ctx := context.Background()
	uri := testutils.FixtureURI("adult.json")

	assert.NoError(t, eng.Validate(ctx, uri, `{"name": "Ada", "age": 36}`))

	err := eng.Validate(ctx, uri, map[string]any{"name": "Ada", "age": 12})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "age", verr.Key)

	err = eng.Validate(ctx, uri, `[1, 2]`)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestEngine_Preload(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		eng := fixtureEngine(t)
		require.NoError(t, eng.Preload(context.Background(), testutils.FixtureURI("adult.json")))
		assert.Equal(t, 2, eng.Registry().Len())
	})

	t.Run("everything listed", func(t *testing.T) {
		eng := fixtureEngine(t)
		require.NoError(t, eng.Preload(context.Background()))
		assert.Equal(t, len(testutils.DependencyOrder), eng.Registry().Len())
	})

	t.Run("no source", func(t *testing.T) {
		assert.NoError(t, autoparse.New().Preload(context.Background()))
	})
}

func TestEngine_SharedRegistry(t *testing.T) {
	reg := schema.NewRegistry()
	_, err := reg.Compile(testutils.Fixture(t, "geo.json"), testutils.FixtureURI("geo.json"))
	require.NoError(t, err)

	eng := autoparse.New(autoparse.WithRegistry(reg))
	assert.Same(t, reg, eng.Registry())
	assert.Len(t, eng.Schemas(), 1)
	assert.Nil(t, eng.Source())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, autoparse.Version)
}
