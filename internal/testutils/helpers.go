package testutils

import (
	"embed"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

// FixtureBase is the URI fixtures are registered under in tests.
const FixtureBase = "https://example.com/schemas/"

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture returns the raw JSON of a schema fixture, e.g. "card.json".
// It fails the test immediately when the fixture does not exist.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	require.NoError(t, err, "Failed to read fixture %s", name)
	return data
}

// FixtureURI returns the canonical URI of a fixture.
func FixtureURI(name string) string {
	return FixtureBase + name
}

// Fixtures returns every fixture keyed by file name.
func Fixtures(t testing.TB) map[string][]byte {
	t.Helper()

	entries, err := fixtures.ReadDir("testdata")
	require.NoError(t, err)

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[e.Name()] = Fixture(t, e.Name())
	}
	return out
}

// DependencyOrder lists the fixtures so that every schema follows the
// schemas it extends or references.
var DependencyOrder = []string{
	"geo.json",
	"address.json",
	"person.json",
	"adult.json",
	"card.json",
	"calendar.json",
	"parent-reference.json",
	"file.json",
	"file-list.json",
}

// Compiler is satisfied by schema registries and the library facade.
type Compiler[T any] interface {
	Compile(data any, uri string) (T, error)
}

// CompileAll compiles every fixture into c in dependency order and returns
// the results keyed by file name.
func CompileAll[T any](t testing.TB, c Compiler[T]) map[string]T {
	t.Helper()

	out := make(map[string]T, len(DependencyOrder))
	for _, name := range DependencyOrder {
		d, err := c.Compile(Fixture(t, name), FixtureURI(name))
		require.NoError(t, err, "Failed to compile fixture %s", name)
		out[name] = d
	}
	return out
}
