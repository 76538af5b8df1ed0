package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/config"
	"github.com/google/autoparse/internal/logging"
	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureConfig writes every fixture into a temp schema directory.
func fixtureConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, data := range testutils.Fixtures(t) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	cfg := config.Default()
	cfg.SchemaDir = dir
	cfg.SchemaBase = testutils.FixtureBase
	return cfg
}

func fixtureEngine(t *testing.T) (*autoparse.Engine, config.Config) {
	t.Helper()
	cfg := fixtureConfig(t)
	eng, cleanup, err := CreateEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return eng, cfg
}

func TestCreateEngine_UnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "ftp"
	_, cleanup, err := CreateEngine(cfg, logging.NewNop())
	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}

func TestCreateEngine_Redis(t *testing.T) {
	cfg := config.Default()
	cfg.Source = config.SourceRedis
	cfg.Redis.TTL = time.Minute
	eng, cleanup, err := CreateEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, eng.Source())
}

func TestResolveSchemaURI(t *testing.T) {
	cfg := config.Default()
	cfg.SchemaBase = "https://example.com/schemas"

	tests := map[string]string{
		"card.json":                         "https://example.com/schemas/card.json",
		"nested/geo.json":                   "https://example.com/schemas/nested/geo.json",
		"https://other.example.com/a.json":  "https://other.example.com/a.json",
		"file:///tmp/schemas/calendar.json": "file:///tmp/schemas/calendar.json",
	}
	for in, want := range tests {
		got, err := ResolveSchemaURI(cfg, in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := ResolveSchemaURI(config.Default(), "card.json")
	require.NoError(t, err)
	assert.Equal(t, "card.json", got)
}

func TestValidate(t *testing.T) {
	eng, cfg := fixtureEngine(t)
	ctx := context.Background()
	uri, err := ResolveSchemaURI(cfg, "adult.json")
	require.NoError(t, err)

	report, err := Validate(ctx, eng, uri, []byte(`{"name": "Ada", "age": 36}`))
	require.NoError(t, err)
	assert.True(t, report.Valid)

	report, err = Validate(ctx, eng, uri, []byte(`{"name": "Ada", "age": 3}`))
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "age", report.Key)

	_, err = Validate(ctx, eng, uri, []byte(`{`))
	assert.Error(t, err)

	_, err = Validate(ctx, eng, testutils.FixtureURI("missing.json"), []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestValidate_RelativeNamesWithoutBase(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.SchemaBase = ""
	eng, cleanup, err := CreateEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	report, err := Validate(context.Background(), eng, "card.json",
		[]byte(`{"givenName": "Ada", "familyName": "Lovelace", "geo": {"latitude": 51.5, "longitude": -0.1}}`))
	require.NoError(t, err)
	assert.True(t, report.Valid, report.Error)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	report := ValidationReport{Schema: "geo.json", Valid: false, Key: "latitude", Error: `field "latitude": is required`}

	require.NoError(t, PrintReport(&buf, report, true))
	var decoded ValidationReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report, decoded)

	buf.Reset()
	require.NoError(t, PrintReport(&buf, report, false))
	assert.Contains(t, buf.String(), "is required")

	buf.Reset()
	require.NoError(t, PrintReport(&buf, ValidationReport{Schema: "geo.json", Valid: true}, false))
	assert.Contains(t, buf.String(), "valid against geo.json")
}

func TestDescribe(t *testing.T) {
	eng, _ := fixtureEngine(t)
	var buf bytes.Buffer

	require.NoError(t, Describe(context.Background(), eng, testutils.FixtureURI("card.json"), &buf, true))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# "+testutils.FixtureURI("card.json")))
	assert.Contains(t, out, "| `givenName` | `given_name` | `string` | yes |")
	assert.Contains(t, out, "address.json")

	err := Describe(context.Background(), eng, testutils.FixtureURI("missing.json"), &buf, true)
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestList(t *testing.T) {
	eng, _ := fixtureEngine(t)
	var buf bytes.Buffer

	require.NoError(t, List(context.Background(), eng, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(testutils.DependencyOrder))
	assert.Contains(t, lines, testutils.FixtureURI("file-list.json"))
}

func TestGraph(t *testing.T) {
	t.Run("Focused", func(t *testing.T) {
		eng, _ := fixtureEngine(t)
		var buf bytes.Buffer

		require.NoError(t, Graph(context.Background(), eng, testutils.FixtureURI("card.json"), &buf))
		out := buf.String()
		assert.Contains(t, out, `example_com_schemas_card_json -- "adr" --> example_com_schemas_address_json`)
		assert.Contains(t, out, "class example_com_schemas_card_json focus;")
		assert.NotContains(t, out, "file_list_json")
	})

	t.Run("Everything", func(t *testing.T) {
		eng, _ := fixtureEngine(t)
		var buf bytes.Buffer

		require.NoError(t, Graph(context.Background(), eng, "", &buf))
		out := buf.String()
		assert.Contains(t, out, `example_com_schemas_file_list_json -- "items[]" --> example_com_schemas_file_json`)
		assert.NotContains(t, out, "Overlay Styles")
	})

	t.Run("Missing Schema", func(t *testing.T) {
		eng, _ := fixtureEngine(t)
		err := Graph(context.Background(), eng, testutils.FixtureURI("nope.json"), &bytes.Buffer{})
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})
}

func TestServe_StopsOnCancel(t *testing.T) {
	eng, cfg := fixtureEngine(t)
	cfg.HTTP.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, eng, cfg, logging.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	eng, cfg := fixtureEngine(t)
	cfg.MCP.Transport = "carrier-pigeon"
	assert.Error(t, ServeMCP(context.Background(), eng, cfg, logging.NewNop()))
}

func TestReadData(t *testing.T) {
	data, err := ReadData("-", strings.NewReader(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))
	data, err = ReadData(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	_, err = ReadData(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}

func TestCreateLogger(t *testing.T) {
	logger, err := CreateLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = CreateLogger("chatty")
	assert.Error(t, err)
}
