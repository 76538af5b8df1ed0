package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/adapters/memory"
	"github.com/google/autoparse/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *autoparse.Engine, *prometheus.Registry) {
	t.Helper()
	docs := make(map[string]string)
	for name, data := range testutils.Fixtures(t) {
		docs[testutils.FixtureURI(name)] = string(data)
	}
	eng := autoparse.New(autoparse.WithSource(memory.NewSource(docs)))
	reg := prometheus.NewRegistry()
	return NewHandler(eng, WithRegistry(reg)), eng, reg
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndInfo(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, w))

	w = do(h, http.MethodGet, "/info", "")
	info := decode[map[string]any](t, w)
	assert.Equal(t, "autoparse-http", info["app"])
	assert.Equal(t, autoparse.Version, info["version"])
}

func TestValidate(t *testing.T) {
	h, _, reg := newTestHandler(t)
	adult := testutils.FixtureURI("adult.json")
	target := "/validate?schema=" + url.QueryEscape(adult)

	w := do(h, http.MethodPost, target, `{"name": "Ada", "age": 36}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[ValidationResult](t, w)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error)

	w = do(h, http.MethodPost, target, `{"name": "Ada", "age": 12}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[ValidationResult](t, w)
	assert.False(t, res.Valid)
	assert.Equal(t, "age", res.Key)
	assert.Contains(t, res.Error, "at least 18")

	w = do(h, http.MethodPost, target, `["not", "an", "object"]`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[ValidationResult](t, w).Valid)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestValidate_Metrics(t *testing.T) {
	eng := autoparse.New()
	testutils.CompileAll[*schema.Descriptor](t, eng)
	reg := prometheus.NewRegistry()
	h := NewHandler(eng, WithRegistry(reg))

	geo := testutils.FixtureURI("geo.json")
	target := "/validate?schema=" + url.QueryEscape(geo)
	do(h, http.MethodPost, target, `{"latitude": 1, "longitude": 2}`)
	do(h, http.MethodPost, target, `{"latitude": 1, "longitude": 2}`)
	do(h, http.MethodPost, target, `{"latitude": "north"}`)

	w := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `autoparse_validations_total{result="valid",schema="`+geo+`"} 2`)
	assert.Contains(t, body, `autoparse_validations_total{result="invalid",schema="`+geo+`"} 1`)
	assert.Contains(t, body, "autoparse_validation_duration_seconds_count")
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.Observe("a.json", ResultError, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("a.json", ResultError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Validations.WithLabelValues("a.json", ResultValid)))
}

func TestValidate_Errors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"missing schema parameter", "/validate", `{}`, http.StatusBadRequest},
		{"malformed body", "/validate?schema=" + url.QueryEscape(testutils.FixtureURI("geo.json")), `{"latitude":`, http.StatusBadRequest},
		{"unknown schema", "/validate?schema=" + url.QueryEscape("https://example.com/nope.json"), `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[errorResponse](t, w).Error)
		})
	}
}

func TestValidate_UnknownSchemasShareOneSeries(t *testing.T) {
	eng := autoparse.New()
	reg := prometheus.NewRegistry()
	h := NewHandler(eng, WithRegistry(reg))

	for i := 0; i < 50; i++ {
		target := fmt.Sprintf("/validate?schema=%s", url.QueryEscape(fmt.Sprintf("http://x/%d", i)))
		w := do(h, http.MethodPost, target, `{}`)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	}

	series, err := testutil.GatherAndCount(reg, "autoparse_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	body := do(h, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `autoparse_validations_total{result="error",schema="unknown"} 50`)
	assert.NotContains(t, body, "http://x/")
}

func TestValidate_BodyErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)
	geo := "/validate?schema=" + url.QueryEscape(testutils.FixtureURI("geo.json"))

	tests := []struct {
		name   string
		body   func() io.Reader
		status int
	}{
		{"too large", func() io.Reader {
			return strings.NewReader(`"` + strings.Repeat("a", maxBodySize) + `"`)
		}, http.StatusRequestEntityTooLarge},
		{"broken reader", func() io.Reader {
			return iotest.ErrReader(errors.New("connection reset"))
		}, http.StatusBadRequest},
		{"truncated", func() io.Reader {
			return iotest.TimeoutReader(strings.NewReader(`{"latitude": 1, "longitude": 2}`))
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, target := range []string{geo, "/schemas?uri=" + url.QueryEscape("https://example.com/body.json")} {
				req := httptest.NewRequest(http.MethodPost, target, tt.body())
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				assert.Equal(t, tt.status, w.Code, "%s: %s", target, w.Body.String())
			}
		})
	}
}

func TestSchemas(t *testing.T) {
	h, eng, _ := newTestHandler(t)

	card := testutils.FixtureURI("card.json")
	w := do(h, http.MethodGet, "/schemas/"+url.PathEscape(card), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	raw := decode[map[string]any](t, w)
	assert.Equal(t, "object", raw["type"])
	assert.Len(t, eng.Schemas(), 3, "card loads address and geo")

	w = do(h, http.MethodGet, "/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]schema.Summary](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, testutils.FixtureURI("address.json"), list[0].URI)

	w = do(h, http.MethodGet, "/schemas/"+url.PathEscape("https://example.com/nope.json"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompileSchema(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	uri := "https://example.com/extra/point.json"

	w := do(h, http.MethodPost, "/schemas?uri="+url.QueryEscape(uri),
		`{"type": "object", "properties": {"x": {"type": "integer"}, "y": {"type": "integer"}}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	summary := decode[schema.Summary](t, w)
	assert.Equal(t, uri, summary.URI)
	assert.Len(t, summary.Properties, 2)

	_, ok := eng.Registry().Lookup(uri)
	assert.True(t, ok)

	w = do(h, http.MethodPost, "/schemas?uri="+url.QueryEscape("https://example.com/extra/broken.json"),
		`{"type": "object", "properties": {"p": {"$ref": "missing.json"}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(h, http.MethodPost, "/schemas", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodPost, "/schemas?uri="+url.QueryEscape(uri), `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOpenAPI(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	testutils.CompileAll[*schema.Descriptor](t, eng)

	w := do(h, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[map[string]any](t, w)
	assert.Equal(t, "3.0.3", doc["openapi"])
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "card")
	assert.Contains(t, schemas, "file-list")
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestHandler(t)
	w := do(h, http.MethodOptions, "/validate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
