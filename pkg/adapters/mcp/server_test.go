package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng := autoparse.New()
	testutils.CompileAll[*schema.Descriptor](t, eng)
	return NewServer(eng)
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	adult := testutils.FixtureURI("adult.json")

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema": adult,
		"data":   `{"name": "Ada", "age": 36}`,
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema": adult,
		"data":   `{"name": "Ada", "age": 130}`,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "age", res.Key)

	res, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema": adult,
		"data":   `"text"`,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestHandleValidate_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"data": `{}`})
	assert.Error(t, err)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema": testutils.FixtureURI("geo.json"),
		"data":   `{"latitude": `,
	})
	assert.Error(t, err)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"schema": "https://example.com/missing.json",
		"data":   `{}`,
	})
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestHandleDescribe(t *testing.T) {
	s := newTestServer(t)

	summary, err := s.handleDescribe(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"schema": testutils.FixtureURI("adult.json"),
	})
	require.NoError(t, err)
	assert.Equal(t, testutils.FixtureURI("person.json"), summary.Extends)
	names := make([]string, 0, len(summary.Properties))
	for _, p := range summary.Properties {
		names = append(names, p.Key)
	}
	assert.ElementsMatch(t, []string{"name", "age"}, names)

	_, err = s.handleDescribe(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestReadSchemas(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readSchemas(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SchemasURI, text.URI)

	var summaries []schema.Summary
	require.NoError(t, json.Unmarshal([]byte(text.Text), &summaries))
	assert.Len(t, summaries, len(testutils.DependencyOrder))
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(t)

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	names := make([]string, 0, len(out.Result.Tools))
	for _, tool := range out.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"validate", "describe"}, names)
}
