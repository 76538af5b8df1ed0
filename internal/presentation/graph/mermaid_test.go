package graph_test

import (
	"testing"

	"github.com/google/autoparse/internal/presentation/graph"
	"github.com/google/autoparse/internal/testutils"
	"github.com/google/autoparse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDescriptors(t *testing.T) []*schema.Descriptor {
	reg := schema.NewRegistry()
	compiled := testutils.CompileAll[*schema.Descriptor](t, reg)
	out := make([]*schema.Descriptor, 0, len(compiled))
	for _, d := range compiled {
		out = append(out, d)
	}
	return out
}

func TestGenerateMermaid_Fixtures(t *testing.T) {
	out := graph.GenerateMermaid(fixtureDescriptors(t), nil)

	tests := []struct {
		name     string
		contains string
	}{
		{"Header", "graph TD\n"},
		{"Node Label", `example_com_schemas_card_json["card.json"]`},
		{"Property Reference", `example_com_schemas_card_json -- "adr" --> example_com_schemas_address_json`},
		{"Second Reference", `example_com_schemas_card_json -- "geo" --> example_com_schemas_geo_json`},
		{"Extends", `example_com_schemas_adult_json -. extends .-> example_com_schemas_person_json`},
		{"Items Reference", `example_com_schemas_file_list_json -- "items[]" --> example_com_schemas_file_json`},
		{"Deferred Items Reference", `example_com_schemas_file_json -- "parents[]" --> example_com_schemas_parent_reference_json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}
	assert.NotContains(t, out, "Overlay Styles")
}

func TestGenerateMermaid_Deterministic(t *testing.T) {
	ds := fixtureDescriptors(t)
	first := graph.GenerateMermaid(ds, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, graph.GenerateMermaid(ds, nil))
	}
}

func TestGenerateMermaid_UnloadedTarget(t *testing.T) {
	reg := schema.NewRegistry()
	d, err := reg.Compile([]byte(`{"type": "array", "items": {"$ref": "missing.json"}}`), "https://example.com/list.json")
	require.NoError(t, err)

	out := graph.GenerateMermaid([]*schema.Descriptor{d}, nil)
	assert.Contains(t, out, `example_com_list_json[/"list.json"/]`)
	assert.Contains(t, out, `example_com_missing_json("missing.json")`)
	assert.Contains(t, out, `example_com_list_json -- "items" --> example_com_missing_json`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(fixtureDescriptors(t), &graph.Overlay{Focus: testutils.FixtureURI("card.json")})

	assert.Contains(t, out, "%% Overlay Styles")
	assert.Contains(t, out, "classDef focus")
	assert.Contains(t, out, "class example_com_schemas_card_json focus;")
}

func TestGenerateMermaid_SkipsAnonymous(t *testing.T) {
	reg := schema.NewRegistry()
	d, err := reg.Compile([]byte(`{"type": "object"}`), "")
	require.NoError(t, err)

	assert.Equal(t, "graph TD\n", graph.GenerateMermaid([]*schema.Descriptor{d}, nil))
}
