package tui

import (
	"bytes"
	"testing"

	"github.com/google/autoparse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(schema.Summary{
		URI:         "https://example.com/schemas/adult.json",
		Description: "An adult",
		Extends:     "https://example.com/schemas/person.json",
		Additional:  "unrestricted",
		Properties: []schema.PropertySummary{
			{Key: "age", Name: "age", Type: "integer"},
			{Key: "givenName", Name: "given_name", Type: "string", Required: true},
			{Key: "adr", Name: "adr", Type: "object", Ref: "address.json"},
			{Key: "url", Name: "url", Type: "string", Format: "url"},
		},
	})

	assert.Contains(t, md, "# https://example.com/schemas/adult.json")
	assert.Contains(t, md, "An adult")
	assert.Contains(t, md, "**Extends:** `https://example.com/schemas/person.json`")
	assert.Contains(t, md, "| `givenName` | `given_name` | `string` | yes |")
	assert.Contains(t, md, "| `adr` | `adr` | `object` → `address.json` |  |")
	assert.Contains(t, md, "`string` (url)")
}

func TestSummaryMarkdown_NoProperties(t *testing.T) {
	md := SummaryMarkdown(schema.Summary{Description: "Loose", Additional: "unrestricted"})
	assert.Contains(t, md, "# Loose")
	assert.Contains(t, md, "_No declared properties._")
}

func TestNewRenderer_Plain(t *testing.T) {
	out, err := NewRenderer(true)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}

func TestStatus(t *testing.T) {
	assert.Contains(t, Status(true, "valid"), "valid")
	assert.Contains(t, Status(false, "invalid"), "invalid")
}
