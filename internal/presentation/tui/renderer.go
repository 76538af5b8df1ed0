package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/autoparse/pkg/schema"
)

// NewRenderer returns a function that renders markdown using glamour.
// A plain renderer passes the markdown through untouched, for pipes and tests.
func NewRenderer(plain bool) func(string) (string, error) {
	if plain {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// SummaryMarkdown describes a schema as a markdown document with a
// property table.
func SummaryMarkdown(s schema.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(s))
	if s.Description != "" && s.URI != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Description)
	}
	if s.Type != "" {
		fmt.Fprintf(&b, "- **Type:** `%s`\n", s.Type)
	}
	if s.Extends != "" {
		fmt.Fprintf(&b, "- **Extends:** `%s`\n", s.Extends)
	}
	fmt.Fprintf(&b, "- **Additional properties:** %s\n\n", s.Additional)

	if len(s.Properties) == 0 {
		b.WriteString("_No declared properties._\n")
		return b.String()
	}

	b.WriteString("| Key | Accessor | Type | Required |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, p := range s.Properties {
		required := ""
		if p.Required {
			required = "yes"
		}
		fmt.Fprintf(&b, "| `%s` | `%s` | %s | %s |\n", p.Key, p.Name, propertyType(p), required)
	}
	return b.String()
}

func title(s schema.Summary) string {
	switch {
	case s.URI != "":
		return s.URI
	case s.Description != "":
		return s.Description
	}
	return "Anonymous schema"
}

func propertyType(p schema.PropertySummary) string {
	t := p.Type
	if t == "" {
		t = "any"
	}
	t = "`" + t + "`"
	if p.Format != "" {
		t += " (" + p.Format + ")"
	}
	if p.Ref != "" {
		t += " → `" + p.Ref + "`"
	}
	return t
}
