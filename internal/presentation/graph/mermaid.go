package graph

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
)

// Overlay marks schemas to highlight on the graph.
type Overlay struct {
	Focus string // URI of the schema the graph was requested for
}

type edge struct {
	from, to, label string
	inherits        bool
}

// GenerateMermaid produces a Mermaid flowchart of the references between
// schemas. Node shapes follow the root type:
// - Object: [Rectangle]
// - Array: [/Parallelogram/]
// - Union: {{Hexagon}}
// - Other: (Rounded)
// Extends is drawn dotted, $ref and items references solid, labelled with
// the property key ("key[]" for array items, "*" for additionalProperties).
func GenerateMermaid(descriptors []*schema.Descriptor, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]bool)
	var edges []edge
	for _, d := range descriptors {
		if d.ID() == "" {
			continue
		}
		ids[d.ID()] = true
		edges = append(edges, references(d)...)
	}
	// Targets that were never loaded still get a node.
	for _, e := range edges {
		ids[e.to] = true
	}

	shapes := make(map[string]*schema.Descriptor, len(descriptors))
	for _, d := range descriptors {
		shapes[d.ID()] = d
	}
	for _, id := range sortedIDs(ids) {
		opener, closer := shape(shapes[id])
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, label(id), closer)
	}

	for _, e := range edges {
		arrow := fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(e.label, "\"", "'"))
		if e.inherits {
			arrow = "-. extends .->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.from), arrow, sanitizeMermaidID(e.to))
	}

	if overlay != nil && overlay.Focus != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s focus;\n", sanitizeMermaidID(overlay.Focus))
	}

	return sb.String()
}

func references(d *schema.Descriptor) []edge {
	var out []edge
	if p := d.Parent(); p != nil && p.ID() != "" {
		out = append(out, edge{from: d.ID(), to: p.ID(), inherits: true})
	}
	for _, p := range d.Properties() {
		switch {
		case p.Ref() != "":
			out = append(out, edge{from: d.ID(), to: target(d, p.Schema, p.Ref()), label: p.Key})
		case p.Schema != nil && p.Schema.ItemsRef() != "":
			out = append(out, edge{from: d.ID(), to: itemsTarget(p.Schema), label: p.Key + "[]"})
		}
	}
	if d.ItemsRef() != "" {
		out = append(out, edge{from: d.ID(), to: itemsTarget(d), label: "items"})
	}
	if ap := d.AdditionalProperties(); ap.Policy == schema.Constrained && ap.Schema.ID() != "" && ap.Schema != d {
		out = append(out, edge{from: d.ID(), to: ap.Schema.ID(), label: "*"})
	}
	return out
}

// target names the schema a reference points at, falling back to the
// reference resolved against d when it was never compiled.
func target(d, resolved *schema.Descriptor, ref string) string {
	if resolved != nil && resolved.ID() != "" {
		return resolved.ID()
	}
	if u, err := schema.ResolveURI(d.Base(), ref); err == nil {
		return u.String()
	}
	return ref
}

func itemsTarget(d *schema.Descriptor) string {
	items, err := d.ResolveItems()
	if err != nil {
		items = nil
	}
	return target(d, items, d.ItemsRef())
}

func shape(d *schema.Descriptor) (string, string) {
	if d == nil {
		return "(", ")"
	}
	switch {
	case d.IsUnion():
		return "{{", "}}"
	case d.Type() == nil || d.Type() == domain.TypeObject:
		return "[", "]"
	case d.Type() == domain.TypeArray:
		return "[/", "/]"
	}
	return "(", ")"
}

// label shortens a URI to its last path segment.
func label(id string) string {
	if base := path.Base(strings.TrimSuffix(id, "/")); base != "." && base != "/" {
		return base
	}
	return id
}

func sortedIDs(ids map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sanitizeMermaidID(id string) string {
	if i := strings.Index(id, "://"); i >= 0 {
		id = id[i+3:]
	}
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", "#", "_")
	return r.Replace(id)
}
