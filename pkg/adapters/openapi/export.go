// Package openapi exports compiled schemas as OpenAPI 3 component schemas.
//
// Every registered schema becomes one entry under components/schemas. $ref
// properties, items references and extends parents point at those entries,
// so recursive schemas export without unrolling.
package openapi

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

const componentPrefix = "#/components/schemas/"

// Exporter converts descriptors into component schemas. It is not safe for
// concurrent use.
type Exporter struct {
	names      map[*schema.Descriptor]string
	taken      map[string]bool
	pending    []*schema.Descriptor
	components openapi3.Schemas
}

// NewExporter creates an empty exporter.
func NewExporter() *Exporter {
	return &Exporter{
		names:      make(map[*schema.Descriptor]string),
		taken:      make(map[string]bool),
		components: make(openapi3.Schemas),
	}
}

// Add exports d, and every registered schema it reaches, as components.
// It returns the component name of d. Anonymous descriptors are exported
// under a name derived from their description.
func (e *Exporter) Add(d *schema.Descriptor) string {
	name := e.name(d)
	e.drain()
	return name
}

// Schemas returns the components exported so far.
func (e *Exporter) Schemas() openapi3.Schemas {
	return e.components
}

// Document wraps the exported components of ds in an OpenAPI document.
func Document(ds []*schema.Descriptor, title, version string) *openapi3.T {
	e := NewExporter()
	for _, d := range ds {
		e.Add(d)
	}
	return &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: e.Schemas(),
		},
	}
}

// ComponentName derives a component name from a schema URI: the last path
// segment without its extension, with anything but letters, digits, "-",
// "_" and "." replaced by "_".
func ComponentName(uri string) string {
	base := path.Base(strings.TrimRight(uri, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, base)
	if clean == "" || clean == "." {
		return "schema"
	}
	return clean
}

// name reserves a unique component name for d and queues it for export.
func (e *Exporter) name(d *schema.Descriptor) string {
	if n, ok := e.names[d]; ok {
		return n
	}
	var n string
	if d.URI() != nil {
		n = ComponentName(d.URI().Path)
	} else {
		n = ComponentName(schema.Underscore(d.Description()))
	}
	if e.taken[n] {
		for i := 2; ; i++ {
			if c := n + "_" + strconv.Itoa(i); !e.taken[c] {
				n = c
				break
			}
		}
	}
	e.taken[n] = true
	e.names[d] = n
	e.pending = append(e.pending, d)
	return n
}

func (e *Exporter) drain() {
	for len(e.pending) > 0 {
		d := e.pending[0]
		e.pending = e.pending[1:]
		e.components[e.names[d]] = openapi3.NewSchemaRef("", e.convert(d))
	}
}

// ref points at the component of a registered schema and inlines anonymous ones.
func (e *Exporter) ref(d *schema.Descriptor) *openapi3.SchemaRef {
	if d == nil {
		return openapi3.NewSchemaRef("", openapi3.NewSchema())
	}
	if d.URI() == nil {
		return openapi3.NewSchemaRef("", e.convert(d))
	}
	return openapi3.NewSchemaRef(componentPrefix+e.name(d), nil)
}

// effectiveType is the declared type, inherited from the extends chain when
// the schema itself declares none.
func effectiveType(d *schema.Descriptor) any {
	for s := d; s != nil; s = s.Parent() {
		if t := s.Type(); t != nil {
			return t
		}
	}
	if len(d.Properties()) > 0 {
		return domain.TypeObject
	}
	return nil
}

func (e *Exporter) convert(d *schema.Descriptor) *openapi3.Schema {
	var s *openapi3.Schema
	switch t := effectiveType(d).(type) {
	case string:
		s = e.typed(d, t)
	case []any:
		s = e.union(d, t)
	default:
		s = openapi3.NewSchema()
	}
	s.Description = d.Description()
	return s
}

func (e *Exporter) typed(d *schema.Descriptor, tag string) *openapi3.Schema {
	data := d.Data()
	var s *openapi3.Schema
	switch tag {
	case domain.TypeObject:
		return e.object(d)
	case domain.TypeArray:
		s = openapi3.NewArraySchema()
		items, err := d.ResolveItems()
		if err == nil && items != nil {
			s.Items = e.ref(items)
		} else {
			s.Items = openapi3.NewSchemaRef("", openapi3.NewSchema())
		}
	case domain.TypeString:
		s = openapi3.NewStringSchema()
	case domain.TypeInteger:
		s = openapi3.NewIntegerSchema()
	case domain.TypeNumber:
		s = openapi3.NewFloat64Schema()
	case domain.TypeBoolean:
		s = openapi3.NewBoolSchema()
	case domain.TypeNull:
		s = openapi3.NewSchema().WithNullable()
	default:
		s = openapi3.NewSchema()
	}
	annotate(s, data)
	return s
}

func annotate(s *openapi3.Schema, data *value.Object) {
	if f := data.String("format"); f != "" {
		s.Format = f
	}
	if lo, ok := value.AsFloat(data.Value("minimum")); ok {
		s.WithMin(lo)
	}
	if hi, ok := value.AsFloat(data.Value("maximum")); ok {
		s.WithMax(hi)
	}
	if def := data.Value("default"); def != nil {
		s.Default = value.Plain(def)
	}
	if enum, ok := value.AsSequence(data.Value("enum")); ok {
		s.Enum = value.Plain(enum).([]any)
	}
}

func (e *Exporter) object(d *schema.Descriptor) *openapi3.Schema {
	s := openapi3.NewObjectSchema()

	seen := make(map[string]bool)
	for owner := d; owner != nil; owner = owner.Parent() {
		for _, p := range owner.Properties() {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			if p.Required() {
				s.Required = append(s.Required, p.Key)
			}
			if p.Ref() != "" {
				s.Properties[p.Key] = e.ref(p.Schema)
				continue
			}
			s.Properties[p.Key] = openapi3.NewSchemaRef("", e.convert(p.Schema))
		}
	}

	ap := d.AdditionalProperties()
	switch ap.Policy {
	case schema.Disallowed:
		has := false
		s.AdditionalProperties = openapi3.AdditionalProperties{Has: &has}
	case schema.Constrained:
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: e.ref(ap.Schema)}
	}
	return s
}

// union exports a type list as oneOf. Referenced members point at their
// components; inline schema members export as plain objects.
func (e *Exporter) union(d *schema.Descriptor, members []any) *openapi3.Schema {
	s := openapi3.NewSchema()
	for _, m := range members {
		switch v := m.(type) {
		case string:
			member := e.typed(d, v)
			s.OneOf = append(s.OneOf, openapi3.NewSchemaRef("", member))
		default:
			s.OneOf = append(s.OneOf, e.member(d, v))
		}
	}
	return s
}

func (e *Exporter) member(d *schema.Descriptor, m any) *openapi3.SchemaRef {
	obj, ok := value.AsObject(m)
	if ok && d.Registry() != nil {
		if ref := obj.String("$ref"); ref != "" {
			if target, err := d.Registry().Resolve(d.Base(), ref); err == nil {
				return e.ref(target)
			}
		}
	}
	return openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
}
