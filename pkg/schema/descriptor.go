package schema

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/value"
)

// Policy governs data keys that no declared property covers.
type Policy int

const (
	// Unrestricted lets extra keys through without inspection.
	Unrestricted Policy = iota
	// Disallowed rejects any extra key.
	Disallowed
	// Constrained requires every extra value to validate against a schema.
	Constrained
)

func (p Policy) String() string {
	switch p {
	case Unrestricted:
		return "unrestricted"
	case Disallowed:
		return "disallowed"
	case Constrained:
		return "schema"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// AdditionalProperties is a descriptor's policy for undeclared keys.
type AdditionalProperties struct {
	Policy Policy
	Schema *Descriptor // Set when Policy is Constrained
}

// Dependency is what a present property demands of its owner: either sibling
// keys that must also be present, or a schema the property value itself must
// satisfy.
type Dependency struct {
	Keys   []string
	Schema *Descriptor
}

// Property is one declared member of an object schema.
type Property struct {
	Key    string        // Wire field name
	Name   string        // Identifier-safe accessor name
	Data   *value.Object // Property schema data, merged with the parent's
	Schema *Descriptor   // Compiled property schema, or the $ref target
}

// Required reports the legacy per-property "required": true flag.
func (p *Property) Required() bool { return p.Data.Bool("required") }

// Default returns the declared default value, if any.
func (p *Property) Default() any { return p.Data.Value("default") }

// Ref returns the property's $ref as written, or "".
func (p *Property) Ref() string { return p.Data.String("$ref") }

// member is one entry of a union "type" list.
type member struct {
	tag    string
	schema *Descriptor
}

// Descriptor is a compiled schema. Descriptors are immutable once compiled
// and safe to share between goroutines.
type Descriptor struct {
	uri  *url.URL // Registered identity; nil for anonymous schemas
	base *url.URL // Base that $ref members resolve against
	data *value.Object

	parent       *Descriptor
	properties   []*Property
	byKey        map[string]*Property
	keys         map[string]string
	additional   AdditionalProperties
	dependencies map[string]Dependency
	items        *Descriptor
	itemsRef     string
	union        []member

	registry *Registry
}

func newDescriptor(r *Registry, data *value.Object) *Descriptor {
	if data == nil {
		data = value.NewObject()
	}
	return &Descriptor{
		data:         data,
		byKey:        make(map[string]*Property),
		keys:         make(map[string]string),
		dependencies: make(map[string]Dependency),
		registry:     r,
	}
}

var empty = newDescriptor(nil, nil)

// Empty returns the universal empty schema. It accepts every object and
// lets every key through.
func Empty() *Descriptor { return empty }

// URI returns the canonical identifier, or nil for anonymous schemas.
func (d *Descriptor) URI() *url.URL { return d.uri }

// ID returns the canonical identifier as a string, or "".
func (d *Descriptor) ID() string { return uriKey(d.uri) }

// Base returns the URI that relative references resolve against.
func (d *Descriptor) Base() *url.URL { return d.base }

// Data returns the raw schema data. Callers must not modify it.
func (d *Descriptor) Data() *value.Object { return d.data }

// Registry returns the registry the descriptor was compiled in.
func (d *Descriptor) Registry() *Registry { return d.registry }

// Parent returns the schema named by "extends", if any.
func (d *Descriptor) Parent() *Descriptor { return d.parent }

// Description returns the schema's description.
func (d *Descriptor) Description() string { return d.data.String("description") }

// Type returns the declared "type": a string, a union list, or nil.
func (d *Descriptor) Type() any { return d.data.Value("type") }

// TypeName returns the declared type when it is a single tag, else "".
func (d *Descriptor) TypeName() string { return d.data.String("type") }

// IsUnion reports whether "type" lists several candidates.
func (d *Descriptor) IsUnion() bool {
	_, ok := d.Type().([]any)
	return ok
}

// Properties returns the declared properties in declaration order. Inherited
// properties are reachable through Parent and Lookup.
func (d *Descriptor) Properties() []*Property {
	out := make([]*Property, len(d.properties))
	copy(out, d.properties)
	return out
}

// Property finds a declared property by wire key, searching up the extends chain.
func (d *Descriptor) Property(key string) (*Property, bool) {
	for s := d; s != nil; s = s.parent {
		if p, ok := s.byKey[key]; ok {
			return p, true
		}
	}
	return nil, false
}

// Lookup finds a declared property by accessor name, falling back to the
// wire key, searching up the extends chain.
func (d *Descriptor) Lookup(name string) (*Property, bool) {
	for s := d; s != nil; s = s.parent {
		if key, ok := s.keys[name]; ok {
			return s.byKey[key], true
		}
		if p, ok := s.byKey[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// Keys maps accessor names to wire keys, including inherited properties.
func (d *Descriptor) Keys() map[string]string {
	out := make(map[string]string)
	for s := d; s != nil; s = s.parent {
		for name, key := range s.keys {
			if _, ok := out[name]; !ok {
				out[name] = key
			}
		}
	}
	return out
}

// Names returns the accessor names of every property, own ones first.
func (d *Descriptor) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for s := d; s != nil; s = s.parent {
		for _, p := range s.properties {
			if !seen[p.Key] {
				seen[p.Key] = true
				names = append(names, p.Name)
			}
		}
	}
	return names
}

// AdditionalProperties returns the policy for undeclared keys.
func (d *Descriptor) AdditionalProperties() AdditionalProperties { return d.additional }

// Dependencies returns the declared dependencies by property key.
func (d *Descriptor) Dependencies() map[string]Dependency {
	out := make(map[string]Dependency, len(d.dependencies))
	for k, v := range d.dependencies {
		out[k] = v
	}
	return out
}

// Items returns the compiled inline "items" schema. It is nil when items
// is absent or a $ref.
func (d *Descriptor) Items() *Descriptor { return d.items }

// ItemsRef returns the "items" $ref as written, or "".
func (d *Descriptor) ItemsRef() string { return d.itemsRef }

// ResolveItems returns the schema array elements follow: the $ref target
// when items is a reference, otherwise the inline items schema (possibly nil).
func (d *Descriptor) ResolveItems() (*Descriptor, error) {
	if d.itemsRef == "" {
		return d.items, nil
	}
	if d.registry == nil {
		return nil, &domain.ReferenceError{Ref: d.itemsRef}
	}
	return d.registry.Resolve(d.base, d.itemsRef)
}

// Instantiable fails when the root type is declared and is not "object".
func (d *Descriptor) Instantiable() error {
	t := d.Type()
	if t == nil || t == domain.TypeObject {
		return nil
	}
	return &domain.TypeMismatchError{Got: typeLabel(t), Expected: domain.TypeObject, Err: domain.ErrNotInstantiable}
}

func typeLabel(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			} else {
				tags = append(tags, "schema")
			}
		}
		return "[" + strings.Join(tags, ", ") + "]"
	}
	return fmt.Sprintf("%v", t)
}

func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString("schema")
	if d.uri != nil {
		fmt.Fprintf(&b, " %s", d.uri)
	} else {
		b.WriteString(" (anonymous)")
	}
	if desc := d.Description(); desc != "" {
		fmt.Fprintf(&b, " %q", desc)
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
