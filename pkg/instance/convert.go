package instance

import (
	"encoding/json"

	"github.com/google/autoparse/pkg/coerce"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
)

// rule is what a conversion needs to know about a position: the schema
// values bind to and the data its format and type are read from. Untyped
// positions bind as objects when bind is set.
type rule struct {
	schema *schema.Descriptor
	data   *value.Object
	bind   bool
}

// propertyRule reads a declared property. A $ref property takes its type and
// format from the referenced schema.
func propertyRule(p *schema.Property) rule {
	if p.Ref() != "" && p.Schema != nil {
		return schemaRule(p.Schema)
	}
	return rule{schema: p.Schema, data: p.Data}
}

// schemaRule reads a whole schema, such as a $ref target or an
// additionalProperties schema.
func schemaRule(d *schema.Descriptor) rule {
	return rule{schema: d, data: d.Data(), bind: true}
}

func (r rule) kind() any {
	if t := r.data.Value("type"); t != nil {
		return t
	}
	if r.bind {
		return domain.TypeObject
	}
	return nil
}

type converter func(v any, schema *value.Object) (any, error)

var (
	importers = map[string]converter{
		domain.TypeString:  coerce.ImportString,
		domain.TypeBoolean: coerce.ImportBoolean,
		domain.TypeInteger: coerce.ImportInteger,
		domain.TypeNumber:  coerce.ImportNumber,
		domain.TypeAny:     coerce.ImportAny,
	}
	exporters = map[string]converter{
		domain.TypeString:  coerce.ExportString,
		domain.TypeBoolean: coerce.ExportBoolean,
		domain.TypeInteger: coerce.ExportInteger,
		domain.TypeNumber:  coerce.ExportNumber,
		domain.TypeAny:     coerce.ExportAny,
	}
)

func importValue(r rule, v any) (any, error) {
	switch t := r.kind().(type) {
	case string:
		return importKind(r, t, v)
	case []any:
		return importUnion(r, v)
	}
	return v, nil
}

func importKind(r rule, kind string, v any) (any, error) {
	switch kind {
	case domain.TypeArray:
		return importArray(r, v)
	case domain.TypeObject:
		return importObject(objectTarget(r.schema), v)
	case domain.TypeNull:
		return nil, nil
	}
	if conv, ok := importers[kind]; ok {
		return conv(v, r.data)
	}
	return v, nil
}

// importArray treats null as an empty list. Elements are bound to the items
// schema only when items is a $ref; inline items pass through as raw values.
func importArray(r rule, v any) (any, error) {
	if v == nil {
		return []any{}, nil
	}
	list, ok := value.AsSequence(v)
	if !ok {
		return nil, &domain.TypeMismatchError{Got: value.KindOf(v), Expected: domain.TypeArray, Value: v}
	}
	out := make([]any, len(list))
	copy(out, list)
	if r.schema == nil || r.schema.ItemsRef() == "" {
		return out, nil
	}

	items, err := r.schema.ResolveItems()
	if err != nil {
		return nil, err
	}
	for idx, item := range out {
		if out[idx], err = New(items, item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// objectTarget is the schema an "object" value binds to. A union member
// "object" carries no schema of its own, so it binds to the empty schema.
func objectTarget(d *schema.Descriptor) *schema.Descriptor {
	if d != nil && d.Instantiable() != nil {
		return schema.Empty()
	}
	return d
}

func importObject(d *schema.Descriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return New(d, v)
}

func importUnion(r rule, v any) (any, error) {
	m := r.schema.MatchType(v)
	switch {
	case m.Schema != nil:
		return importObject(m.Schema, v)
	case m.Type != "":
		return importKind(r, m.Type, v)
	}
	return v, nil
}

func exportValue(r rule, v any) (any, error) {
	switch t := r.kind().(type) {
	case string:
		return exportKind(r, t, v)
	case []any:
		return exportUnion(r, v)
	}
	return v, nil
}

func exportKind(r rule, kind string, v any) (any, error) {
	switch kind {
	case domain.TypeArray:
		return exportArray(v)
	case domain.TypeObject:
		return exportObject(v)
	case domain.TypeNull:
		return nil, nil
	}
	if conv, ok := exporters[kind]; ok {
		return conv(v, r.data)
	}
	return v, nil
}

// exportArray is shallow: nested instances are stored as they are.
func exportArray(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := value.AsSequence(v)
	if !ok {
		return nil, &domain.TypeMismatchError{Got: value.KindOf(v), Expected: domain.TypeArray, Value: v}
	}
	return list, nil
}

// exportObject is shallow: an instance yields its own map, not a converted copy.
func exportObject(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := value.AsMapping(v); ok {
		return m, nil
	}
	b, err := json.Marshal(v)
	if err == nil {
		if m, derr := decodeObject(b); derr == nil {
			return m, nil
		}
	}
	return nil, &domain.TypeMismatchError{Got: value.KindOf(v), Expected: domain.TypeObject, Value: v, Err: err}
}

func exportUnion(r rule, v any) (any, error) {
	m := r.schema.MatchType(v)
	switch {
	case m.Schema != nil:
		return exportObject(v)
	case m.Type != "":
		return exportKind(r, m.Type, v)
	}
	return v, nil
}

// bindDynamic stores a value assigned to a dynamic field of a schema with an
// additionalProperties schema: object schemas bind it as an instance, other
// schemas convert it like a declared property of that type.
func bindDynamic(d *schema.Descriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if d.Instantiable() == nil {
		if inst, ok := v.(*Instance); ok && inst.schema == d {
			return inst, nil
		}
		return New(d, v)
	}
	return exportValue(schemaRule(d), v)
}
