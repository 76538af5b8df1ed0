// Package instance wraps raw JSON-like data with a compiled schema.
//
// An Instance owns a mutable map. Get and Set reach the map directly;
// Property and SetProperty go through the schema's property table, converting
// between wire values and Go values (timestamps, URLs, byte slices, nested
// instances). Valid checks the data against the schema.
package instance

import (
	"encoding/json"
	"fmt"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
	"github.com/mitchellh/mapstructure"
)

// Instance is data bound to a descriptor. It is not safe for concurrent
// mutation; concurrent reads are fine.
type Instance struct {
	schema *schema.Descriptor
	data   map[string]any
}

// New binds data to d. A nil d binds to the empty schema.
//
// data may be nil, a map, a *value.Object, another *Instance (whose map is
// shared, not copied), JSON text as []byte, json.RawMessage or string, or any
// value that marshals to a JSON object. Descriptors whose root type is not
// "object" are rejected with domain.ErrNotInstantiable.
func New(d *schema.Descriptor, data any) (*Instance, error) {
	if d == nil {
		d = schema.Empty()
	}
	if err := d.Instantiable(); err != nil {
		return nil, err
	}
	m, err := mapping(data)
	if err != nil {
		return nil, err
	}
	return &Instance{schema: d, data: m}, nil
}

// FromJSON decodes a JSON object and binds it to d.
func FromJSON(d *schema.Descriptor, data []byte) (*Instance, error) {
	return New(d, json.RawMessage(data))
}

func mapping(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return make(map[string]any), nil
	case map[string]any:
		return v, nil
	case *Instance:
		return v.data, nil
	case *value.Object:
		return v.ToMap(), nil
	case []byte:
		return decodeObject(v)
	case json.RawMessage:
		return decodeObject(v)
	case string:
		return decodeObject([]byte(v))
	}
	if m, ok := value.AsMapping(data); ok {
		return m, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, &domain.TypeMismatchError{Got: value.KindOf(data), Expected: domain.TypeObject, Value: data, Err: err}
	}
	return decodeObject(b)
}

func decodeObject(b []byte) (map[string]any, error) {
	v, err := value.DecodeJSON(b)
	if err != nil {
		return nil, fmt.Errorf("decode instance data: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &domain.TypeMismatchError{Got: value.KindOf(v), Expected: domain.TypeObject, Value: v}
	}
	return m, nil
}

// Schema returns the bound descriptor.
func (i *Instance) Schema() *schema.Descriptor { return i.schema }

// Get returns the raw value stored under key.
func (i *Instance) Get(key string) any { return i.data[key] }

// Set stores v under key without any conversion.
func (i *Instance) Set(key string, v any) { i.data[key] = v }

// Has reports whether key holds a non-null value.
func (i *Instance) Has(key string) bool { return i.data[key] != nil }

// Delete removes key from the data.
func (i *Instance) Delete(key string) { delete(i.data, key) }

// Property returns the converted value of a property, addressed by accessor
// name ("given_name") or wire key ("givenName"). Absent values fall back to
// the declared default.
//
// Names the schema does not declare are dynamic fields: with unrestricted
// additional properties the raw value comes back as is; with an
// additionalProperties schema it is bound to that schema; when additional
// properties are disallowed the result is domain.ErrUnknownProperty.
func (i *Instance) Property(name string) (any, error) {
	if p, ok := i.schema.Lookup(name); ok {
		raw := i.data[p.Key]
		if raw == nil {
			raw = p.Default()
		}
		v, err := importValue(propertyRule(p), raw)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Key, err)
		}
		return v, nil
	}

	ap := i.schema.AdditionalProperties()
	if ap.Policy == schema.Disallowed {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProperty, name)
	}
	raw := i.data[i.dynamicKey(name)]
	if ap.Policy == schema.Unrestricted || raw == nil {
		return raw, nil
	}
	v, err := importValue(schemaRule(ap.Schema), raw)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	return v, nil
}

// SetProperty converts v back to its wire form and stores it. Naming and
// dynamic field rules follow Property.
func (i *Instance) SetProperty(name string, v any) error {
	if p, ok := i.schema.Lookup(name); ok {
		raw, err := exportValue(propertyRule(p), v)
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Key, err)
		}
		i.data[p.Key] = raw
		return nil
	}

	ap := i.schema.AdditionalProperties()
	key := i.dynamicKey(name)
	switch ap.Policy {
	case schema.Disallowed:
		return fmt.Errorf("%w: %q", domain.ErrUnknownProperty, name)
	case schema.Constrained:
		raw, err := bindDynamic(ap.Schema, v)
		if err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		i.data[key] = raw
	default:
		i.data[key] = v
	}
	return nil
}

// dynamicKey maps an accessor name to the wire key of a dynamic field: the
// camelCase form when present in the data, else the name as written.
func (i *Instance) dynamicKey(name string) string {
	if camel := schema.Camelize(name); i.data[camel] != nil {
		return camel
	}
	return name
}

// Valid reports whether the data conforms to the schema.
func (i *Instance) Valid() bool {
	return i.Validate() == nil
}

// Validate is Valid with a reason: the first failing key as a
// *domain.ValidationError, or an unresolved reference.
func (i *Instance) Validate() error {
	return i.schema.Check(i.data)
}

// ToMap returns the underlying data. Changes to the map are visible to the
// instance.
func (i *Instance) ToMap() map[string]any { return i.data }

// MarshalJSON encodes the data with keys in sorted order.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.data)
}

// ToJSON returns the data as JSON text.
func (i *Instance) ToJSON() (string, error) {
	b, err := i.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode copies the data into out, a pointer to a struct or map, matching
// fields by their json tags.
func (i *Instance) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(value.Plain(i.data))
}

func (i *Instance) String() string {
	b, err := i.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("instance of %s (%v)", i.schema, err)
	}
	return fmt.Sprintf("instance of %s %s", i.schema, b)
}
