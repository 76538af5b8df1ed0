package schema

import (
	"strconv"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/value"
)

// Validatable is implemented by values that validate against their own
// schema, such as instances nested inside raw data.
type Validatable interface {
	Valid() bool
}

// Validate reports whether v, an object, conforms to the schema. Failures
// are ordinary results, never panics.
func (d *Descriptor) Validate(v any) bool {
	return d.Check(v) == nil
}

// Check validates v like Validate and describes the first failure. Data
// problems come back as *domain.ValidationError; a reference that cannot be
// resolved comes back as a *domain.ReferenceError.
func (d *Descriptor) Check(v any) error {
	data, ok := value.AsMapping(v)
	if !ok {
		return invalidf(v, "expected object, got %s", value.KindOf(v))
	}
	return d.checkObject(data)
}

// CheckValue validates a single property value against the schema's type
// rules. A nil value passes unless required is set.
func (d *Descriptor) CheckValue(v any, required bool) error {
	return d.checkValue(v, required)
}

func (d *Descriptor) checkObject(data map[string]any) error {
	// Null values count as absent, for additional keys as for declared ones.
	unvalidated := make(map[string]any, len(data))
	for k, v := range data {
		if v != nil {
			unvalidated[k] = v
		}
	}

	for _, p := range d.properties {
		v := data[p.Key]
		delete(unvalidated, p.Key)

		if err := p.Schema.checkValue(v, p.Required()); err != nil {
			return atKey(p.Key, err)
		}
		if v == nil {
			// Omitted optional property: its dependencies do not apply.
			continue
		}

		dep, ok := d.dependencies[p.Key]
		if !ok {
			continue
		}
		for _, sibling := range dep.Keys {
			if data[sibling] == nil {
				return atKey(p.Key, invalidf(v, "requires %q", sibling))
			}
		}
		if dep.Schema != nil {
			if err := dep.Schema.checkInstance(v); err != nil {
				return atKey(p.Key, err)
			}
		}
	}

	// Inherited properties are declared too.
	for s := d.parent; s != nil; s = s.parent {
		for _, p := range s.properties {
			delete(unvalidated, p.Key)
		}
	}

	switch d.additional.Policy {
	case Disallowed:
		if len(unvalidated) > 0 {
			key := sortedKeys(unvalidated)[0]
			return atKey(key, invalid("additional properties are not allowed", unvalidated[key]))
		}
	case Constrained:
		for _, key := range sortedKeys(unvalidated) {
			if err := d.additional.Schema.checkInstance(unvalidated[key]); err != nil {
				return atKey(key, err)
			}
		}
	}

	if d.parent != nil {
		return d.parent.checkObject(data)
	}
	return nil
}

// checkInstance validates v as if it were wrapped in an instance of d:
// objects get the full structural check, other values the type rules.
func (d *Descriptor) checkInstance(v any) error {
	if d.Instantiable() == nil {
		if inst, ok := v.(Validatable); ok {
			if !inst.Valid() {
				return invalid("nested instance is invalid", v)
			}
			return nil
		}
		if data, ok := value.AsMapping(v); ok {
			return d.checkObject(data)
		}
	}
	return d.checkValue(v, false)
}

func (d *Descriptor) checkValue(v any, required bool) error {
	if v == nil {
		if required {
			return invalid("is required", nil)
		}
		return nil
	}

	switch t := d.Type().(type) {
	case string:
		return d.checkType(t, v)
	case []any:
		for _, m := range d.union {
			var err error
			if m.schema != nil {
				err = m.schema.checkInstance(v)
			} else {
				err = d.checkType(m.tag, v)
			}
			if err == nil {
				return nil
			}
			if !IsValidationFailure(err) {
				return err
			}
		}
		return invalidf(v, "matches none of %s", typeLabel(t))
	}
	// No type, or "any": anything goes.
	return nil
}

func (d *Descriptor) checkType(tag string, v any) error {
	switch tag {
	case domain.TypeString:
		if !value.IsString(v) {
			return invalidf(v, "expected string, got %s", value.KindOf(v))
		}
	case domain.TypeBoolean:
		if !value.IsBool(v) {
			return invalidf(v, "expected boolean, got %s", value.KindOf(v))
		}
	case domain.TypeNumber:
		if !value.IsNumber(v) {
			return invalidf(v, "expected number, got %s", value.KindOf(v))
		}
		return d.checkRange(v)
	case domain.TypeInteger:
		if !value.IsInteger(v) {
			return invalidf(v, "expected integer, got %s", value.KindOf(v))
		}
		return d.checkRange(v)
	case domain.TypeArray:
		return d.checkArray(v)
	case domain.TypeObject:
		if inst, ok := v.(Validatable); ok {
			if !inst.Valid() {
				return invalid("nested instance is invalid", v)
			}
			return nil
		}
		data, ok := value.AsMapping(v)
		if !ok {
			return invalidf(v, "expected object, got %s", value.KindOf(v))
		}
		return d.checkObject(data)
	case domain.TypeNull:
		return invalidf(v, "expected null, got %s", value.KindOf(v))
	}
	// "any" and unknown tags accept everything.
	return nil
}

func (d *Descriptor) checkArray(v any) error {
	list, ok := value.AsSequence(v)
	if !ok {
		return invalidf(v, "expected array, got %s", value.KindOf(v))
	}
	items, err := d.ResolveItems()
	if err != nil {
		return err
	}
	if items == nil {
		return nil
	}
	required := false
	if obj, ok := value.AsObject(d.data.Value("items")); ok {
		required = obj.Bool("required")
	}
	for i, item := range list {
		if err := items.checkValue(item, required); err != nil {
			return atKey(strconv.Itoa(i), err)
		}
	}
	return nil
}

// checkRange applies minimum and maximum. exclusiveMinimum and
// exclusiveMaximum may be booleans qualifying the bound, or numeric bounds
// of their own.
func (d *Descriptor) checkRange(v any) error {
	n, ok := value.AsFloat(v)
	if !ok {
		return nil
	}

	if lo, ok := value.AsFloat(d.data.Value("minimum")); ok {
		if d.data.Bool("exclusiveMinimum") {
			if n <= lo {
				return invalidf(v, "must be greater than %v", d.data.Value("minimum"))
			}
		} else if n < lo {
			return invalidf(v, "must be at least %v", d.data.Value("minimum"))
		}
	}
	if lo, ok := value.AsFloat(d.data.Value("exclusiveMinimum")); ok && n <= lo {
		return invalidf(v, "must be greater than %v", d.data.Value("exclusiveMinimum"))
	}

	if hi, ok := value.AsFloat(d.data.Value("maximum")); ok {
		if d.data.Bool("exclusiveMaximum") {
			if n >= hi {
				return invalidf(v, "must be less than %v", d.data.Value("maximum"))
			}
		} else if n > hi {
			return invalidf(v, "must be at most %v", d.data.Value("maximum"))
		}
	}
	if hi, ok := value.AsFloat(d.data.Value("exclusiveMaximum")); ok && n >= hi {
		return invalidf(v, "must be less than %v", d.data.Value("exclusiveMaximum"))
	}
	return nil
}
