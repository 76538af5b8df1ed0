package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"

	"github.com/google/autoparse/pkg/value"
)

// Compile turns schema data into a descriptor and registers it under uri.
// data may be a *value.Object, a map[string]any, or JSON/YAML text as
// []byte, json.RawMessage or string. An empty uri compiles an anonymous
// schema that is not registered.
//
// The parent named by "extends" and every property $ref must already be
// registered; otherwise Compile fails with domain.ErrUnresolvedReference and
// leaves the registry unchanged. A schema may reference itself.
//
// Compiling a document that is already registered under the same uri
// returns the existing descriptor, so shared schemas keep one identity.
func (r *Registry) Compile(data any, uri string) (*Descriptor, error) {
	obj, err := schemaObject(data)
	if err != nil {
		return nil, err
	}
	base, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return r.CompileURL(obj, base)
}

// CompileURL is Compile with parsed inputs.
func (r *Registry) CompileURL(data *value.Object, uri *url.URL) (*Descriptor, error) {
	if data == nil {
		data = value.NewObject()
	}
	base := NormalizeURI(uri)

	r.compileMu.Lock()
	defer r.compileMu.Unlock()

	if base != nil {
		if existing, ok := r.lookup(base); ok && sameDocument(existing.data, data) {
			r.logger.Debug("schema already compiled", "uri", uriKey(base))
			return existing, nil
		}
	}

	d, err := r.compile(data, base, true)
	if err != nil {
		r.logger.Debug("schema compilation failed", "uri", uriKey(base), "error", err)
		return nil, err
	}
	r.logger.Debug("compiled schema", "uri", uriKey(base), "properties", len(d.properties))
	return d, nil
}

func schemaObject(data any) (*value.Object, error) {
	switch v := data.(type) {
	case nil:
		return value.NewObject(), nil
	case *value.Object:
		return v, nil
	case map[string]any:
		return value.FromMap(v), nil
	case []byte:
		return value.ParseObject(v)
	case json.RawMessage:
		return value.ParseObject(v)
	case string:
		return value.ParseObject([]byte(v))
	}
	return nil, fmt.Errorf("unsupported schema data %T", data)
}

func sameDocument(a, b *value.Object) bool {
	return reflect.DeepEqual(a.ToMap(), b.ToMap())
}

// compile builds a descriptor. Named descriptors take base as their identity
// and are registered before their members compile, so members may refer
// back to them; the entry is rolled back if compilation fails.
func (r *Registry) compile(data *value.Object, base *url.URL, named bool) (d *Descriptor, err error) {
	d = newDescriptor(r, data)
	d.base = base
	if named {
		d.uri = base
	}

	if ext := data.Value("extends"); ext != nil {
		ref, err := reference(ext)
		if err != nil {
			return nil, fmt.Errorf("extends: %w", err)
		}
		if d.parent, err = r.Resolve(base, ref); err != nil {
			return nil, fmt.Errorf("extends: %w", err)
		}
	}

	if d.uri != nil {
		key := uriKey(d.uri)
		prev, had := r.swap(key, d)
		defer func() {
			if err == nil {
				return
			}
			if had {
				r.swap(key, prev)
			} else {
				r.swap(key, nil)
			}
		}()
	}

	// Anonymous members inherit this schema's base unless it declares its own id.
	nested := base
	if data.Has("id") {
		nested = nil
	}

	if err := d.compileProperties(nested); err != nil {
		return nil, err
	}
	if err := d.compileAdditional(nested); err != nil {
		return nil, err
	}
	if err := d.compileDependencies(nested); err != nil {
		return nil, err
	}
	if err := d.compileItems(nested); err != nil {
		return nil, err
	}
	if err := d.compileUnion(nested); err != nil {
		return nil, err
	}
	return d, nil
}

// subschema returns the $ref target of data, or compiles data as an
// anonymous schema under nested.
func (d *Descriptor) subschema(data *value.Object, nested *url.URL) (*Descriptor, error) {
	if ref := data.String("$ref"); ref != "" {
		return d.registry.Resolve(d.base, ref)
	}
	return d.registry.compile(data, nested, false)
}

func (d *Descriptor) compileProperties(nested *url.URL) error {
	var err error
	d.data.Object("properties").Each(func(key string, raw any) {
		if err != nil {
			return
		}
		pdata, ok := value.AsObject(raw)
		if !ok {
			err = fmt.Errorf("property %q: schema must be an object, got %s", key, value.KindOf(raw))
			return
		}
		if d.parent != nil {
			if inherited, ok := d.parent.Property(key); ok {
				pdata = inherited.Data.Merge(pdata)
			}
		}

		sub, serr := d.subschema(pdata, nested)
		if serr != nil {
			err = fmt.Errorf("property %q: %w", key, serr)
			return
		}

		p := &Property{Key: key, Name: Underscore(key), Data: pdata, Schema: sub}
		d.properties = append(d.properties, p)
		d.byKey[key] = p
		d.keys[p.Name] = key
	})
	return err
}

func (d *Descriptor) compileAdditional(nested *url.URL) error {
	switch ap := d.data.Value("additionalProperties").(type) {
	case nil:
		d.additional = AdditionalProperties{Policy: Unrestricted}
	case bool:
		if ap {
			d.additional = AdditionalProperties{Policy: Unrestricted}
		} else {
			d.additional = AdditionalProperties{Policy: Disallowed}
		}
	default:
		obj, ok := value.AsObject(ap)
		if !ok {
			return fmt.Errorf("additionalProperties: expected boolean or schema, got %s", value.KindOf(ap))
		}
		sub, err := d.subschema(obj, nested)
		if err != nil {
			return fmt.Errorf("additionalProperties: %w", err)
		}
		d.additional = AdditionalProperties{Policy: Constrained, Schema: sub}
	}
	return nil
}

func (d *Descriptor) compileDependencies(nested *url.URL) error {
	var err error
	d.data.Object("dependencies").Each(func(key string, raw any) {
		if err != nil {
			return
		}
		switch v := raw.(type) {
		case string:
			d.dependencies[key] = Dependency{Keys: []string{v}}
		case []any:
			keys := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					err = fmt.Errorf("dependency %q: expected property names, got %s", key, value.KindOf(item))
					return
				}
				keys = append(keys, s)
			}
			d.dependencies[key] = Dependency{Keys: keys}
		default:
			obj, ok := value.AsObject(v)
			if !ok {
				err = fmt.Errorf("dependency %q: expected property names or schema, got %s", key, value.KindOf(v))
				return
			}
			sub, serr := d.subschema(obj, nested)
			if serr != nil {
				err = fmt.Errorf("dependency %q: %w", key, serr)
				return
			}
			d.dependencies[key] = Dependency{Schema: sub}
		}
	})
	return err
}

// compileItems compiles an inline items schema. An items $ref is resolved
// lazily, so arrays may reference schemas compiled later.
func (d *Descriptor) compileItems(nested *url.URL) error {
	obj, ok := value.AsObject(d.data.Value("items"))
	if !ok {
		return nil
	}
	if ref := obj.String("$ref"); ref != "" {
		d.itemsRef = ref
		return nil
	}
	items, err := d.registry.compile(obj, nested, false)
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}
	d.items = items
	return nil
}

func (d *Descriptor) compileUnion(nested *url.URL) error {
	list, ok := d.Type().([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	for _, candidate := range list {
		if tag, ok := candidate.(string); ok {
			if !seen[tag] {
				seen[tag] = true
				d.union = append(d.union, member{tag: tag})
			}
			continue
		}
		obj, ok := value.AsObject(candidate)
		if !ok {
			return fmt.Errorf("type: unsupported union member %s", value.KindOf(candidate))
		}
		sub, err := d.subschema(obj, nested)
		if err != nil {
			return fmt.Errorf("type: %w", err)
		}
		d.union = append(d.union, member{schema: sub})
	}
	return nil
}

// reference extracts the URI from an extends value: a string or {"$ref": ...}.
func reference(v any) (string, error) {
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	if obj, ok := value.AsObject(v); ok {
		if ref := obj.String("$ref"); ref != "" {
			return ref, nil
		}
	}
	return "", fmt.Errorf("expected a schema reference, got %s", value.KindOf(v))
}
