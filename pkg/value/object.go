package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers the order its members were added in.
// The zero value is not usable; use NewObject or FromMap.
type Object struct {
	pairs *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{pairs: orderedmap.New[string, any]()}
}

// FromMap converts m into an object. Keys are sorted since Go maps carry no
// order; nested maps and slices are converted recursively.
func FromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := NewObject()
	for _, k := range keys {
		obj.Set(k, toOrdered(m[k]))
	}
	return obj
}

func toOrdered(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toOrdered(item)
		}
		return out
	default:
		return v
	}
}

// AsObject returns v as an object when it is an *Object or a map[string]any.
func AsObject(v any) (*Object, bool) {
	switch t := v.(type) {
	case *Object:
		return t, t != nil
	case map[string]any:
		return FromMap(t), true
	}
	return nil, false
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.pairs.Len()
}

// Get returns the member stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	return o.pairs.Get(key)
}

// Value returns the member stored under key, or nil.
func (o *Object) Value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Has reports whether key is present, even with a null value.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set adds or replaces a member. Replacing keeps the original position.
func (o *Object) Set(key string, v any) {
	o.pairs.Set(key, v)
}

// Delete removes a member.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	o.pairs.Delete(key)
}

// String returns the string member under key, or "".
func (o *Object) String(key string) string {
	s, _ := o.Value(key).(string)
	return s
}

// Bool returns the boolean member under key, or false.
func (o *Object) Bool(key string) bool {
	b, _ := o.Value(key).(bool)
	return b
}

// Object returns the object member under key, or nil.
func (o *Object) Object(key string) *Object {
	obj, _ := AsObject(o.Value(key))
	return obj
}

// Keys returns the member names in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(k string, _ any) {
		keys = append(keys, k)
	})
	return keys
}

// Each calls fn for every member in order.
func (o *Object) Each(fn func(key string, v any)) {
	if o == nil {
		return
	}
	for pair := o.pairs.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	out := NewObject()
	o.Each(out.Set)
	return out
}

// Merge returns a shallow copy of o with every member of over applied on
// top. Members of over win; nested objects are replaced, not merged.
func (o *Object) Merge(over *Object) *Object {
	out := o.Clone()
	over.Each(out.Set)
	return out
}

// ToMap converts the object into plain Go maps and slices.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	m := make(map[string]any, o.Len())
	o.Each(func(k string, v any) {
		m[k] = Plain(v)
	})
	return m
}

// MarshalJSON encodes the members in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	o.Each(func(k string, v any) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return
		}
		if vb, err = json.Marshal(v); err != nil {
			err = fmt.Errorf("member %q: %w", k, err)
			return
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain deep-converts v into maps, slices and scalars. Mappers (objects,
// instances) are flattened through ToMap.
func Plain(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Plain(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	case Mapper:
		return Plain(t.ToMap())
	default:
		return v
	}
}
