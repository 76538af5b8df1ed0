package schema

import (
	"net/url"

	"github.com/google/autoparse/pkg/value"
)

// References lists the schemas data depends on, resolved against base the
// same way the compiler resolves them. Required references (extends and the
// $ref of properties, additionalProperties, dependencies and union members)
// must be registered before data compiles. Deferred references (items
// $refs) are only needed once arrays are read or validated.
func References(data *value.Object, base *url.URL) (required, deferred []*url.URL, err error) {
	w := &refWalker{}
	w.walk(data, NormalizeURI(base))
	return w.required, w.deferred, w.err
}

type refWalker struct {
	required []*url.URL
	deferred []*url.URL
	err      error
}

func (w *refWalker) add(list *[]*url.URL, base *url.URL, ref string) {
	if w.err != nil {
		return
	}
	u, err := ResolveURI(base, ref)
	if err != nil {
		w.err = err
		return
	}
	*list = append(*list, u)
}

// member handles a nested schema position: a $ref is required, anything
// else is walked as an anonymous schema.
func (w *refWalker) member(v any, base, nested *url.URL) {
	obj, ok := value.AsObject(v)
	if !ok {
		return
	}
	if ref := obj.String("$ref"); ref != "" {
		w.add(&w.required, base, ref)
		return
	}
	w.walk(obj, nested)
}

func (w *refWalker) walk(data *value.Object, base *url.URL) {
	if w.err != nil || data == nil {
		return
	}
	if ext := data.Value("extends"); ext != nil {
		if ref, err := reference(ext); err == nil {
			w.add(&w.required, base, ref)
		}
	}

	nested := base
	if data.Has("id") {
		nested = nil
	}

	data.Object("properties").Each(func(_ string, v any) {
		w.member(v, base, nested)
	})
	if _, isBool := data.Value("additionalProperties").(bool); !isBool {
		w.member(data.Value("additionalProperties"), base, nested)
	}
	data.Object("dependencies").Each(func(_ string, v any) {
		w.member(v, base, nested)
	})
	if list, ok := data.Value("type").([]any); ok {
		for _, c := range list {
			w.member(c, base, nested)
		}
	}
	if items, ok := value.AsObject(data.Value("items")); ok {
		if ref := items.String("$ref"); ref != "" {
			w.add(&w.deferred, base, ref)
		} else {
			w.walk(items, nested)
		}
	}
}
