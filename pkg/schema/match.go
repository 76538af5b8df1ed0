package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/autoparse/pkg/coerce"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/value"
)

// Match is the outcome of type matching: a type tag, an inline schema, or
// nothing at all.
type Match struct {
	Type   string      // Matched tag, or "" when an inline schema matched
	Schema *Descriptor // Matched inline schema
}

// Found reports whether any candidate matched.
func (m Match) Found() bool { return m.Type != "" || m.Schema != nil }

// MatchType picks the candidate that best fits v. candidates is a single
// tag, a list of tags and inline schemas, or nil; inline schemas compile
// anonymously with base as their resolution base.
//
// A strict pass over every candidate looks for an exact kind match before a
// lenient pass accepts values that merely convert, so an exact type wins
// even when a looser candidate is listed first.
func (r *Registry) MatchType(v any, candidates any, base *url.URL) (Match, error) {
	owner := newDescriptor(r, nil)
	owner.base = NormalizeURI(base)

	var list []any
	switch c := candidates.(type) {
	case nil:
	case string:
		list = []any{c}
	case []string:
		for _, s := range c {
			list = append(list, s)
		}
	case []any:
		list = c
	default:
		list = []any{c}
	}

	var members []member
	seen := make(map[string]bool)
	for _, c := range list {
		if tag, ok := c.(string); ok {
			if !seen[tag] {
				seen[tag] = true
				members = append(members, member{tag: tag})
			}
			continue
		}
		obj, ok := value.AsObject(c)
		if !ok {
			return Match{}, fmt.Errorf("unsupported type candidate %s", value.KindOf(c))
		}
		sub, err := owner.subschema(obj, owner.base)
		if err != nil {
			return Match{}, err
		}
		members = append(members, member{schema: sub})
	}
	return match(v, members), nil
}

// MatchType matches v against the schema's own "type": the union members
// when it lists several, otherwise the single tag.
func (d *Descriptor) MatchType(v any) Match {
	if len(d.union) > 0 {
		return match(v, d.union)
	}
	if tag := d.TypeName(); tag != "" {
		return match(v, []member{{tag: tag}})
	}
	return Match{}
}

func match(v any, members []member) Match {
	for _, m := range members {
		if m.schema != nil {
			if v != nil && m.schema.checkInstance(v) == nil {
				return Match{Schema: m.schema}
			}
			continue
		}
		if strictKind(m.tag, v) {
			return Match{Type: m.tag}
		}
	}
	for _, m := range members {
		if m.schema == nil && lenientKind(m.tag, v) {
			return Match{Type: m.tag}
		}
	}
	return Match{}
}

func strictKind(tag string, v any) bool {
	switch tag {
	case domain.TypeString:
		return value.IsString(v)
	case domain.TypeBoolean:
		return value.IsBool(v)
	case domain.TypeInteger:
		return value.IsInteger(v)
	case domain.TypeNumber:
		return value.IsNumber(v)
	case domain.TypeArray:
		return value.IsSequence(v)
	case domain.TypeObject:
		return value.IsMapping(v)
	case domain.TypeNull:
		return v == nil
	}
	return false
}

func lenientKind(tag string, v any) bool {
	switch tag {
	case domain.TypeString:
		return value.IsStringLike(v)
	case domain.TypeBoolean:
		return coerce.IsBooleanToken(v)
	case domain.TypeInteger:
		return value.LooseInt(v) != 0 || v == "0"
	case domain.TypeNumber:
		return value.LooseFloat(v) != 0 || v == "0" || v == "0.0"
	case domain.TypeArray:
		return value.IsSequence(v)
	case domain.TypeObject:
		return value.IsMapping(v) || encodesAsObject(v)
	case domain.TypeAny:
		return true
	}
	return false
}

func encodesAsObject(v any) bool {
	if v == nil {
		return false
	}
	b, err := json.Marshal(v)
	return err == nil && bytes.HasPrefix(b, []byte("{"))
}
