package schema

import (
	"encoding/json"
)

// MarshalJSON serializes the raw schema document, members in declaration order.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.data)
}

// Summary is a flat description of a descriptor for listings and tooling.
type Summary struct {
	URI         string            `json:"uri,omitempty"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type,omitempty"`
	Extends     string            `json:"extends,omitempty"`
	Additional  string            `json:"additionalProperties"`
	Properties  []PropertySummary `json:"properties"`
}

// PropertySummary describes one property in a Summary.
type PropertySummary struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Format   string `json:"format,omitempty"`
	Ref      string `json:"ref,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Summarize describes d, inherited properties included.
func Summarize(d *Descriptor) Summary {
	s := Summary{
		URI:         d.ID(),
		Description: d.Description(),
		Type:        typeLabelOrEmpty(d.Type()),
		Additional:  d.additional.Policy.String(),
		Properties:  []PropertySummary{},
	}
	if d.parent != nil {
		s.Extends = d.parent.ID()
	}

	seen := make(map[string]bool)
	for owner := d; owner != nil; owner = owner.parent {
		for _, p := range owner.properties {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			ps := PropertySummary{
				Key:      p.Key,
				Name:     p.Name,
				Type:     typeLabelOrEmpty(p.Data.Value("type")),
				Format:   p.Data.String("format"),
				Ref:      p.Ref(),
				Required: p.Required(),
			}
			if ps.Type == "" && p.Schema != nil {
				ps.Type = typeLabelOrEmpty(p.Schema.Type())
			}
			s.Properties = append(s.Properties, ps)
		}
	}
	return s
}

func typeLabelOrEmpty(t any) string {
	if t == nil {
		return ""
	}
	return typeLabel(t)
}
