// Package schema compiles JSON Schema documents into descriptors and
// validates data against them.
//
// A Registry owns the compiled schemas and resolves references between
// them. Schemas are compiled in dependency order: a parent named by
// "extends" and every property "$ref" must be registered first.
//
//	reg := schema.NewRegistry()
//	if _, err := reg.Compile(geoJSON, "file:///schemas/geo.json"); err != nil {
//	    return err
//	}
//	card, err := reg.Compile(cardJSON, "file:///schemas/card.json")
//	if err != nil {
//	    return err // domain.ErrUnresolvedReference when geo.json is missing
//	}
//
//	ok := card.Validate(map[string]any{
//	    "givenName":  "Robert",
//	    "familyName": "Aman",
//	})
//
// The supported vocabulary is a practical subset of draft-03: type (a tag or
// a union list), properties with per-property "required": true,
// additionalProperties, dependencies, extends, $ref, items, format, default,
// and minimum/maximum with exclusiveMinimum/exclusiveMaximum.
//
// Validation interprets the schema data directly and stops at the first
// failure. Validate returns a boolean; Check returns the first failure as a
// *domain.ValidationError for diagnostics.
package schema
