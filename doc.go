/*
Package autoparse compiles JSON Schema documents into runtime descriptors that
validate JSON-like data and give it typed, named accessors.

# Concept

A schema is compiled once into a Descriptor and registered under its URI in a
Registry. Other schemas refer to it through "$ref" and "extends", resolved
against their own URI. Data is then bound to a descriptor as an Instance:
Property reads a field converted to its Go form (time.Time for date-time
strings, *url.URL for uri strings, []byte for byte strings, nested instances
for referenced objects) and SetProperty writes it back in wire form.

# Usage

The Engine ties a registry to an optional schema source, so dependencies are
fetched and compiled on demand:

	src := file.New("./schemas", file.WithBaseURI("https://example.com/schemas/"))
	eng := autoparse.New(autoparse.WithSource(src))

	card, err := eng.Parse(ctx, "https://example.com/schemas/card.json", data)
	if err != nil {
		return err
	}
	name, _ := card.Property("given_name")
	fmt.Println(name, card.Valid())

Libraries that only need compilation can use pkg/schema and pkg/instance
directly.
*/
package autoparse
