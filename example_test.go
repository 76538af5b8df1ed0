package autoparse_test

import (
	"context"
	"fmt"
	"log"

	"github.com/google/autoparse"
	"github.com/google/autoparse/pkg/adapters/memory"
)

// ExampleNew compiles a schema and reads converted properties from data bound to it.
func ExampleNew() {
	eng := autoparse.New()

	_, err := eng.Compile(`{
		"type": "object",
		"properties": {
			"latitude": {"type": "number"},
			"longitude": {"type": "number"},
			"label": {"type": "string", "default": "unnamed"}
		}
	}`, "https://example.com/schemas/geo.json")
	if err != nil {
		log.Fatal(err)
	}

	geo, err := eng.Parse(context.Background(), "https://example.com/schemas/geo.json",
		`{"latitude": 37.422, "longitude": -122.084}`)
	if err != nil {
		log.Fatal(err)
	}

	lat, _ := geo.Property("latitude")
	label, _ := geo.Property("label")
	fmt.Println(lat, label, geo.Valid())
	// Output: 37.422 unnamed true
}

// ExampleWithSource loads a schema and the schema it extends from an in-memory source.
func ExampleWithSource() {
	src := memory.NewSource(map[string]string{
		"https://example.com/schemas/person.json": `{
			"type": "object",
			"properties": {"name": {"type": "string"}, "age": {"type": "integer"}}
		}`,
		"https://example.com/schemas/adult.json": `{
			"extends": "person.json",
			"properties": {"age": {"minimum": 18}}
		}`,
	})
	eng := autoparse.New(autoparse.WithSource(src))

	err := eng.Validate(context.Background(), "https://example.com/schemas/adult.json",
		map[string]any{"name": "Sam", "age": 12})
	fmt.Println(err)
	fmt.Println(len(eng.Schemas()))
	// Output:
	// field "age": must be at least 18 (got int)
	// 2
}
