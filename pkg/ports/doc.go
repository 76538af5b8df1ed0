/*
Package ports defines the driven ports (interfaces) for autoparse.

These interfaces decouple schema loading from where schema documents live,
allowing the loader to work with in-memory maps, directories and Redis alike.

# Key Interfaces

  - SchemaSource: Retrieves raw schema documents by URI.
  - SchemaStore: A SchemaSource that can also be written to.
*/
package ports
