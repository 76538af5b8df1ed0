/*
Package domain contains the vocabulary shared by every autoparse package.

It defines the JSON Schema type tags understood by the compiler and the error
taxonomy callers match against with errors.Is and errors.As. This package has
no dependencies beyond the standard library.

# Errors

  - ErrUnresolvedReference: a $ref, extends or items target is not registered yet.
  - ErrTypeMismatch: a value has the wrong kind or format for a coercion.
  - ErrNotInstantiable: the schema's root type is not "object".
  - ErrUnknownProperty: a dynamic field was used where additional properties are disallowed.
  - ErrSchemaNotFound: a schema source has no document for a URI.

Validation failures are not errors: validators report them as a boolean, and
ValidationError only describes the first failing key for diagnostics.
*/
package domain
