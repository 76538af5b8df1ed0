// Package value models the JSON-like values that flow through schemas and
// instances.
//
// Schema documents decode into *Object, an ordered map that keeps member
// order so compiled properties follow declaration order. Instance payloads
// decode into plain map[string]any values. Both decoders keep the
// distinction between integral numbers (int64) and everything else (float64).
//
// The kind predicates (IsString, IsInteger, IsMapping, ...) define what each
// JSON Schema type tag accepts and are shared by the validator, the union
// matcher and the coercion functions.
package value
