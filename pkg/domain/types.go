package domain

// Type tags accepted in a schema's "type" member.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
	TypeAny     = "any"
)

// String formats with a dedicated Go representation.
const (
	FormatByte     = "byte"
	FormatDateTime = "date-time"
	FormatURL      = "url"
)
