package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Mapper is implemented by values that can present themselves as a JSON
// object, such as schema instances.
type Mapper interface {
	ToMap() map[string]any
}

// KindOf names the JSON kind of v, or its Go type when it has none.
func KindOf(v any) string {
	switch {
	case v == nil:
		return "null"
	case IsBool(v):
		return "boolean"
	case IsInteger(v):
		return "integer"
	case IsNumber(v):
		return "number"
	case IsString(v):
		return "string"
	case IsSequence(v):
		return "array"
	case IsMapping(v):
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// IsString reports whether v is a string.
func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsBool reports whether v is exactly true or false.
func IsBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsInteger reports whether v is an integral number. Floats count when they
// hold a whole value, as encoding/json decodes every number as float64. JSON
// text 29.0 therefore counts as an integer even though it is written as a
// float; 29.5 never does.
func IsInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return isWhole(n)
	case float32:
		return isWhole(float64(n))
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && isWhole(f)
	}
	return false
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

// IsNumber reports whether v is any numeric kind.
func IsNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

// IsSequence reports whether v is a slice or array. Byte slices are binary
// data, not sequences.
func IsSequence(v any) bool {
	_, ok := AsSequence(v)
	return ok
}

// IsMapping reports whether v is a string-keyed map or a Mapper.
func IsMapping(v any) bool {
	switch v.(type) {
	case map[string]any, Mapper:
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// AsSequence returns v as a []any when it is a slice or array.
func AsSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, []byte, json.RawMessage:
		return nil, false
	case []any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsMapping returns v as a map[string]any when it is a mapping.
// Mappers return their backing map, not a copy.
func AsMapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	case Mapper:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false
		}
		return t.ToMap(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// AsFloat converts a numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := AsInt(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

// AsInt converts an integral value to int64. Whole floats convert; other
// floats do not.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), isWhole(n)
	case float32:
		return int64(n), isWhole(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(f), err == nil && isWhole(f)
	}
	return 0, false
}

// Text renders v the way a loose string conversion would: strings as-is,
// numbers in shortest decimal form, nil as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// IsStringLike reports whether v converts to a string without loss.
func IsStringLike(v any) bool {
	switch v.(type) {
	case string, []byte, fmt.Stringer:
		return true
	}
	return false
}

var (
	leadingInt   = regexp.MustCompile(`^\s*[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
)

// LooseInt parses the integer prefix of v's text form. Numbers truncate
// toward zero; text without a numeric prefix yields 0.
func LooseInt(v any) int64 {
	if f, ok := AsFloat(v); ok {
		return int64(f)
	}
	m := leadingInt.FindString(Text(v))
	i, _ := strconv.ParseInt(strings.TrimSpace(m), 10, 64)
	return i
}

// LooseFloat parses the floating point prefix of v's text form.
func LooseFloat(v any) float64 {
	if f, ok := AsFloat(v); ok {
		return f
	}
	m := leadingFloat.FindString(Text(v))
	f, _ := strconv.ParseFloat(strings.TrimSpace(m), 64)
	return f
}
