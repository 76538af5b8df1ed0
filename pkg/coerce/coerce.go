// Package coerce converts primitive values between their wire form and their
// Go form, driven by the property's schema data.
//
// Every kind has an Import function (wire to Go) and an Export function (Go
// to wire). They are pure and safe for concurrent use. Malformed input fails
// with a *domain.TypeMismatchError; nothing is corrected silently.
package coerce

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/value"
)

var intFormat = regexp.MustCompile(`^u?int(32|64)$`)

func mismatch(v any, expected string, cause error) error {
	return &domain.TypeMismatchError{Got: value.KindOf(v), Expected: expected, Value: v, Err: cause}
}

func expectedFormat(kind, format string) string {
	if format == "" {
		return kind
	}
	return fmt.Sprintf("%s (format %s)", kind, format)
}

// ImportString converts a wire string according to the schema's format:
// byte yields []byte, date-time yields time.Time, url yields *url.URL and
// int32/int64/uint32/uint64 yield int64 or uint64. Without a known format the
// value passes through untouched.
func ImportString(v any, schema *value.Object) (any, error) {
	if v == nil {
		return nil, nil
	}
	format := schema.String("format")
	if format != domain.FormatByte && format != domain.FormatDateTime &&
		format != domain.FormatURL && !intFormat.MatchString(format) {
		return v, nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, mismatch(v, expectedFormat(domain.TypeString, format), nil)
	}

	switch {
	case format == domain.FormatByte:
		b, err := decodeBase64(s)
		if err != nil {
			return nil, mismatch(v, expectedFormat(domain.TypeString, format), err)
		}
		return b, nil
	case format == domain.FormatDateTime:
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return nil, mismatch(v, expectedFormat(domain.TypeString, format), err)
		}
		return ts, nil
	case format == domain.FormatURL:
		u, err := url.Parse(s)
		if err != nil {
			return nil, mismatch(v, expectedFormat(domain.TypeString, format), err)
		}
		return u, nil
	default:
		return parseIntFormat(s, format)
	}
}

// ExportString is the inverse of ImportString. Timestamps export in
// canonical RFC 3339 form, so a re-exported value may differ in layout from
// the text it was imported from.
func ExportString(v any, schema *value.Object) (any, error) {
	if v == nil {
		return nil, nil
	}
	format := schema.String("format")

	switch {
	case format == domain.FormatByte:
		switch b := v.(type) {
		case []byte:
			return base64.StdEncoding.EncodeToString(b), nil
		case string:
			return base64.StdEncoding.EncodeToString([]byte(b)), nil
		}
		return nil, mismatch(v, expectedFormat(domain.TypeString, format), nil)

	case format == domain.FormatDateTime:
		switch ts := v.(type) {
		case time.Time:
			return ts.Format(time.RFC3339), nil
		case *time.Time:
			if ts != nil {
				return ts.Format(time.RFC3339), nil
			}
		case string:
			parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(ts))
			if err != nil {
				return nil, mismatch(v, "RFC 3339 timestamp", err)
			}
			return parsed.Format(time.RFC3339), nil
		}
		return nil, mismatch(v, "RFC 3339 timestamp", nil)

	case format == domain.FormatURL:
		switch u := v.(type) {
		case *url.URL:
			return u.String(), nil
		case url.URL:
			return u.String(), nil
		case string:
			parsed, err := url.Parse(u)
			if err != nil {
				return nil, mismatch(v, expectedFormat(domain.TypeString, format), err)
			}
			return parsed.String(), nil
		}
		return nil, mismatch(v, expectedFormat(domain.TypeString, format), nil)

	case intFormat.MatchString(format):
		if s, ok := v.(string); ok {
			n, err := parseIntFormat(s, format)
			if err != nil {
				return nil, err
			}
			return value.Text(n), nil
		}
		if value.IsInteger(v) {
			if u, ok := v.(uint64); ok {
				return strconv.FormatUint(u, 10), nil
			}
			n, _ := value.AsInt(v)
			return strconv.FormatInt(n, 10), nil
		}
		return nil, mismatch(v, expectedFormat(domain.TypeInteger, format), nil)
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return nil, mismatch(v, domain.TypeString, nil)
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func parseIntFormat(s, format string) (any, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(format, "u") {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, mismatch(s, expectedFormat(domain.TypeString, format), err)
		}
		return n, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, mismatch(s, expectedFormat(domain.TypeString, format), err)
	}
	return n, nil
}

var (
	trueTokens  = map[string]bool{"true": true, "yes": true, "y": true, "on": true, "1": true}
	falseTokens = map[string]bool{"false": true, "no": true, "n": true, "off": true, "0": true}
	nullTokens  = map[string]bool{"nil": true, "null": true, "undefined": true}
)

// BooleanToken classifies v's text form. It returns the boolean (or nil for a
// null token) and whether v is a recognised token at all.
func BooleanToken(v any) (any, bool) {
	token := strings.ToLower(strings.TrimSpace(value.Text(v)))
	switch {
	case trueTokens[token]:
		return true, true
	case falseTokens[token]:
		return false, true
	case nullTokens[token]:
		return nil, true
	}
	return nil, false
}

// IsBooleanToken reports whether v reads as true or false. Null tokens do not count.
func IsBooleanToken(v any) bool {
	b, ok := BooleanToken(v)
	return ok && b != nil
}

// ImportBoolean maps {true,yes,y,on,1} to true, {false,no,n,off,0} to false
// and {nil,null,undefined} to nil, case-insensitively.
func ImportBoolean(v any, _ *value.Object) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := BooleanToken(v)
	if !ok {
		return nil, mismatch(v, domain.TypeBoolean, nil)
	}
	return b, nil
}

// ExportBoolean uses the same token table as ImportBoolean.
func ExportBoolean(v any, schema *value.Object) (any, error) {
	return ImportBoolean(v, schema)
}

// ImportNumber converts v to float64. Null passes through.
func ImportNumber(v any, _ *value.Object) (any, error) {
	if v == nil {
		return nil, nil
	}
	if f, ok := value.AsFloat(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, nil
		}
		return nil, mismatch(v, domain.TypeNumber, err)
	}
	return nil, mismatch(v, domain.TypeNumber, nil)
}

// ExportNumber converts v to float64 for storage.
func ExportNumber(v any, schema *value.Object) (any, error) {
	return ImportNumber(v, schema)
}

// ImportInteger converts v to int64. Floats truncate toward zero and text
// may carry a 0x, 0o or 0b prefix. Null passes through.
func ImportInteger(v any, _ *value.Object) (any, error) {
	if v == nil {
		return nil, nil
	}
	if n, ok := value.AsInt(v); ok {
		return n, nil
	}
	if u, ok := v.(uint64); ok {
		return u, nil
	}
	if f, ok := value.AsFloat(v); ok {
		return int64(f), nil
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
		if err == nil {
			return n, nil
		}
		return nil, mismatch(v, domain.TypeInteger, err)
	}
	return nil, mismatch(v, domain.TypeInteger, nil)
}

// ExportInteger converts v to int64 for storage.
func ExportInteger(v any, schema *value.Object) (any, error) {
	return ImportInteger(v, schema)
}

// ImportAny returns v unchanged.
func ImportAny(v any, _ *value.Object) (any, error) { return v, nil }

// ExportAny returns v unchanged.
func ExportAny(v any, _ *value.Object) (any, error) { return v, nil }
