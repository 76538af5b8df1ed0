package schema

import (
	"fmt"
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// ParseURI parses s into a normalized URI. An empty string yields nil.
func ParseURI(s string) (*url.URL, error) {
	if s == "" {
		return nil, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid schema uri %q: %w", s, err)
	}
	return NormalizeURI(u), nil
}

// ResolveURI resolves ref against base. A nil base leaves ref as written.
func ResolveURI(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid schema reference %q: %w", ref, err)
	}
	if base == nil {
		return NormalizeURI(r), nil
	}
	return NormalizeURI(base.ResolveReference(r)), nil
}

// NormalizeURI returns a copy of u with the scheme and host lowercased,
// default ports removed, an empty path on a hierarchical URI set to "/" and
// an empty fragment dropped. Two URIs naming the same schema normalize to
// the same string.
func NormalizeURI(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if port := n.Port(); port != "" && defaultPorts[n.Scheme] == port {
		n.Host = strings.TrimSuffix(n.Host, ":"+port)
	}
	if n.Host != "" && n.Path == "" && n.Opaque == "" {
		n.Path = "/"
	}
	if n.Fragment == "" {
		n.RawFragment = ""
	}
	return &n
}

// uriKey is the registry key of u.
func uriKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
