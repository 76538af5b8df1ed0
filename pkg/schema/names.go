package schema

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Underscore derives a property name from a wire key: camelCase boundaries
// become underscores, hyphens fold into underscores and the result is
// lowercased. "givenName" becomes "given_name", "post-office-box" becomes
// "post_office_box" and "URLValue" becomes "url_value".
func Underscore(key string) string {
	s := strings.ReplaceAll(key, "::", "/")
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// Camelize is the inverse used for dynamic fields: "organization_unit"
// becomes "organizationUnit". The first word keeps a lowercase initial.
func Camelize(name string) string {
	words := strings.Split(name, "_")
	title := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}
