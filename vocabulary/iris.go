// Package vocabulary provides the RDF, RDFS, OWL and XSD vocabulary used to
// describe the ontology, and the IRI normalisation applied to every class and
// property identifier before it is used as a cache key.
package vocabulary

import (
	"strings"
)

// FormatURI normalises an identifier: surrounding whitespace and angle
// brackets are removed and registered prefixes are expanded, so that
// "owl:Thing" and "<http://www.w3.org/2002/07/owl#Thing>" yield the same key.
// Empty input yields "".
func FormatURI(uri string) string {
	uri = strings.TrimSpace(uri)
	uri = strings.TrimSuffix(strings.TrimPrefix(uri, "<"), ">")
	if uri == "" {
		return ""
	}
	return defaultPrefixes.Expand(uri)
}

// Equal reports whether two identifiers denote the same IRI after normalisation.
func Equal(a, b string) bool {
	return FormatURI(a) == FormatURI(b)
}

// Compact shortens an IRI with the package-level prefixes, for logging and display.
func Compact(iri string) string {
	return defaultPrefixes.Compact(FormatURI(iri))
}

// IsAbsolute reports whether s looks like an absolute IRI (scheme ":" rest).
func IsAbsolute(s string) bool {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || rest == "" {
		return false
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// LocalName returns the part of an IRI after the last '#' or '/'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}
